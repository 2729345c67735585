package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const channelPrefix = "store:changes:"

// RedisFeed carries change events over Redis pub/sub so the fan-out
// engine can run in a separate process from the API.
type RedisFeed struct {
	rdb *redis.Client
}

func NewRedisFeed(rdb *redis.Client) *RedisFeed {
	return &RedisFeed{rdb: rdb}
}

// Publish sends the event to the collection's channel as JSON.
func (f *RedisFeed) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	return f.rdb.Publish(ctx, channelPrefix+event.Collection, payload).Err()
}

// Subscribe listens on the store:changes:* pattern and forwards each
// decoded event to the handler on a dedicated goroutine.
func (f *RedisFeed) Subscribe(ctx context.Context, handler Handler) error {
	sub := f.rdb.PSubscribe(ctx, channelPrefix+"*")
	ch := sub.Channel()

	go func() {
		for msg := range ch {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Error().Err(err).Str("channel", msg.Channel).Msg("undecodable change event")
				continue
			}
			handler(ctx, event)
		}
	}()

	return nil
}
