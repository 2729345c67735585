package events

import (
	"context"
	"sync"
)

// Bus is the in-process feed. Each published event is dispatched to every
// subscriber on its own goroutine, so handlers run asynchronously relative
// to the request that triggered the write.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	wg       sync.WaitGroup
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			h(context.WithoutCancel(ctx), event)
		}(h)
	}
	return nil
}

func (b *Bus) Subscribe(_ context.Context, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
	return nil
}

// Wait blocks until all in-flight handlers have returned. Tests use it to
// let fan-out settle before asserting.
func (b *Bus) Wait() {
	b.wg.Wait()
}
