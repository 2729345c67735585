package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements Store on Cloud Firestore, the backend the
// production deployment runs against.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("firestore get %s/%s: %w", collection, id, err)
	}
	return snap.Data(), nil
}

func (s *FirestoreStore) Query(ctx context.Context, q Query) ([]Snapshot, error) {
	fq := s.client.Collection(q.Collection).Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, "==", f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}

	var results []Snapshot
	it := fq.Documents(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore query %s: %w", q.Collection, err)
		}
		results = append(results, Snapshot{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return results, nil
}

func (s *FirestoreStore) Add(ctx context.Context, collection string, doc Document) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("firestore add to %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Set(ctx context.Context, collection, id string, doc Document) error {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Update(ctx context.Context, collection, id string, fields Document) error {
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, firestoreUpdates(fields))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("firestore update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("firestore delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Batch() Batch {
	return &firestoreBatch{client: s.client, batch: s.client.Batch()}
}

type firestoreBatch struct {
	client *firestore.Client
	batch  *firestore.WriteBatch
	size   int
}

func (b *firestoreBatch) Set(collection, id string, doc Document) {
	b.batch.Set(b.client.Collection(collection).Doc(id), doc)
	b.size++
}

func (b *firestoreBatch) Update(collection, id string, fields Document) {
	b.batch.Update(b.client.Collection(collection).Doc(id), firestoreUpdates(fields))
	b.size++
}

func (b *firestoreBatch) Delete(collection, id string) {
	b.batch.Delete(b.client.Collection(collection).Doc(id))
	b.size++
}

func (b *firestoreBatch) Len() int { return b.size }

func (b *firestoreBatch) Commit(ctx context.Context) error {
	if b.size == 0 {
		return nil
	}
	if _, err := b.batch.Commit(ctx); err != nil {
		return fmt.Errorf("firestore batch commit: %w", err)
	}
	return nil
}

func firestoreUpdates(fields Document) []firestore.Update {
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		if delta, ok := IncrementDelta(v); ok {
			v = firestore.Increment(delta)
		}
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	return updates
}
