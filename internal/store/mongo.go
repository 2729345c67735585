package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on MongoDB. Documents keep string ids in
// _id so the two backends address documents identically.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo get %s/%s: %w", collection, id, err)
	}
	return mongoDocument(raw), nil
}

func (s *MongoStore) Query(ctx context.Context, q Query) ([]Snapshot, error) {
	filter := bson.M{}
	for _, f := range q.Filters {
		filter[f.Field] = f.Value
	}
	findOptions := options.Find()
	if q.OrderBy != "" {
		dir := 1
		if q.Desc {
			dir = -1
		}
		findOptions.SetSort(bson.D{{Key: q.OrderBy, Value: dir}})
	}
	if q.Limit > 0 {
		findOptions.SetLimit(int64(q.Limit))
	}

	cursor, err := s.db.Collection(q.Collection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("mongo query %s: %w", q.Collection, err)
	}
	defer cursor.Close(ctx)

	var results []Snapshot
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("mongo decode %s: %w", q.Collection, err)
		}
		id, _ := raw["_id"].(string)
		results = append(results, Snapshot{ID: id, Data: mongoDocument(raw)})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongo query %s: %w", q.Collection, err)
	}
	return results, nil
}

func (s *MongoStore) Add(ctx context.Context, collection string, doc Document) (string, error) {
	id := uuid.NewString()
	if err := s.insert(ctx, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, doc Document) error {
	_, err := s.db.Collection(collection).ReplaceOne(ctx,
		bson.M{"_id": id}, withID(doc, id), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields Document) error {
	res, err := s.db.Collection(collection).UpdateByID(ctx, id, mongoUpdate(fields))
	if err != nil {
		return fmt.Errorf("mongo update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("mongo delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Batch() Batch {
	return &mongoBatch{store: s}
}

func (s *MongoStore) insert(ctx context.Context, collection, id string, doc Document) error {
	if _, err := s.db.Collection(collection).InsertOne(ctx, withID(doc, id)); err != nil {
		return fmt.Errorf("mongo insert into %s: %w", collection, err)
	}
	return nil
}

type mongoOp struct {
	kind       string // set, update or delete
	collection string
	id         string
	doc        Document
}

// mongoBatch stages operations and commits them inside one transaction,
// matching the single-batch atomicity of the Firestore backend.
type mongoBatch struct {
	store *MongoStore
	ops   []mongoOp
}

func (b *mongoBatch) Set(collection, id string, doc Document) {
	b.ops = append(b.ops, mongoOp{kind: "set", collection: collection, id: id, doc: doc})
}

func (b *mongoBatch) Update(collection, id string, fields Document) {
	b.ops = append(b.ops, mongoOp{kind: "update", collection: collection, id: id, doc: fields})
}

func (b *mongoBatch) Delete(collection, id string) {
	b.ops = append(b.ops, mongoOp{kind: "delete", collection: collection, id: id})
}

func (b *mongoBatch) Len() int { return len(b.ops) }

func (b *mongoBatch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	session, err := b.store.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("mongo start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		for _, op := range b.ops {
			coll := b.store.db.Collection(op.collection)
			switch op.kind {
			case "set":
				if _, err := coll.ReplaceOne(sc, bson.M{"_id": op.id},
					withID(op.doc, op.id), options.Replace().SetUpsert(true)); err != nil {
					return nil, err
				}
			case "update":
				if _, err := coll.UpdateByID(sc, op.id, mongoUpdate(op.doc)); err != nil {
					return nil, err
				}
			case "delete":
				if _, err := coll.DeleteOne(sc, bson.M{"_id": op.id}); err != nil {
					return nil, err
				}
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("mongo batch commit: %w", err)
	}
	return nil
}

func withID(doc Document, id string) bson.M {
	out := bson.M{"_id": id}
	for k, v := range doc {
		out[k] = v
	}
	return out
}

// mongoUpdate splits fields into $set and $inc documents.
func mongoUpdate(fields Document) bson.M {
	set := bson.M{}
	inc := bson.M{}
	for k, v := range fields {
		if delta, ok := IncrementDelta(v); ok {
			inc[k] = delta
		} else {
			set[k] = v
		}
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(inc) > 0 {
		update["$inc"] = inc
	}
	return update
}

// mongoDocument strips the id and undoes the BSON-specific value types the
// driver decodes into.
func mongoDocument(raw bson.M) Document {
	doc := make(Document, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		doc[k] = mongoValue(v)
	}
	return doc
}

func mongoValue(v any) any {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = mongoValue(e)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = mongoValue(e)
		}
		return out
	default:
		return v
	}
}
