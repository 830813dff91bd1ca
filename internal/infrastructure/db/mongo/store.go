package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/magicstays/villa-api/internal/core/domain"
	"github.com/magicstays/villa-api/internal/core/ports"
)

const countersCollection = "counters"

// Store is the MongoDB-backed implementation of ports.Repository[T]. It is an
// immediate-commit backend: every mutation is applied as it is staged and
// Save is a no-op. The key function identifies an entity for Update/Remove.
type Store[T any] struct {
	col      *mongo.Collection
	counters *mongo.Collection
	seqName  string
	key      func(*T) ports.Filter
}

// NewStore builds a Store over the named collection. key must return a filter
// uniquely identifying the given entity (its primary key).
func NewStore[T any](db *mongo.Database, collection string, key func(*T) ports.Filter) *Store[T] {
	return &Store[T]{
		col:      db.Collection(collection),
		counters: db.Collection(countersCollection),
		seqName:  collection,
		key:      key,
	}
}

func (s *Store[T]) GetAll(ctx context.Context) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find all: %w", err)
	}
	defer cur.Close(ctx)

	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode all: %w", err)
	}
	return out, nil
}

// Get returns the first entity matching filter. Every read from MongoDB is a
// detached snapshot, so the track flag has no further effect here; it matters
// for staged backends where a tracked read observes uncommitted mutations.
func (s *Store[T]) Get(ctx context.Context, filter ports.Filter, _ bool) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var entity T
	err := s.col.FindOne(ctx, toBSON(filter)).Decode(&entity)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find one: %w", err)
	}
	return &entity, nil
}

func (s *Store[T]) Create(ctx context.Context, entity *T) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.col.InsertOne(ctx, entity); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

func (s *Store[T]) Update(ctx context.Context, entity *T) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.col.ReplaceOne(ctx, toBSON(s.key(entity)), entity)
	if err != nil {
		return fmt.Errorf("replace: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store[T]) Remove(ctx context.Context, entity *T) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.col.DeleteOne(ctx, toBSON(s.key(entity)))
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Save is a no-op: this backend commits each mutation immediately.
func (s *Store[T]) Save(context.Context) error { return nil }

// NextID atomically increments and returns the per-collection sequence,
// implementing ports.Sequencer for entities with storage-assigned ids.
func (s *Store[T]) NextID(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc struct {
		Value int `bson:"value"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": s.seqName},
		bson.M{"$inc": bson.M{"value": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next id: %w", err)
	}
	return doc.Value, nil
}

// EnsureIndexes creates the given index models on the store's collection.
func (s *Store[T]) EnsureIndexes(ctx context.Context, indexes ...mongo.IndexModel) error {
	if len(indexes) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// toBSON translates the serializable filter into a MongoDB query document.
// Case-insensitive equality becomes an anchored case-insensitive regex.
func toBSON(f ports.Filter) bson.M {
	q := bson.M{}
	for _, cond := range f.Conditions {
		switch cond.Op {
		case ports.OpEqFold:
			q[cond.Field] = primitive.Regex{
				Pattern: "^" + regexp.QuoteMeta(fmt.Sprintf("%v", cond.Value)) + "$",
				Options: "i",
			}
		default:
			q[cond.Field] = cond.Value
		}
	}
	return q
}
