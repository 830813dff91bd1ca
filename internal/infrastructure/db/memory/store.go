// Package memory provides a staged, in-memory implementation of the generic
// repository contract. Mutations accumulate in a pending unit of work that is
// applied atomically by Save, which makes it the reference backend for the
// staged-commit half of the contract and the storage used in handler tests.
//
// Each unit of work is scoped to a Session carried through the context, so
// concurrent requests sharing one store stage and commit independently. When
// the context carries no Session the store falls back to a single shared
// batch; that mode is for sequential use only.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/magicstays/villa-api/internal/core/domain"
	"github.com/magicstays/villa-api/internal/core/ports"
)

type opKind int

const (
	opCreate opKind = iota
	opUpdate
	opRemove
)

type op[T any] struct {
	kind   opKind
	key    string
	entity T
}

// batch is one unit of work: the staged mutations of one session.
type batch[T any] struct {
	pending []op[T]
}

// Session isolates the staged mutations of one logical request. A Session is
// used by a single goroutine; stores synchronise committed state themselves.
type Session struct {
	batches map[any]any
}

func NewSession() *Session {
	return &Session{batches: make(map[any]any)}
}

type sessionKey struct{}

// WithSession returns a context carrying s. Repository calls made with the
// returned context stage into and commit from that session only.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// Store implements ports.Repository[T] and ports.Sequencer. The key function
// identifies an entity for staging and conflict checks, exactly as in the
// MongoDB store.
type Store[T any] struct {
	mu     sync.Mutex
	items  map[string]T
	order  []string
	shared batch[T]
	key    func(*T) ports.Filter
	lastID int
}

func NewStore[T any](key func(*T) ports.Filter) *Store[T] {
	return &Store[T]{items: make(map[string]T), key: key}
}

// batchFor resolves the unit of work for this call: the session's per-store
// batch when the context carries one, the shared fallback batch otherwise.
// Callers must hold s.mu.
func (s *Store[T]) batchFor(ctx context.Context) *batch[T] {
	sess, ok := ctx.Value(sessionKey{}).(*Session)
	if !ok {
		return &s.shared
	}
	if b, ok := sess.batches[s].(*batch[T]); ok {
		return b
	}
	b := &batch[T]{}
	sess.batches[s] = b
	return b
}

func (s *Store[T]) GetAll(_ context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]T, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.items[k])
	}
	return out, nil
}

// Get returns a copy of the first matching entity. A tracked read observes
// mutations staged in the caller's unit of work; an untracked read sees
// committed state only.
func (s *Store[T]) Get(ctx context.Context, filter ports.Filter, track bool) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, order := s.items, s.order
	if b := s.batchFor(ctx); track && len(b.pending) > 0 {
		items, order = s.overlay(b.pending)
	}

	for _, k := range order {
		entity := items[k]
		if matches(&entity, filter) {
			return &entity, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Create stages an insert. A key collision with committed state or with an
// insert already staged in the same unit of work is rejected immediately as
// domain.ErrDuplicate.
func (s *Store[T]) Create(ctx context.Context, entity *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.batchFor(ctx)
	k := s.fingerprint(entity)
	items, _ := s.overlay(b.pending)
	if _, exists := items[k]; exists {
		return domain.ErrDuplicate
	}
	b.pending = append(b.pending, op[T]{kind: opCreate, key: k, entity: *entity})
	return nil
}

func (s *Store[T]) Update(ctx context.Context, entity *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.batchFor(ctx)
	b.pending = append(b.pending, op[T]{kind: opUpdate, key: s.fingerprint(entity), entity: *entity})
	return nil
}

func (s *Store[T]) Remove(ctx context.Context, entity *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.batchFor(ctx)
	b.pending = append(b.pending, op[T]{kind: opRemove, key: s.fingerprint(entity), entity: *entity})
	return nil
}

// Save applies the caller's staged unit of work atomically: either every
// pending mutation commits or, on the first conflict, none do and the batch
// is discarded. Batches staged by other sessions are untouched either way.
func (s *Store[T]) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.batchFor(ctx)
	items, order, err := s.overlayChecked(b.pending)
	b.pending = nil
	if err != nil {
		return err
	}

	s.items, s.order = items, order
	return nil
}

// NextID implements ports.Sequencer.
func (s *Store[T]) NextID(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	return s.lastID, nil
}

func (s *Store[T]) fingerprint(entity *T) string {
	f := s.key(entity)
	parts := make([]string, 0, len(f.Conditions))
	for _, c := range f.Conditions {
		parts = append(parts, fmt.Sprintf("%s=%v", c.Field, c.Value))
	}
	return strings.Join(parts, ";")
}

// overlay projects committed state plus the given pending mutations without
// validating them. Updates and removes of entities absent from the projection
// are skipped so the view agrees with what overlayChecked would commit. Used
// for tracked reads and Create conflict checks.
func (s *Store[T]) overlay(pending []op[T]) (map[string]T, []string) {
	items := make(map[string]T, len(s.items))
	for k, v := range s.items {
		items[k] = v
	}
	order := append([]string(nil), s.order...)

	for _, o := range pending {
		switch o.kind {
		case opCreate:
			if _, exists := items[o.key]; !exists {
				order = append(order, o.key)
			}
			items[o.key] = o.entity
		case opUpdate:
			if _, exists := items[o.key]; exists {
				items[o.key] = o.entity
			}
		case opRemove:
			delete(items, o.key)
			order = removeKey(order, o.key)
		}
	}
	return items, order
}

// overlayChecked is overlay with conflict detection: duplicate creates and
// updates/removes of missing entities fail the unit of work.
func (s *Store[T]) overlayChecked(pending []op[T]) (map[string]T, []string, error) {
	items := make(map[string]T, len(s.items))
	for k, v := range s.items {
		items[k] = v
	}
	order := append([]string(nil), s.order...)

	for _, o := range pending {
		switch o.kind {
		case opCreate:
			if _, exists := items[o.key]; exists {
				return nil, nil, domain.ErrDuplicate
			}
			items[o.key] = o.entity
			order = append(order, o.key)
		case opUpdate:
			if _, exists := items[o.key]; !exists {
				return nil, nil, domain.ErrNotFound
			}
			items[o.key] = o.entity
		case opRemove:
			if _, exists := items[o.key]; !exists {
				return nil, nil, domain.ErrNotFound
			}
			delete(items, o.key)
			order = removeKey(order, o.key)
		}
	}
	return items, order, nil
}

func removeKey(order []string, key string) []string {
	out := order[:0]
	for _, k := range order {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}

// matches evaluates the serializable filter against an entity by resolving
// condition fields through bson struct tags, mirroring how the MongoDB
// backend interprets the same filter.
func matches[T any](entity *T, filter ports.Filter) bool {
	v := reflect.ValueOf(entity).Elem()
	for _, cond := range filter.Conditions {
		field, ok := fieldByTag(v, cond.Field)
		if !ok {
			return false
		}
		fv := fmt.Sprintf("%v", field.Interface())
		cv := fmt.Sprintf("%v", cond.Value)
		switch cond.Op {
		case ports.OpEqFold:
			if !strings.EqualFold(fv, cv) {
				return false
			}
		default:
			if fv != cv {
				return false
			}
		}
	}
	return true
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("bson")
		tagName := strings.Split(tag, ",")[0]
		if tagName == "" {
			tagName = strings.ToLower(t.Field(i).Name)
		}
		if tagName == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}
