package ports

import "context"

// Repository is the single parametric persistence contract shared by every
// resource kind. Backends may commit each mutation immediately (Save becomes a
// no-op) or stage mutations and apply them atomically on Save; callers always
// follow a mutation with Save so both behaviours are equivalent at the
// call site.
type Repository[T any] interface {
	// GetAll returns every entity, unfiltered.
	GetAll(ctx context.Context) ([]T, error)
	// Get returns the first entity matching filter, or domain.ErrNotFound.
	// With track=true the read observes mutations staged in the current unit
	// of work; with track=false it returns a detached snapshot of committed
	// state only.
	Get(ctx context.Context, filter Filter, track bool) (*T, error)
	// Create stages an insert. Unique-key violations surface as
	// domain.ErrDuplicate, at Create or at Save depending on the backend.
	Create(ctx context.Context, entity *T) error
	// Update stages a full replacement of the entity identified by its key.
	Update(ctx context.Context, entity *T) error
	// Remove stages a delete of the entity identified by its key.
	Remove(ctx context.Context, entity *T) error
	// Save commits staged mutations as one unit.
	Save(ctx context.Context) error
}

// Sequencer hands out monotonically increasing numeric ids for entities whose
// identifier is storage-assigned.
type Sequencer interface {
	NextID(ctx context.Context) (int, error)
}
