package ports

// Op is a comparison operator usable in a repository filter.
type Op string

const (
	// OpEq matches on exact equality.
	OpEq Op = "eq"
	// OpEqFold matches string fields case-insensitively.
	OpEqFold Op = "eq_fold"
)

// Condition is a single field comparison. Field names refer to the entity's
// bson tags so a filter translates directly to a storage query.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// Filter is a serializable conjunction of conditions. It replaces opaque
// predicate closures so the repository contract stays backend-neutral and
// testable.
type Filter struct {
	Conditions []Condition
}

// Where starts a filter with one condition.
func Where(field string, op Op, value any) Filter {
	return Filter{Conditions: []Condition{{Field: field, Op: op, Value: value}}}
}

// ByID is shorthand for an exact match on a numeric id field.
func ByID(field string, id int) Filter {
	return Where(field, OpEq, id)
}

// And appends a condition, returning the extended filter.
func (f Filter) And(field string, op Op, value any) Filter {
	conds := make([]Condition, len(f.Conditions), len(f.Conditions)+1)
	copy(conds, f.Conditions)
	return Filter{Conditions: append(conds, Condition{Field: field, Op: op, Value: value})}
}
