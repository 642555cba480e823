package order

import (
	"cmp"
	"slices"
	"strings"

	"github.com/kailas-cloud/flagsearch/internal/domain/feature"
)

// Kind is the primary sort key.
type Kind string

// Sort key constants.
const (
	ByCreatedAt   Kind = "createdAt"
	ByName        Kind = "name"
	ByEnvironment Kind = "environment"
)

const environmentPrefix = string(ByEnvironment) + ":"

// Field is a resolved sort field. Environment fields carry the environment name.
type Field struct {
	kind        Kind
	environment string
}

// ParseField resolves raw sortBy input. ok is false for empty or unrecognized input,
// in which case the createdAt field is returned.
func ParseField(raw string) (Field, bool) {
	switch {
	case raw == string(ByName):
		return Field{kind: ByName}, true
	case raw == string(ByCreatedAt):
		return Field{kind: ByCreatedAt}, true
	case strings.HasPrefix(raw, environmentPrefix):
		env := strings.TrimPrefix(raw, environmentPrefix)
		if env == "" {
			return Field{kind: ByCreatedAt}, false
		}
		return Field{kind: ByEnvironment, environment: env}, true
	default:
		return Field{kind: ByCreatedAt}, false
	}
}

// Kind returns the primary key kind.
func (f Field) Kind() Kind { return f.kind }

// Environment returns the environment name for ByEnvironment fields.
func (f Field) Environment() string { return f.environment }

// String formats the field in sortBy syntax.
func (f Field) String() string {
	if f.kind == ByEnvironment {
		return environmentPrefix + f.environment
	}
	return string(f.kind)
}

// Key is the sort position of a record: the primary value plus the name tie-break.
// At holds Unix nanoseconds; HasAt is false for a missing environment metric.
type Key struct {
	Name  string
	At    int64
	HasAt bool
}

// Spec is a total order over feature records.
type Spec struct {
	field     Field
	direction Direction
}

// NewSpec creates a sort Spec.
func NewSpec(field Field, direction Direction) Spec {
	if field.kind == "" {
		field.kind = ByCreatedAt
	}
	if !direction.IsValid() {
		direction = Asc
	}
	return Spec{field: field, direction: direction}
}

// Default returns createdAt ascending (creation order).
func Default() Spec {
	return Spec{field: Field{kind: ByCreatedAt}, direction: Asc}
}

// Parse resolves raw sortBy/sortOrder input.
// Empty sortBy keeps createdAt with the requested direction; unrecognized sortBy
// falls back to Default and reports ok=false.
func Parse(sortBy, sortOrder string) (Spec, bool) {
	if sortBy == "" {
		return NewSpec(Field{kind: ByCreatedAt}, ParseDirection(sortOrder)), true
	}
	field, ok := ParseField(sortBy)
	if !ok {
		return Default(), false
	}
	return NewSpec(field, ParseDirection(sortOrder)), true
}

// Field returns the sort field.
func (s Spec) Field() Field { return s.field }

// Direction returns the sort direction.
func (s Spec) Direction() Direction { return s.direction }

// KeyOf extracts the sort key of r under this Spec.
func (s Spec) KeyOf(r *feature.Record) Key {
	k := Key{Name: r.Name()}
	switch s.field.kind {
	case ByCreatedAt:
		k.At, k.HasAt = r.CreatedAt().UnixNano(), true
	case ByEnvironment:
		if env, ok := r.Environment(s.field.environment); ok && env.LastSeenAt() != nil {
			k.At, k.HasAt = env.LastSeenAt().UnixNano(), true
		}
	}
	return k
}

// Compare orders two keys. Desc reverses the primary comparison only;
// the name tie-break is always ascending.
func (s Spec) Compare(a, b Key) int {
	var primary int
	if s.field.kind == ByName {
		primary = strings.Compare(a.Name, b.Name)
	} else {
		primary = compareAt(a, b)
	}
	if s.direction == Desc {
		primary = -primary
	}
	if primary != 0 {
		return primary
	}
	return strings.Compare(a.Name, b.Name)
}

// Sort orders records in place.
func (s Spec) Sort(records []feature.Record) {
	slices.SortFunc(records, func(a, b feature.Record) int {
		return s.Compare(s.KeyOf(&a), s.KeyOf(&b))
	})
}

// compareAt treats a missing timestamp as the earliest possible value.
func compareAt(a, b Key) int {
	switch {
	case !a.HasAt && !b.HasAt:
		return 0
	case !a.HasAt:
		return -1
	case !b.HasAt:
		return 1
	default:
		return cmp.Compare(a.At, b.At)
	}
}
