package order

// Direction is the sort direction of the primary key.
type Direction string

// Sort direction constants.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// IsValid checks if the direction is one of the supported values.
func (d Direction) IsValid() bool {
	return d == Asc || d == Desc
}

// ParseDirection returns the direction for raw, falling back to Asc.
func ParseDirection(raw string) Direction {
	if d := Direction(raw); d.IsValid() {
		return d
	}
	return Asc
}
