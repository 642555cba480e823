package feature

import (
	"fmt"
	"strings"
)

// Tag is a (type, value) label attached to a feature record.
type Tag struct {
	tagType string
	value   string
}

// NewTag validates and creates a Tag. Both parts must be non-empty.
func NewTag(tagType, value string) (Tag, error) {
	tagType = strings.TrimSpace(tagType)
	value = strings.TrimSpace(value)
	if tagType == "" {
		return Tag{}, fmt.Errorf("tag type is required")
	}
	if value == "" {
		return Tag{}, fmt.Errorf("tag value is required for type %q", tagType)
	}
	return Tag{tagType: tagType, value: value}, nil
}

// ParseTag parses the "type:value" form. Only the first colon separates the parts.
func ParseTag(raw string) (Tag, error) {
	tagType, value, ok := strings.Cut(raw, ":")
	if !ok {
		return Tag{}, fmt.Errorf("tag %q must have the form type:value", raw)
	}
	return NewTag(tagType, value)
}

// Type returns the tag type.
func (t Tag) Type() string { return t.tagType }

// Value returns the tag value.
func (t Tag) Value() string { return t.value }

// String formats the tag as "type:value".
func (t Tag) String() string { return t.tagType + ":" + t.value }
