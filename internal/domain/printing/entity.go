package printing

import (
	"fmt"
	"maps"
)

// Entity is a snapshot of a CRM record a template is rendered against
type Entity struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Attributes map[string]any `json:"attributes"`
}

// NewEntity creates an entity snapshot. Attributes are copied.
func NewEntity(entityType, id string, attributes map[string]any) *Entity {
	return &Entity{
		Type:       entityType,
		ID:         id,
		Attributes: maps.Clone(attributes),
	}
}

// Has reports whether the attribute is present
func (e *Entity) Has(name string) bool {
	if e == nil {
		return false
	}
	_, ok := e.Attributes[name]
	return ok
}

// Get returns an attribute value or nil
func (e *Entity) Get(name string) any {
	if e == nil {
		return nil
	}
	return e.Attributes[name]
}

// GetString returns an attribute formatted as a string; nil becomes ""
func (e *Entity) GetString(name string) string {
	v := e.Get(name)
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
