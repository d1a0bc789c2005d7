package shared

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// EntityType enumerates the business entities that can own a subsidiary
// ledger account.
type EntityType string

const (
	EntityClient   EntityType = "client"
	EntityEmployee EntityType = "employee"
	EntityVendor   EntityType = "vendor"
)

// Entity is a validated reference to a business entity. Construct via
// NewEntity so invalid type/id combinations are rejected up front rather
// than at query time.
type Entity struct {
	Type EntityType
	ID   uuid.UUID
}

// NewEntity validates the entity type and id.
func NewEntity(kind EntityType, id uuid.UUID) (Entity, error) {
	switch kind {
	case EntityClient, EntityEmployee, EntityVendor:
	default:
		return Entity{}, fmt.Errorf("%w: unknown entity type %q", ErrValidation, kind)
	}
	if id == uuid.Nil {
		return Entity{}, fmt.Errorf("%w: entity id required", ErrValidation)
	}
	return Entity{Type: kind, ID: id}, nil
}

// ParseEntity builds an Entity from wire strings.
func ParseEntity(kind, id string) (Entity, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Entity{}, fmt.Errorf("%w: invalid entity id %q", ErrValidation, id)
	}
	return NewEntity(EntityType(strings.ToLower(kind)), parsed)
}

// CodeSuffix returns the last six hex characters of the entity id,
// uppercased, used to derive subsidiary account codes.
func (e Entity) CodeSuffix() string {
	hex := strings.ReplaceAll(e.ID.String(), "-", "")
	return strings.ToUpper(hex[len(hex)-6:])
}

func (e Entity) String() string {
	return string(e.Type) + ":" + e.ID.String()
}
