package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeSuffix(t *testing.T) {
	id := uuid.MustParse("3f2504e0-4f89-41d3-9a0c-0305e8ab12cd")
	entity, err := NewEntity(EntityClient, id)
	require.NoError(t, err)
	assert.Equal(t, "AB12CD", entity.CodeSuffix())
}

func TestNewEntityRejectsUnknownType(t *testing.T) {
	_, err := NewEntity("partner", uuid.New())
	require.ErrorIs(t, err, ErrValidation)
}

func TestNewEntityRejectsNilID(t *testing.T) {
	_, err := NewEntity(EntityEmployee, uuid.Nil)
	require.ErrorIs(t, err, ErrValidation)
}

func TestParseEntity(t *testing.T) {
	id := uuid.New()
	entity, err := ParseEntity("Client", id.String())
	require.NoError(t, err)
	assert.Equal(t, EntityClient, entity.Type)
	assert.Equal(t, id, entity.ID)

	_, err = ParseEntity("client", "not-a-uuid")
	require.ErrorIs(t, err, ErrValidation)
}
