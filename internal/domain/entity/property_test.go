package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPropertyDefaults(t *testing.T) {
	p := NewProperty("3 Bedroom House in Klein Windhoek", "house", "Klein Windhoek", "agent-1", 2500000)

	require.NotEmpty(t, p.ID)
	assert.Equal(t, "NAD", p.Currency)
	assert.Equal(t, "Windhoek", p.City)
	assert.Equal(t, PropertyStatusAvailable, p.Status)
	assert.True(t, p.IsAvailable())
	assert.False(t, p.IsTrashed())
}

func TestPropertyEmptyStatusIsAvailable(t *testing.T) {
	p := &Property{Title: "Legacy listing"}
	assert.True(t, p.IsAvailable())
	assert.False(t, p.IsTrashed())
}

func TestPropertyArchiveRestore(t *testing.T) {
	p := NewProperty("Townhouse", "townhouse", "Eros", "agent-1", 1800000)

	p.Archive()
	assert.Equal(t, PropertyStatusArchived, p.Status)
	assert.False(t, p.IsAvailable())
	assert.True(t, p.IsTrashed())

	p.Restore()
	assert.Equal(t, PropertyStatusAvailable, p.Status)
	assert.True(t, p.IsAvailable())
}

func TestPropertyTrashStatuses(t *testing.T) {
	for _, status := range []PropertyStatus{PropertyStatusDeleted, PropertyStatusSold, PropertyStatusArchived} {
		p := &Property{Status: status}
		assert.True(t, p.IsTrashed(), "status %s", status)
		assert.False(t, p.IsAvailable(), "status %s", status)
	}
}

func TestUserPassword(t *testing.T) {
	u := NewUser("admin")
	require.NoError(t, u.SetPassword("s3cret-pass"))

	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
	assert.True(t, u.CheckPassword("s3cret-pass"))
	assert.False(t, u.CheckPassword("wrong"))
	assert.True(t, u.IsAdmin())
}
