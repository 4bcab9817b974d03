package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFocusSetAndClear(t *testing.T) {
	var f Focus

	_, ok := f.ID()
	assert.False(t, ok)

	assert.True(t, f.Set("a"))
	id, ok := f.ID()
	assert.True(t, ok)
	assert.Equal(t, "a", string(id))

	// Re-focusing the same id is a no-op.
	assert.False(t, f.Set("a"))

	// A new target replaces the old one; only one spotlight exists.
	assert.True(t, f.Set("b"))
	id, _ = f.ID()
	assert.Equal(t, "b", string(id))

	f.Clear()
	_, ok = f.ID()
	assert.False(t, ok)

	// Clear is idempotent.
	f.Clear()
	_, ok = f.ID()
	assert.False(t, ok)
}

func TestFocusIs(t *testing.T) {
	var f Focus
	assert.False(t, f.Is("a"))
	f.Set("a")
	assert.True(t, f.Is("a"))
	assert.False(t, f.Is("b"))
}
