package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategory(t *testing.T) {
	c, err := NewCategory(" Beverages ", "Hot and cold drinks")
	require.NoError(t, err)
	assert.Equal(t, "Beverages", c.Name)

	_, err = NewCategory("", "")
	require.Error(t, err)

	require.NoError(t, c.Rename("Drinks"))
	assert.Equal(t, "Drinks", c.Name)
	assert.Equal(t, 2, c.GetVersion())
}
