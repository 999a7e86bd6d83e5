package embedded

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebBundle(t *testing.T) {
	index, err := fs.ReadFile(Web(), "index.html")
	require.NoError(t, err)
	assert.Contains(t, string(index), "<title>VyFood</title>")

	_, err = fs.Stat(Web(), "assets/app.js")
	assert.NoError(t, err)
}

func TestSampleCatalog(t *testing.T) {
	c, err := Catalog()
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, 6, c.Len())
	assert.Equal(t, "embedded", c.Source())

	p, ok := c.Get("che-ba-mau")
	require.True(t, ok)
	assert.False(t, p.IsAvailable())
}
