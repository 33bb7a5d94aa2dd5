package term

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/fftrim/internal/config"
)

func TestResolve(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()

	assert.True(t, Resolve(config.ColorAlways, f))
	assert.False(t, Resolve(config.ColorNever, f))
	assert.False(t, Resolve(config.ColorAuto, f), "regular file is not a terminal")
	assert.False(t, IsTerminal(nil))
}

func TestSetAndColorFor(t *testing.T) {
	t.Cleanup(func() { set(false) })

	set(true)
	assert.True(t, Enabled())
	assert.Equal(t, Red, ColorFor("ERROR"))
	assert.NotEmpty(t, ColorFor("SUCCESS"))
	assert.Empty(t, ColorFor("OTHER"))

	set(false)
	assert.False(t, Enabled())
	assert.Empty(t, ColorFor("ERROR"))
}
