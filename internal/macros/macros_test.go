package macros_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelworks/dicetower/internal/dicemath"
	"github.com/kestrelworks/dicetower/internal/macros"
)

const validYAML = `
macros:
  - name: sneak
    expr: 3d6^2+1
  - name: fireball
    expr: 8d6
  - name: stats
    expr: 4d6^3
`

func TestLoadBytes_Valid(t *testing.T) {
	lib, err := macros.LoadBytes([]byte(validYAML))
	require.NoError(t, err)
	assert.Equal(t, 3, lib.Len())
	assert.Equal(t, []string{"fireball", "sneak", "stats"}, lib.Names())

	expr, ok := lib.Lookup("sneak")
	require.True(t, ok)

	// Every stored expression must parse back through the evaluator.
	e, err := dicemath.Parse(expr)
	require.NoError(t, err)
	assert.Equal(t, "3d6^2 + 1", e.String())

	_, ok = lib.Lookup("missing")
	assert.False(t, ok)
}

func TestLoadBytes_BadExpression(t *testing.T) {
	bad := `
macros:
  - name: broken
    expr: 3d6v5
`
	_, err := macros.LoadBytes([]byte(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken", "error must name the offending macro")
	assert.ErrorIs(t, err, dicemath.ErrTooManyKept)
}

func TestLoadBytes_DuplicateName(t *testing.T) {
	dup := `
macros:
  - name: sneak
    expr: 3d6
  - name: sneak
    expr: 2d8
`
	_, err := macros.LoadBytes([]byte(dup))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadBytes_MissingName(t *testing.T) {
	_, err := macros.LoadBytes([]byte("macros:\n  - expr: 3d6\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no name")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "macros.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o600))

	lib, err := macros.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, lib.Len())

	_, err = macros.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
