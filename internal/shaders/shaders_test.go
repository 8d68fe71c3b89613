package shaders

import (
	"io/fs"
	"regexp"
	"strconv"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gabornoise/internal/gpu"
	"gabornoise/internal/noise"
)

func TestLoadEmbedded(t *testing.T) {
	src, err := Load(Embedded())
	require.NoError(t, err)
	assert.Contains(t, src.Vertex, "gl_Position")
	assert.Contains(t, src.Fragment, "uniform "+gpu.ImpulseBlock)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(fstest.MapFS{VertexFile: {Data: []byte("void main(){}")}})
	assert.ErrorIs(t, err, ErrMissing)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = Load(Dir(t.TempDir()))
	assert.ErrorIs(t, err, ErrMissing)
}

func TestDirEmptyIsEmbedded(t *testing.T) {
	assert.Equal(t, Embedded(), Dir(""))
}

// The fragment shader indexes the impulse table with the same field order
// and stride the host writes.
func TestFragmentShaderMatchesTableLayout(t *testing.T) {
	src, err := Load(Embedded())
	require.NoError(t, err)

	defines := map[string]int{
		"FIELD_X":           noise.FieldX,
		"FIELD_Y":           noise.FieldY,
		"FIELD_ORIENTATION": noise.FieldOrientation,
		"FIELD_PHASE":       noise.FieldPhase,
	}
	for name, want := range defines {
		re := regexp.MustCompile(`#define ` + name + ` (\d+)`)
		m := re.FindStringSubmatch(src.Fragment)
		require.NotNil(t, m, name)
		assert.Equal(t, want, atoi(t, m[1]), name)
	}
	assert.Contains(t, src.Fragment, "vec4 impulse[MAX_IMPULSE_RECORDS]")
	assert.Equal(t, 4, noise.FieldsPerImpulse, "one vec4 per record")

	m := regexp.MustCompile(`#define MAX_IMPULSE_RECORDS (\d+)`).FindStringSubmatch(src.Fragment)
	require.NotNil(t, m)
	assert.Equal(t, 1024, atoi(t, m[1]))
}

func atoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}
