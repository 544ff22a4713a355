package swc

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const smallCell = `# small test cell
1 1 0 0 0 5 -1
2 3 5 0 0 1 1
3 3 15 0 0 1 2
4 2 -5 0 0 0.5 1
5 2 -15 0 0 0.5 4

6 4 0 5 0 1.5 1   # apical
`

func TestRead_ParsesSamplesInOrder(t *testing.T) {
	// GIVEN a small SWC with comments and a blank line
	m, err := Read(strings.NewReader(smallCell))

	// THEN every sample is parsed with its fields
	require.NoError(t, err)
	require.Len(t, m.Samples, 6)
	assert.Equal(t, Sample{ID: 1, Type: Soma, Pos: r3.Vec{}, Radius: 5, Parent: NoParent}, m.Samples[0])
	assert.Equal(t, ApicalDendrite, m.Samples[5].Type)
	assert.Equal(t, 1.5, m.Samples[5].Radius)
	assert.Equal(t, []int{1}, m.Roots())
	assert.Equal(t, []int{2, 4, 6}, m.Children(1))
}

func TestRead_MalformedInput_ReturnsErrMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"wrong column count", "1 1 0 0 0 5\n", "line 1"},
		{"bad float", "1 1 x 0 0 5 -1\n", "column 3"},
		{"duplicate id", "1 1 0 0 0 5 -1\n1 3 0 0 0 1 1\n", "duplicate sample id 1"},
		{"forward parent", "1 1 0 0 0 5 -1\n2 3 0 0 0 1 3\n", "before it is defined"},
		{"zero radius", "1 1 0 0 0 0 -1\n", "non-positive radius"},
		{"self parent", "1 1 0 0 0 1 1\n", "invalid parent"},
		{"negative type", "1 -1 0 0 0 1 -1\n", "negative sample type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed), "expected ErrMalformed, got %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_IncludesPathInError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.swc")
	require.NoError(t, os.WriteFile(path, []byte("1 1 0 0 0 5\n"), 0644))

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.swc"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDropType_RemovesSubtree(t *testing.T) {
	// GIVEN a morphology with a two-sample axon
	m, err := Read(strings.NewReader(smallCell))
	require.NoError(t, err)

	// WHEN axon samples are dropped
	n := m.DropType(Axon)

	// THEN both axon samples are gone and the index is rebuilt
	assert.Equal(t, 2, n)
	assert.Len(t, m.Samples, 4)
	_, ok := m.Sample(4)
	assert.False(t, ok)
	assert.Equal(t, []int{2, 6}, m.Children(1))
	assert.Equal(t, 0, m.CountByType()[Axon])
}

func TestDropType_DescendantsOfOtherTypeAreRemoved(t *testing.T) {
	m := New([]Sample{
		{ID: 1, Type: Soma, Radius: 1, Parent: NoParent},
		{ID: 2, Type: Axon, Radius: 1, Parent: 1},
		{ID: 3, Type: Undefined, Radius: 1, Parent: 2},
	})
	assert.Equal(t, 2, m.DropType(Axon))
	assert.Len(t, m.Samples, 1)
}

func TestShift_TranslatesAllSamples(t *testing.T) {
	m, err := Read(strings.NewReader(smallCell))
	require.NoError(t, err)

	m.Shift(10, -2, 3)

	s, ok := m.Sample(3)
	require.True(t, ok)
	assert.Equal(t, r3.Vec{X: 25, Y: -2, Z: 3}, s.Pos)
}

func TestSampleType_String(t *testing.T) {
	assert.Equal(t, "soma", Soma.String())
	assert.Equal(t, "apical", ApicalDendrite.String())
	assert.Equal(t, "custom(7)", SampleType(7).String())
}
