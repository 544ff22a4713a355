package cell

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadParams_MatchesBuiltinPreset(t *testing.T) {
	// GIVEN the YAML rendition of model 472421285
	p, err := LoadParams(filepath.Join("testdata", "neuron472421285.yaml"))
	require.NoError(t, err)

	// THEN it is identical to the built-in table
	if diff := cmp.Diff(Neuron472421285(), p); diff != "" {
		t.Errorf("preset mismatch (-builtin +yaml):\n%s", diff)
	}
}

func TestLoadParams_UnknownFieldIsError(t *testing.T) {
	path := writeTempYAML(t, `
template: Typo
segment_lenght: 40
`)
	_, err := LoadParams(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "segment_lenght")
}

func TestLoadParams_DefaultSegmentLength(t *testing.T) {
	path := writeTempYAML(t, "template: Minimal\n")
	p, err := LoadParams(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSegmentLength, p.SegmentLength)
	assert.NoError(t, p.Validate(nil))
}

func TestLoadParams_MissingFile(t *testing.T) {
	_, err := LoadParams(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestNeuron472421285_Validates(t *testing.T) {
	assert.NoError(t, Neuron472421285().Validate(nil))
	assert.Contains(t, Presets, "Neuron472421285")
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Params)
		want   string
	}{
		{"empty template", func(p *Params) { p.Template = "" }, "template"},
		{"zero segment length", func(p *Params) { p.SegmentLength = 0 }, "segment_length"},
		{"negative axon sections", func(p *Params) { p.CustomAxon.Sections = -1 }, "non-negative"},
		{"axon with use_axon", func(p *Params) { p.UseAxon = true }, "use_axon"},
		{"axon zero length", func(p *Params) { p.CustomAxon.Length = 0 }, "length and diam"},
		{"axon zero nseg", func(p *Params) { p.CustomAxon.Nseg = 0 }, "nseg"},
		{"axon attach out of range", func(p *Params) { p.CustomAxon.AttachX = 2 }, "attach_x"},
		{"bad insert selector", func(p *Params) { p.Insert[0].Section = "apic" }, "insert[0]"},
		{"unknown mechanism", func(p *Params) { p.Insert[1].Mechanisms[0] = "hh" }, "unknown mechanism"},
		{"bad assign selector", func(p *Params) { p.Assign[2].Section = "dendrites" }, "assign[2]"},
		{"unknown parameter", func(p *Params) { p.Assign[3].Params[0].Name = "gnabar_hh" }, "unknown parameter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Neuron472421285()
			tt.mutate(p)
			err := p.Validate(nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_UseAxonWithoutStubIsAllowed(t *testing.T) {
	p := Neuron472421285()
	p.UseAxon = true
	p.CustomAxon = AxonParams{}
	assert.NoError(t, p.Validate(nil))
}
