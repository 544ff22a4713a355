package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/celltypes/cellbuild/cell"
	"github.com/celltypes/cellbuild/cell/mech"
)

var smallSWC = filepath.Join("..", "cell", "testdata", "small.swc")

// resetFlags restores flag variables between tests; cobra keeps them across Execute calls.
func resetFlags(t *testing.T) {
	t.Helper()
	logLevel, preset, paramsPath, morphologyPath = "error", "Neuron472421285", "", ""
	instanceName, shiftX, shiftY, shiftZ, segmentLength = "", 0, 0, 0, 0
	outputFormat, outputPath, traceLevel = "yaml", "", "none"
	for _, fs := range []*pflag.FlagSet{rootCmd.PersistentFlags(), rootCmd.Flags(), buildCmd.Flags()} {
		fs.VisitAll(func(f *pflag.Flag) { f.Changed = false })
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	resetFlags(t)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestBuildCommand_WritesHoc(t *testing.T) {
	// GIVEN the small morphology and the default preset
	// WHEN built as hoc
	out := execute(t, "build", "--morphology", smallSWC, "--format", "hoc", "--log", "error")

	// THEN the script names the template and creates all sections
	assert.Contains(t, out, "// Neuron472421285 (template Neuron472421285)")
	assert.Contains(t, out, "create soma[1], dend[4], axon[2]")
}

func TestBuildCommand_EmptyNameGivesInstance(t *testing.T) {
	out := execute(t, "build", "--morphology", smallSWC, "--name", "", "--format", "json", "--log", "error")

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, "Neuron472421285_instance", m["name"])
}

func TestBuildCommand_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")

	out := execute(t, "build", "--morphology", smallSWC, "--out", path, "--trace", "steps", "--segment-length", "20", "--log", "error")

	assert.Empty(t, out)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var m struct {
		Sections []struct {
			Name string `yaml:"name"`
			Nseg int    `yaml:"nseg"`
		} `yaml:"sections"`
	}
	require.NoError(t, yaml.Unmarshal(data, &m))
	require.Len(t, m.Sections, 7)
	// dend[1] is 100 µm long: 1 + 2*int(100/20)
	assert.Equal(t, "dend[1]", m.Sections[2].Name)
	assert.Equal(t, 11, m.Sections[2].Nseg)
}

func TestRunBuild_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func()
		want  string
	}{
		{"unknown format", func() { outputFormat = "xml" }, "unknown format"},
		{"unknown trace level", func() { traceLevel = "all" }, "unknown trace level"},
		{"negative segment length", func() { segmentLength = -40 }, "--segment-length must be positive"},
		{"unknown preset", func() { preset = "Neuron1" }, "unknown preset"},
		{"missing morphology", func() { morphologyPath = filepath.Join(t.TempDir(), "none.swc") }, "opening morphology"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			morphologyPath = smallSWC
			tt.setup()
			err := runBuild(buildCmd)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteMechanisms_ListsCatalogue(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMechanisms(&buf, mech.Builtin()))

	out := buf.String()
	for _, want := range []string{"MECHANISM", "gbar_NaTs", "decay_CaDynamics", "g_pas", "e_pas", "ehcn_Ih"} {
		assert.Contains(t, out, want)
	}
}

func TestWriteParams_PrintsPreset(t *testing.T) {
	resetFlags(t)
	var buf bytes.Buffer
	require.NoError(t, writeParams(&buf))

	var p cell.Params
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &p))
	assert.Equal(t, *cell.Neuron472421285(), p)
}
