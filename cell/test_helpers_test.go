package cell

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/celltypes/cellbuild/cell/swc"
)

// loadSmall reads testdata/small.swc: a one-point soma (r=5), a basal tree
// that branches once, an apical dendrite and a two-sample axon.
func loadSmall(t *testing.T) *swc.Morphology {
	t.Helper()
	m, err := swc.Load(filepath.Join("testdata", "small.swc"))
	require.NoError(t, err)
	return m
}

func sectionByName(t *testing.T, c *Cell, name string) *Section {
	t.Helper()
	s, ok := c.Section(name)
	require.True(t, ok, "no section %s", name)
	return s
}
