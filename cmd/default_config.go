package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/celltypes/cellbuild/cell"
)

// presetNames lists the built-in parameter sets.
func presetNames() []string {
	names := make([]string, 0, len(cell.Presets))
	for n := range cell.Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// loadParams returns the parameter set named by preset, or the one in
// paramsPath when that is set. A relative morphology path inside a parameter
// file is resolved against the file's directory.
func loadParams(preset, paramsPath string) (*cell.Params, error) {
	if paramsPath == "" {
		newParams, ok := cell.Presets[preset]
		if !ok {
			return nil, fmt.Errorf("unknown preset %q (available: %v)", preset, presetNames())
		}
		logrus.Debugf("Using built-in parameter set %s", preset)
		return newParams(), nil
	}
	p, err := cell.LoadParams(paramsPath)
	if err != nil {
		return nil, err
	}
	if p.Morphology != "" && !filepath.IsAbs(p.Morphology) {
		p.Morphology = filepath.Join(filepath.Dir(paramsPath), p.Morphology)
	}
	logrus.Debugf("Loaded parameter set %s from %s", p.Template, paramsPath)
	return p, nil
}
