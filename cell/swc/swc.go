// Package swc reads digitized neuron morphologies in the SWC format.
// This package has no dependencies on cell/ and stores pure sample data.
package swc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// SampleType is the structure identifier in the second SWC column.
type SampleType int

const (
	Undefined      SampleType = 0
	Soma           SampleType = 1
	Axon           SampleType = 2
	BasalDendrite  SampleType = 3
	ApicalDendrite SampleType = 4
)

// String returns the conventional name of the structure type.
func (t SampleType) String() string {
	switch t {
	case Undefined:
		return "undefined"
	case Soma:
		return "soma"
	case Axon:
		return "axon"
	case BasalDendrite:
		return "basal"
	case ApicalDendrite:
		return "apical"
	default:
		return fmt.Sprintf("custom(%d)", int(t))
	}
}

// NoParent is the parent ID of a root sample.
const NoParent = -1

// ErrMalformed is wrapped by every parse and consistency error.
var ErrMalformed = errors.New("malformed swc")

// Sample is one row of an SWC file.
type Sample struct {
	ID     int
	Type   SampleType
	Pos    r3.Vec  // µm
	Radius float64 // µm
	Parent int     // NoParent for roots
}

// Diam returns the sample diameter.
func (s Sample) Diam() float64 { return 2 * s.Radius }

// Morphology is an ordered list of samples. Every parent precedes its children.
type Morphology struct {
	Samples []Sample

	index    map[int]int
	children map[int][]int
}

// Load reads the SWC file at path.
func Load(path string) (*Morphology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening morphology: %w", err)
	}
	defer func() { _ = f.Close() }()
	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return m, nil
}

// Read parses SWC text. Blank lines and '#' comments are skipped.
func Read(r io.Reader) (*Morphology, error) {
	var samples []Sample
	seen := make(map[int]bool)

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		s, err := parseSample(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNo, err)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("%w: line %d: duplicate sample id %d", ErrMalformed, lineNo, s.ID)
		}
		if s.Parent != NoParent && !seen[s.Parent] {
			return nil, fmt.Errorf("%w: line %d: sample %d references parent %d before it is defined",
				ErrMalformed, lineNo, s.ID, s.Parent)
		}
		seen[s.ID] = true
		samples = append(samples, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning swc: %w", err)
	}
	return New(samples), nil
}

func parseSample(fields []string) (Sample, error) {
	if len(fields) != 7 {
		return Sample{}, fmt.Errorf("expected 7 columns, got %d", len(fields))
	}
	var (
		s   Sample
		v   [4]float64
		err error
	)
	if s.ID, err = strconv.Atoi(fields[0]); err != nil {
		return Sample{}, fmt.Errorf("sample id: %w", err)
	}
	typ, err := strconv.Atoi(fields[1])
	if err != nil {
		return Sample{}, fmt.Errorf("sample type: %w", err)
	}
	if typ < 0 {
		return Sample{}, fmt.Errorf("negative sample type %d", typ)
	}
	s.Type = SampleType(typ)
	for i := range v {
		if v[i], err = strconv.ParseFloat(fields[2+i], 64); err != nil {
			return Sample{}, fmt.Errorf("column %d: %w", 3+i, err)
		}
	}
	s.Pos = r3.Vec{X: v[0], Y: v[1], Z: v[2]}
	s.Radius = v[3]
	if s.Radius <= 0 {
		return Sample{}, fmt.Errorf("sample %d has non-positive radius %g", s.ID, s.Radius)
	}
	if s.Parent, err = strconv.Atoi(fields[6]); err != nil {
		return Sample{}, fmt.Errorf("parent id: %w", err)
	}
	if s.Parent < NoParent || s.Parent == s.ID {
		return Sample{}, fmt.Errorf("sample %d has invalid parent %d", s.ID, s.Parent)
	}
	return s, nil
}

// New builds a Morphology from samples that are already in parent-first order.
func New(samples []Sample) *Morphology {
	m := &Morphology{Samples: samples}
	m.reindex()
	return m
}

func (m *Morphology) reindex() {
	m.index = make(map[int]int, len(m.Samples))
	m.children = make(map[int][]int)
	for i, s := range m.Samples {
		m.index[s.ID] = i
		if s.Parent != NoParent {
			m.children[s.Parent] = append(m.children[s.Parent], s.ID)
		}
	}
}

// Sample returns the sample with the given ID.
func (m *Morphology) Sample(id int) (Sample, bool) {
	i, ok := m.index[id]
	if !ok {
		return Sample{}, false
	}
	return m.Samples[i], true
}

// Children returns the IDs of the direct children of id, in file order.
func (m *Morphology) Children(id int) []int {
	return m.children[id]
}

// Roots returns the IDs of samples without a parent.
func (m *Morphology) Roots() []int {
	var roots []int
	for _, s := range m.Samples {
		if s.Parent == NoParent {
			roots = append(roots, s.ID)
		}
	}
	return roots
}

// SomaSamples returns the soma samples in file order.
func (m *Morphology) SomaSamples() []Sample {
	var soma []Sample
	for _, s := range m.Samples {
		if s.Type == Soma {
			soma = append(soma, s)
		}
	}
	return soma
}

// Shift translates every sample by (dx, dy, dz).
func (m *Morphology) Shift(dx, dy, dz float64) {
	d := r3.Vec{X: dx, Y: dy, Z: dz}
	for i := range m.Samples {
		m.Samples[i].Pos = r3.Add(m.Samples[i].Pos, d)
	}
}

// DropType removes every sample of type t together with all of its
// descendants, and returns the number of samples removed.
func (m *Morphology) DropType(t SampleType) int {
	dropped := make(map[int]bool)
	kept := m.Samples[:0]
	for _, s := range m.Samples {
		if s.Type == t || (s.Parent != NoParent && dropped[s.Parent]) {
			dropped[s.ID] = true
			continue
		}
		kept = append(kept, s)
	}
	m.Samples = kept
	m.reindex()
	return len(dropped)
}

// CountByType returns the number of samples of each type.
func (m *Morphology) CountByType() map[SampleType]int {
	counts := make(map[SampleType]int)
	for _, s := range m.Samples {
		counts[s.Type]++
	}
	return counts
}
