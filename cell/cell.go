package cell

import (
	"errors"
	"fmt"
	"regexp"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/celltypes/cellbuild/cell/mech"
)

// Section list selectors.
const (
	SelectAll  = "all"
	SelectSoma = string(RegionSoma)
	SelectDend = string(RegionDend)
	SelectAxon = string(RegionAxon)
)

// ErrUnknownSelector is returned for selectors naming neither a list nor a section.
var ErrUnknownSelector = errors.New("unknown section selector")

// sectionNamePattern matches an indexed section name such as "soma[0]".
var sectionNamePattern = regexp.MustCompile(`^(soma|dend|axon)\[(\d+)\]$`)

// IsValidSelector reports whether sel is a list name or an indexed section name.
func IsValidSelector(sel string) bool {
	switch sel {
	case SelectAll, SelectSoma, SelectDend, SelectAxon:
		return true
	}
	return sectionNamePattern.MatchString(sel)
}

// Cell is a single neuron: its sections grouped into anatomical lists.
type Cell struct {
	Name     string // empty renders as "<Template>_instance"
	Template string

	Soma []*Section
	Dend []*Section
	Axon []*Section
	All  []*Section

	catalogue *mech.Catalogue
}

// NewCell creates an empty cell.
func NewCell(template, name string, catalogue *mech.Catalogue) *Cell {
	if catalogue == nil {
		catalogue = mech.Builtin()
	}
	return &Cell{Name: name, Template: template, catalogue: catalogue}
}

func (c *Cell) String() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Template + "_instance"
}

// NewSection creates a section in the given region, names it by its index in
// that region's list, and appends it to the region list and to All.
func (c *Cell) NewSection(region Region) *Section {
	var list *[]*Section
	switch region {
	case RegionSoma:
		list = &c.Soma
	case RegionAxon:
		list = &c.Axon
	default:
		region = RegionDend
		list = &c.Dend
	}
	s := NewSection(fmt.Sprintf("%s[%d]", region, len(*list)), region, c.catalogue)
	*list = append(*list, s)
	c.All = append(c.All, s)
	return s
}

// Lists returns the sections addressed by sel: a list name ("all", "soma",
// "dend", "axon") or a single indexed section ("soma[0]").
func (c *Cell) Lists(sel string) ([]*Section, error) {
	switch sel {
	case SelectAll:
		return c.All, nil
	case SelectSoma:
		return c.Soma, nil
	case SelectDend:
		return c.Dend, nil
	case SelectAxon:
		return c.Axon, nil
	}
	if !sectionNamePattern.MatchString(sel) {
		return nil, fmt.Errorf("%w %q", ErrUnknownSelector, sel)
	}
	s, ok := c.Section(sel)
	if !ok {
		return nil, fmt.Errorf("%s: no section %q", c, sel)
	}
	return []*Section{s}, nil
}

// Section returns the section with the given name.
func (c *Cell) Section(name string) (*Section, bool) {
	for _, s := range c.All {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Summary holds aggregate geometry of a cell.
type Summary struct {
	Sections    map[Region]int
	TotalLength float64 // µm
	TotalArea   float64 // µm²
	MeanDiam    float64 // length-weighted, µm
	TotalNseg   int
	Mechanisms  map[string]int // mechanism → sections carrying it
}

// Summary computes aggregate geometry across all sections.
func (c *Cell) Summary() Summary {
	sum := Summary{
		Sections:   make(map[Region]int),
		Mechanisms: make(map[string]int),
	}
	if len(c.All) == 0 {
		return sum
	}
	lengths := make([]float64, len(c.All))
	areas := make([]float64, len(c.All))
	diams := make([]float64, len(c.All))
	for i, s := range c.All {
		sum.Sections[s.Region]++
		sum.TotalNseg += s.Nseg
		lengths[i] = s.L
		areas[i] = s.Area()
		diams[i] = s.Diam
		for _, m := range s.Mechanisms {
			sum.Mechanisms[m.Name]++
		}
	}
	sum.TotalLength = floats.Sum(lengths)
	sum.TotalArea = floats.Sum(areas)
	if sum.TotalLength > 0 {
		sum.MeanDiam = stat.Mean(diams, lengths)
	}
	return sum
}
