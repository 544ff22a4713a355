package cell

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/celltypes/cellbuild/cell/mech"
)

// Region is the anatomical list a section belongs to.
type Region string

const (
	RegionSoma Region = "soma"
	RegionDend Region = "dend"
	RegionAxon Region = "axon"
)

// Section defaults for a freshly created section.
const (
	DefaultRa   = 35.4  // Ω·cm
	DefaultCm   = 1.0   // µF/cm²
	DefaultL    = 100.0 // µm
	DefaultDiam = 500.0 // µm
)

// Section-level property names accepted by SetParam.
const (
	ParamRa   = "Ra"
	ParamCm   = "cm"
	ParamL    = "L"
	ParamDiam = "diam"
	ParamNseg = "nseg"
)

var (
	// ErrUnknownParam is returned for names that are neither section properties,
	// ion reversal potentials, nor range variables of a known mechanism.
	ErrUnknownParam = errors.New("unknown parameter")
	// ErrNotInserted is returned when a parameter belongs to a mechanism (or ion)
	// that is not present on the section.
	ErrNotInserted = errors.New("mechanism not inserted")
	// ErrInvalidValue is returned for out-of-range parameter values.
	ErrInvalidValue = errors.New("invalid value")
)

// Point3D is one traced point along a section.
type Point3D struct {
	Pos  r3.Vec
	Diam float64
}

// Mechanism is a mechanism inserted into a section with its current parameters.
type Mechanism struct {
	Name   string
	Params map[string]float64
}

// Section is an unbranched cable.
type Section struct {
	Name    string
	Region  Region
	Points  []Point3D
	L       float64 // µm
	Diam    float64 // µm
	Nseg    int
	Ra      float64 // Ω·cm
	Cm      float64 // µF/cm²
	Parent  *Section
	ParentX float64 // connection location on Parent, in [0, 1]

	Mechanisms []*Mechanism         // insertion order
	Ions       map[mech.Ion]float64 // reversal potentials (mV) of ions in use

	catalogue *mech.Catalogue
}

// NewSection creates a section with default geometry and cable properties.
func NewSection(name string, region Region, catalogue *mech.Catalogue) *Section {
	if catalogue == nil {
		catalogue = mech.Builtin()
	}
	return &Section{
		Name:      name,
		Region:    region,
		L:         DefaultL,
		Diam:      DefaultDiam,
		Nseg:      1,
		Ra:        DefaultRa,
		Cm:        DefaultCm,
		Ions:      make(map[mech.Ion]float64),
		catalogue: catalogue,
	}
}

// SetPoints replaces the traced points and recomputes L and Diam from them.
// A single point is treated as a sphere: L and Diam both equal its diameter.
func (s *Section) SetPoints(points []Point3D) {
	s.Points = points
	switch len(points) {
	case 0:
		return
	case 1:
		s.L = points[0].Diam
		s.Diam = points[0].Diam
		return
	}
	var length, weighted float64
	for i := 1; i < len(points); i++ {
		h := r3.Norm(r3.Sub(points[i].Pos, points[i-1].Pos))
		length += h
		weighted += h * (points[i].Diam + points[i-1].Diam) / 2
	}
	s.L = length
	if length > 0 {
		s.Diam = weighted / length
	} else {
		s.Diam = points[0].Diam
	}
}

// Area returns the lateral membrane area in µm². Traced sections sum the
// frusta between points; others are treated as a cylinder.
func (s *Section) Area() float64 {
	if len(s.Points) < 2 {
		return math.Pi * s.Diam * s.L
	}
	var area float64
	for i := 1; i < len(s.Points); i++ {
		r1, r2 := s.Points[i-1].Diam/2, s.Points[i].Diam/2
		h := r3.Norm(r3.Sub(s.Points[i].Pos, s.Points[i-1].Pos))
		area += math.Pi * (r1 + r2) * math.Hypot(h, r1-r2)
	}
	return area
}

// Connect attaches the 0-end of s to location x of parent.
func (s *Section) Connect(parent *Section, x float64) error {
	if parent == nil {
		return fmt.Errorf("connecting %s: nil parent", s.Name)
	}
	if x < 0 || x > 1 {
		return fmt.Errorf("connecting %s to %s(%g): %w: location must be in [0, 1]", s.Name, parent.Name, x, ErrInvalidValue)
	}
	for p := parent; p != nil; p = p.Parent {
		if p == s {
			return fmt.Errorf("connecting %s to %s: would create a loop", s.Name, parent.Name)
		}
	}
	s.Parent = parent
	s.ParentX = x
	return nil
}

// Has reports whether the named mechanism is inserted.
func (s *Section) Has(name string) bool {
	return s.mechanism(name) != nil
}

func (s *Section) mechanism(name string) *Mechanism {
	for _, m := range s.Mechanisms {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Insert adds the named mechanism with its default parameters. Inserting a
// mechanism that is already present leaves it untouched and returns false.
func (s *Section) Insert(name string) (bool, error) {
	spec, err := s.catalogue.Lookup(name)
	if err != nil {
		return false, fmt.Errorf("inserting into %s: %w", s.Name, err)
	}
	if s.Has(name) {
		return false, nil
	}
	s.Mechanisms = append(s.Mechanisms, &Mechanism{Name: name, Params: spec.Defaults()})
	for _, ion := range spec.Ions {
		if _, ok := s.Ions[ion]; ok {
			continue
		}
		if e, ok := mech.DefaultReversal[ion]; ok {
			s.Ions[ion] = e
		}
	}
	return true, nil
}

// ionFor maps a reversal potential name such as "ek" to its ion.
func ionFor(name string) (mech.Ion, bool) {
	for ion := range mech.DefaultReversal {
		if ion.ReversalParam() == name {
			return ion, true
		}
	}
	return "", false
}

// SetParam assigns a section property ("Ra", "cm", "L", "diam", "nseg"), an ion
// reversal potential ("ena", "ek", "eca") or a mechanism range variable
// ("gbar_NaTs").
func (s *Section) SetParam(name string, value float64) error {
	switch name {
	case ParamRa:
		if value <= 0 {
			return s.invalid(name, value)
		}
		s.Ra = value
		return nil
	case ParamCm:
		if value < 0 {
			return s.invalid(name, value)
		}
		s.Cm = value
		return nil
	case ParamL:
		if value <= 0 {
			return s.invalid(name, value)
		}
		s.L = value
		return nil
	case ParamDiam:
		if value <= 0 {
			return s.invalid(name, value)
		}
		s.Diam = value
		return nil
	case ParamNseg:
		if value < 1 || value != math.Trunc(value) {
			return s.invalid(name, value)
		}
		s.Nseg = int(value)
		return nil
	}

	if ion, ok := ionFor(name); ok {
		if _, present := s.Ions[ion]; !present {
			return fmt.Errorf("%s.%s: %w: no mechanism on this section uses %s", s.Name, name, ErrNotInserted, ion)
		}
		s.Ions[ion] = value
		return nil
	}

	m, err := s.rangeVar(name)
	if err != nil {
		return err
	}
	param, _, _ := s.catalogue.ParseRangeVar(name)
	m.Params[param] = value
	return nil
}

// Param returns the current value of any name SetParam accepts.
func (s *Section) Param(name string) (float64, error) {
	switch name {
	case ParamRa:
		return s.Ra, nil
	case ParamCm:
		return s.Cm, nil
	case ParamL:
		return s.L, nil
	case ParamDiam:
		return s.Diam, nil
	case ParamNseg:
		return float64(s.Nseg), nil
	}
	if ion, ok := ionFor(name); ok {
		e, present := s.Ions[ion]
		if !present {
			return 0, fmt.Errorf("%s.%s: %w: no mechanism on this section uses %s", s.Name, name, ErrNotInserted, ion)
		}
		return e, nil
	}
	m, err := s.rangeVar(name)
	if err != nil {
		return 0, err
	}
	param, _, _ := s.catalogue.ParseRangeVar(name)
	return m.Params[param], nil
}

func (s *Section) rangeVar(name string) (*Mechanism, error) {
	_, mechanism, ok := s.catalogue.ParseRangeVar(name)
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", s.Name, name, ErrUnknownParam)
	}
	m := s.mechanism(mechanism)
	if m == nil {
		return nil, fmt.Errorf("%s.%s: %w: %s", s.Name, name, ErrNotInserted, mechanism)
	}
	return m, nil
}

func (s *Section) invalid(name string, value float64) error {
	return fmt.Errorf("%s.%s = %g: %w", s.Name, name, value, ErrInvalidValue)
}

// IsParamName reports whether name could be assigned on some section, given
// the mechanisms in catalogue.
func IsParamName(catalogue *mech.Catalogue, name string) bool {
	switch name {
	case ParamRa, ParamCm, ParamL, ParamDiam, ParamNseg:
		return true
	}
	if _, ok := ionFor(name); ok {
		return true
	}
	_, _, ok := catalogue.ParseRangeVar(name)
	return ok
}
