// Package mech describes the membrane mechanisms that can be inserted into a
// section: their range parameters, defaults, and the ions they use.
package mech

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Ion names an ionic species whose reversal potential a mechanism depends on.
type Ion string

const (
	Na  Ion = "na"
	K   Ion = "k"
	Ca  Ion = "ca"
	HCN Ion = "hcn" // nonspecific, reversal held by the mechanism itself
)

// ReversalParam returns the section-level reversal potential name, e.g. "ena".
func (i Ion) ReversalParam() string { return "e" + string(i) }

// DefaultReversal holds the section reversal potentials (mV) before assignment.
var DefaultReversal = map[Ion]float64{
	Na: 50,
	K:  -77,
	Ca: 132.4579,
}

// ErrUnknownMechanism is returned for names absent from the catalogue.
var ErrUnknownMechanism = errors.New("unknown mechanism")

// Param is one range parameter of a mechanism.
type Param struct {
	Name    string
	Default float64
	Units   string
}

// Spec describes one mechanism.
type Spec struct {
	Name   string
	Desc   string
	Params []Param
	Ions   []Ion // ions whose reversal potential must exist on the section
}

// Defaults returns a fresh map of parameter defaults.
func (s Spec) Defaults() map[string]float64 {
	d := make(map[string]float64, len(s.Params))
	for _, p := range s.Params {
		d[p.Name] = p.Default
	}
	return d
}

// HasParam reports whether name is a range parameter of the mechanism.
func (s Spec) HasParam(name string) bool {
	for _, p := range s.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}

// UsesIon reports whether the mechanism depends on ion.
func (s Spec) UsesIon(ion Ion) bool {
	for _, i := range s.Ions {
		if i == ion {
			return true
		}
	}
	return false
}

// Catalogue is a set of mechanism specs keyed by name.
type Catalogue struct {
	specs map[string]Spec
}

// NewCatalogue creates a catalogue holding specs. Later duplicates replace earlier ones.
func NewCatalogue(specs ...Spec) *Catalogue {
	c := &Catalogue{specs: make(map[string]Spec, len(specs))}
	for _, s := range specs {
		c.specs[s.Name] = s
	}
	return c
}

// Lookup returns the spec for name.
func (c *Catalogue) Lookup(name string) (Spec, error) {
	s, ok := c.specs[name]
	if !ok {
		return Spec{}, fmt.Errorf("%w %q", ErrUnknownMechanism, name)
	}
	return s, nil
}

// Names returns all mechanism names, sorted.
func (c *Catalogue) Names() []string {
	names := make([]string, 0, len(c.specs))
	for n := range c.specs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseRangeVar splits a range variable such as "gbar_K_P" into its parameter
// ("gbar") and mechanism ("K_P"). The longest matching mechanism suffix wins,
// so "gbar_Ca_HVA" resolves to Ca_HVA rather than a mechanism named "HVA".
func (c *Catalogue) ParseRangeVar(name string) (param, mechanism string, ok bool) {
	for i := 0; i < len(name); i++ {
		if name[i] != '_' {
			continue
		}
		p, m := name[:i], name[i+1:]
		if s, found := c.specs[m]; found && s.HasParam(p) {
			return p, m, true
		}
	}
	return "", "", false
}

// RangeVar joins a parameter and mechanism into its range variable name.
func RangeVar(param, mechanism string) string {
	return strings.Join([]string{param, mechanism}, "_")
}

func channel(name, desc string, ions ...Ion) Spec {
	return Spec{
		Name:   name,
		Desc:   desc,
		Params: []Param{{Name: "gbar", Default: 1e-5, Units: "S/cm2"}},
		Ions:   ions,
	}
}

// Builtin returns the catalogue of passive and active mechanisms used by the
// perisomatic cell-type models.
func Builtin() *Catalogue {
	return NewCatalogue(
		Spec{
			Name: "pas",
			Desc: "passive leak",
			Params: []Param{
				{Name: "g", Default: 0.001, Units: "S/cm2"},
				{Name: "e", Default: -70, Units: "mV"},
			},
		},
		Spec{
			Name: "CaDynamics",
			Desc: "intracellular calcium buffering and extrusion",
			Params: []Param{
				{Name: "gamma", Default: 0.05},
				{Name: "decay", Default: 80, Units: "ms"},
				{Name: "depth", Default: 0.1, Units: "um"},
				{Name: "minCai", Default: 1e-4, Units: "mM"},
			},
			Ions: []Ion{Ca},
		},
		channel("Ca_HVA", "high-voltage-activated calcium", Ca),
		channel("Ca_LVA", "low-voltage-activated calcium", Ca),
		Spec{
			Name: "Ih",
			Desc: "hyperpolarization-activated cation",
			Params: []Param{
				{Name: "gbar", Default: 1e-5, Units: "S/cm2"},
				{Name: "ehcn", Default: -45, Units: "mV"},
			},
			Ions: []Ion{HCN},
		},
		channel("Im", "muscarinic potassium", K),
		channel("K_P", "persistent potassium", K),
		channel("K_T", "transient potassium", K),
		channel("Kv3_1", "Kv3.1 fast delayed rectifier", K),
		channel("NaTs", "transient sodium (somatic)", Na),
		channel("Nap", "persistent sodium", Na),
		channel("SK", "small-conductance calcium-activated potassium", K, Ca),
	)
}
