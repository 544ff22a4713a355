// Package export writes built cells in formats other tools can read.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/celltypes/cellbuild/cell"
)

// Model is the serializable view of a built cell.
type Model struct {
	Name     string    `json:"name" yaml:"name"`
	Template string    `json:"template" yaml:"template"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// Section is the serializable view of one section.
type Section struct {
	Name       string             `json:"name" yaml:"name"`
	Region     string             `json:"region" yaml:"region"`
	L          float64            `json:"L" yaml:"L"`
	Diam       float64            `json:"diam" yaml:"diam"`
	Nseg       int                `json:"nseg" yaml:"nseg"`
	Ra         float64            `json:"Ra" yaml:"Ra"`
	Cm         float64            `json:"cm" yaml:"cm"`
	Parent     string             `json:"parent,omitempty" yaml:"parent,omitempty"`
	ParentX    float64            `json:"parent_x,omitempty" yaml:"parent_x,omitempty"`
	Points     [][4]float64       `json:"points,omitempty" yaml:"points,omitempty,flow"` // x, y, z, diam
	Mechanisms []Mechanism        `json:"mechanisms" yaml:"mechanisms"`
	Ions       map[string]float64 `json:"ions,omitempty" yaml:"ions,omitempty"` // reversal potentials by name, e.g. "ek"
}

// Mechanism is an inserted mechanism with its parameter values.
type Mechanism struct {
	Name   string             `json:"name" yaml:"name"`
	Params map[string]float64 `json:"params" yaml:"params"`
}

// NewModel converts a built cell into its serializable view. Sections appear
// in the cell's All order.
func NewModel(c *cell.Cell) Model {
	m := Model{Name: c.String(), Template: c.Template, Sections: make([]Section, 0, len(c.All))}
	for _, s := range c.All {
		v := Section{
			Name:       s.Name,
			Region:     string(s.Region),
			L:          s.L,
			Diam:       s.Diam,
			Nseg:       s.Nseg,
			Ra:         s.Ra,
			Cm:         s.Cm,
			Mechanisms: make([]Mechanism, 0, len(s.Mechanisms)),
		}
		if s.Parent != nil {
			v.Parent = s.Parent.Name
			v.ParentX = s.ParentX
		}
		for _, p := range s.Points {
			v.Points = append(v.Points, [4]float64{p.Pos.X, p.Pos.Y, p.Pos.Z, p.Diam})
		}
		for _, mm := range s.Mechanisms {
			params := make(map[string]float64, len(mm.Params))
			for k, val := range mm.Params {
				params[k] = val
			}
			v.Mechanisms = append(v.Mechanisms, Mechanism{Name: mm.Name, Params: params})
		}
		if len(s.Ions) > 0 {
			v.Ions = make(map[string]float64, len(s.Ions))
			for ion, e := range s.Ions {
				v.Ions[ion.ReversalParam()] = e
			}
		}
		m.Sections = append(m.Sections, v)
	}
	return m
}

// WriteYAML writes the model as YAML.
func WriteYAML(w io.Writer, c *cell.Cell) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewModel(c)); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return nil
}

// WriteJSON writes the model as indented JSON.
func WriteJSON(w io.Writer, c *cell.Cell) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewModel(c)); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// Formats maps format names to writers.
var Formats = map[string]func(io.Writer, *cell.Cell) error{
	"yaml": WriteYAML,
	"json": WriteJSON,
	"hoc":  WriteHoc,
}

// FormatNames returns the supported format names, sorted.
func FormatNames() []string {
	names := make([]string, 0, len(Formats))
	for n := range Formats {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
