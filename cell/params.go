package cell

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/celltypes/cellbuild/cell/mech"
)

// DefaultSegmentLength is the section length (µm) covered by each pair of
// additional segments during discretization.
const DefaultSegmentLength = 40.0

// Params is a complete description of how to build a cell model from a
// morphology. Rules apply in file order, so later assignments override
// earlier ones on the same section.
type Params struct {
	Template      string       `yaml:"template"`
	Morphology    string       `yaml:"morphology"`
	UseAxon       bool         `yaml:"use_axon"`
	CustomAxon    AxonParams   `yaml:"custom_axon"`
	SegmentLength float64      `yaml:"segment_length"`
	Insert        []InsertRule `yaml:"insert"`
	Assign        []AssignRule `yaml:"assign"`
}

// AxonParams describes the synthetic axon stub that replaces the
// reconstructed axon. Sections = 0 means no stub.
type AxonParams struct {
	Sections int     `yaml:"sections"`
	Length   float64 `yaml:"length"`   // µm, per section
	Diam     float64 `yaml:"diam"`     // µm
	Nseg     int     `yaml:"nseg"`     // initial, before discretization
	AttachX  float64 `yaml:"attach_x"` // location on soma[0]
}

// InsertRule inserts mechanisms into every section a selector addresses.
type InsertRule struct {
	Section    string   `yaml:"section"`
	Mechanisms []string `yaml:"mechanisms"`
}

// AssignRule assigns parameters, in order, to every section a selector addresses.
type AssignRule struct {
	Section string       `yaml:"section"`
	Params  []ParamValue `yaml:"params"`
}

// ParamValue is a single named scalar.
type ParamValue struct {
	Name  string  `yaml:"name"`
	Value float64 `yaml:"value"`
}

// LoadParams reads a YAML parameter file. Unknown fields are errors so that
// typos in parameter files do not pass silently.
func LoadParams(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading params: %w", err)
	}
	var p Params
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("parsing params %s: %w", path, err)
	}
	if p.SegmentLength == 0 {
		p.SegmentLength = DefaultSegmentLength
	}
	return &p, nil
}

// Validate checks selectors, mechanism and parameter names against catalogue,
// and the ranges of geometric values.
func (p *Params) Validate(catalogue *mech.Catalogue) error {
	if catalogue == nil {
		catalogue = mech.Builtin()
	}
	if p.Template == "" {
		return fmt.Errorf("template name must be set")
	}
	if p.SegmentLength <= 0 {
		return fmt.Errorf("segment_length must be positive, got %g", p.SegmentLength)
	}
	ax := p.CustomAxon
	if ax.Sections < 0 {
		return fmt.Errorf("custom_axon.sections must be non-negative, got %d", ax.Sections)
	}
	if ax.Sections > 0 {
		if p.UseAxon {
			return fmt.Errorf("custom_axon cannot be combined with use_axon: both produce axon[0]")
		}
		if ax.Length <= 0 || ax.Diam <= 0 {
			return fmt.Errorf("custom_axon length and diam must be positive, got L=%g diam=%g", ax.Length, ax.Diam)
		}
		if ax.Nseg < 1 {
			return fmt.Errorf("custom_axon.nseg must be at least 1, got %d", ax.Nseg)
		}
		if ax.AttachX < 0 || ax.AttachX > 1 {
			return fmt.Errorf("custom_axon.attach_x must be in [0, 1], got %g", ax.AttachX)
		}
	}
	for i, r := range p.Insert {
		if !IsValidSelector(r.Section) {
			return fmt.Errorf("insert[%d]: %w %q", i, ErrUnknownSelector, r.Section)
		}
		for _, m := range r.Mechanisms {
			if _, err := catalogue.Lookup(m); err != nil {
				return fmt.Errorf("insert[%d]: %w", i, err)
			}
		}
	}
	for i, r := range p.Assign {
		if !IsValidSelector(r.Section) {
			return fmt.Errorf("assign[%d]: %w %q", i, ErrUnknownSelector, r.Section)
		}
		for _, pv := range r.Params {
			if !IsParamName(catalogue, pv.Name) {
				return fmt.Errorf("assign[%d]: %w %q", i, ErrUnknownParam, pv.Name)
			}
		}
	}
	return nil
}

// Neuron472421285 returns the parameter set of the Htr3a-Cre perisomatic
// model 472421285.
func Neuron472421285() *Params {
	return &Params{
		Template:   "Neuron472421285",
		Morphology: "Htr3a-Cre_NO152_Ai14_IVSCC_-178910.03.01.01_475125267_m.swc",
		UseAxon:    false,
		CustomAxon: AxonParams{
			Sections: 2,
			Length:   30,
			Diam:     1,
			Nseg:     1,
			AttachX:  0.5,
		},
		SegmentLength: DefaultSegmentLength,
		Insert: []InsertRule{
			{Section: SelectAll, Mechanisms: []string{"pas"}},
			{Section: "soma[0]", Mechanisms: []string{
				"CaDynamics", "Ca_HVA", "Ca_LVA", "Ih", "Im", "K_P", "K_T", "Kv3_1", "NaTs", "Nap", "SK",
			}},
		},
		Assign: []AssignRule{
			{Section: SelectAll, Params: []ParamValue{
				{"Ra", 83.11},
				{"e_pas", -91.8781604767},
			}},
			{Section: SelectAxon, Params: []ParamValue{
				{"cm", 2.45},
				{"g_pas", 0.000885550177117},
			}},
			{Section: SelectDend, Params: []ParamValue{
				{"cm", 2.45},
				{"g_pas", 2.54573505548e-05},
			}},
			{Section: SelectSoma, Params: []ParamValue{
				{"cm", 2.45},
				{"ena", 53.0},
				{"ek", -107.0},
				{"gbar_Im", 0.0012797},
				{"gbar_Ih", 0.000133831},
				{"gbar_NaTs", 0.559007},
				{"gbar_Nap", 0.000445455},
				{"gbar_K_P", 0.0619124},
				{"gbar_K_T", 0.0172329},
				{"gbar_SK", 0.0396592},
				{"gbar_Kv3_1", 0.205513},
				{"gbar_Ca_HVA", 0.000671399},
				{"gbar_Ca_LVA", 0.00361713},
				{"gamma_CaDynamics", 0.000422722},
				{"decay_CaDynamics", 249.354},
				{"g_pas", 0.000818114},
			}},
		},
	}
}

// Presets maps template names to their built-in parameter sets.
var Presets = map[string]func() *Params{
	"Neuron472421285": Neuron472421285,
}
