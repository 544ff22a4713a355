package cell

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/celltypes/cellbuild/cell/mech"
	"github.com/celltypes/cellbuild/cell/swc"
	"github.com/celltypes/cellbuild/cell/trace"
)

// Options controls a single Build.
type Options struct {
	Name      string // instance name; empty renders as "<Template>_instance"
	Shift     r3.Vec // position offset added to every morphology point
	Catalogue *mech.Catalogue
	Trace     *trace.BuildTrace // nil disables step recording
}

// Build instantiates a cell model: it imports the morphology, attaches the
// synthetic axon, inserts mechanisms, discretizes every section and finally
// assigns parameters. The order is fixed; discretization precedes assignment
// so assignments may still override nseg explicitly.
func Build(m *swc.Morphology, p *Params, opts Options) (*Cell, error) {
	if opts.Catalogue == nil {
		opts.Catalogue = mech.Builtin()
	}
	if err := p.Validate(opts.Catalogue); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	c, err := Import(m, ImportOptions{
		Template:  p.Template,
		Name:      opts.Name,
		UseAxon:   p.UseAxon,
		Shift:     opts.Shift,
		Catalogue: opts.Catalogue,
	})
	if err != nil {
		return nil, fmt.Errorf("importing morphology: %w", err)
	}
	logrus.Debugf("%s: imported %d soma, %d dend, %d axon sections", c, len(c.Soma), len(c.Dend), len(c.Axon))

	if err := AttachAxon(c, p.CustomAxon); err != nil {
		return nil, err
	}
	if err := InsertMechanisms(c, p.Insert, opts.Trace); err != nil {
		return nil, err
	}
	Discretize(c.All, p.SegmentLength, opts.Trace)
	if err := AssignParams(c, p.Assign, opts.Trace); err != nil {
		return nil, err
	}
	logrus.Debugf("%s: built %d sections", c, len(c.All))
	return c, nil
}

// AttachAxon appends ax.Sections synthetic axon sections to c. The first
// connects to soma[0] at ax.AttachX, each following one to the 1-end of its
// predecessor.
func AttachAxon(c *Cell, ax AxonParams) error {
	if ax.Sections == 0 {
		return nil
	}
	if len(c.Soma) == 0 {
		return fmt.Errorf("attaching axon to %s: %w", c, ErrNoSoma)
	}
	parent, x := c.Soma[0], ax.AttachX
	for i := 0; i < ax.Sections; i++ {
		s := c.NewSection(RegionAxon)
		s.L = ax.Length
		s.Diam = ax.Diam
		s.Nseg = ax.Nseg
		if err := s.Connect(parent, x); err != nil {
			return fmt.Errorf("attaching axon: %w", err)
		}
		parent, x = s, 1
	}
	return nil
}

// InsertMechanisms applies insertion rules in order.
func InsertMechanisms(c *Cell, rules []InsertRule, bt *trace.BuildTrace) error {
	for _, r := range rules {
		sections, err := c.Lists(r.Section)
		if err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		for _, s := range sections {
			for _, name := range r.Mechanisms {
				added, err := s.Insert(name)
				if err != nil {
					return err
				}
				bt.RecordInsert(trace.InsertRecord{Section: s.Name, Mechanism: name, Existing: !added})
			}
		}
	}
	return nil
}

// NsegForLength returns 1 + 2*floor(L/segmentLength). The result is always odd.
func NsegForLength(L, segmentLength float64) int {
	return 1 + 2*int(L/segmentLength)
}

// Discretize sets nseg on every section from its length.
func Discretize(sections []*Section, segmentLength float64, bt *trace.BuildTrace) {
	for _, s := range sections {
		old := s.Nseg
		s.Nseg = NsegForLength(s.L, segmentLength)
		bt.RecordDiscretize(trace.DiscretizeRecord{Section: s.Name, L: s.L, OldNseg: old, Nseg: s.Nseg})
	}
}

// AssignParams applies assignment rules in order.
func AssignParams(c *Cell, rules []AssignRule, bt *trace.BuildTrace) error {
	for _, r := range rules {
		sections, err := c.Lists(r.Section)
		if err != nil {
			return fmt.Errorf("assign: %w", err)
		}
		for _, s := range sections {
			for _, pv := range r.Params {
				old, err := s.Param(pv.Name)
				if err != nil {
					return fmt.Errorf("assign to %s: %w", r.Section, err)
				}
				if err := s.SetParam(pv.Name, pv.Value); err != nil {
					return fmt.Errorf("assign to %s: %w", r.Section, err)
				}
				bt.RecordAssign(trace.AssignRecord{
					Section:  s.Name,
					Selector: r.Section,
					Param:    pv.Name,
					Old:      old,
					New:      pv.Value,
				})
			}
		}
	}
	return nil
}
