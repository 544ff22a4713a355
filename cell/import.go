package cell

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/celltypes/cellbuild/cell/mech"
	"github.com/celltypes/cellbuild/cell/swc"
)

// ErrNoSoma is returned when a morphology has no soma samples.
var ErrNoSoma = errors.New("morphology has no soma")

// ImportOptions controls how a morphology becomes sections.
type ImportOptions struct {
	Template  string
	Name      string
	UseAxon   bool   // keep reconstructed axon samples
	Shift     r3.Vec // added to every point
	Catalogue *mech.Catalogue
}

// regionFor maps SWC structure types to section lists. Basal, apical and
// unlabelled neurites are all treated as dendrite.
func regionFor(t swc.SampleType) Region {
	switch t {
	case swc.Soma:
		return RegionSoma
	case swc.Axon:
		return RegionAxon
	default:
		return RegionDend
	}
}

// Import splits a morphology into unbranched sections. The morphology itself
// is not modified.
//
// All soma samples form soma[0]. A new neurite section starts at every child
// of the soma, at every child of a branch point, and wherever the structure
// type changes; other samples extend their parent's section. A section that
// branches off another neurite begins with its parent's point so traced
// geometry stays continuous. Sections hanging off the soma attach at
// the arc position of their parent soma sample (0.5 for a one-point soma),
// all others at the 1-end of their parent section.
//
// A three-point soma whose second and third samples both hang off the first
// (center, +r, -r) is read as a cylinder through the center, so its length
// is the distance between the two outer points and the center sits at 0.5.
// Other multi-point somata are chained in file order.
func Import(m *swc.Morphology, opts ImportOptions) (*Cell, error) {
	work := swc.New(append([]swc.Sample(nil), m.Samples...))
	if !opts.UseAxon {
		work.DropType(swc.Axon)
	}
	work.Shift(opts.Shift.X, opts.Shift.Y, opts.Shift.Z)

	somaSamples := somaOutline(work.SomaSamples())
	if len(somaSamples) == 0 {
		return nil, ErrNoSoma
	}

	c := NewCell(opts.Template, opts.Name, opts.Catalogue)
	soma := c.NewSection(RegionSoma)
	points := make([]Point3D, len(somaSamples))
	for i, s := range somaSamples {
		points[i] = Point3D{Pos: s.Pos, Diam: s.Diam()}
	}
	soma.SetPoints(points)
	arc := somaArcPositions(somaSamples)

	// Sections are numbered per list in file order, but All keeps soma, then
	// dendrites, then axon, so lists are collected first and All rebuilt at
	// the end.
	sectionOf := make(map[int]*Section)
	sectionPoints := make(map[*Section][]Point3D)
	for _, s := range work.Samples {
		if s.Type == swc.Soma {
			continue
		}
		region := regionFor(s.Type)
		parent, hasParent := work.Sample(s.Parent)

		if hasParent && parent.Type != swc.Soma && parent.Type == s.Type && len(work.Children(parent.ID)) == 1 {
			sec := sectionOf[parent.ID]
			sectionPoints[sec] = append(sectionPoints[sec], Point3D{Pos: s.Pos, Diam: s.Diam()})
			sectionOf[s.ID] = sec
			continue
		}

		sec := c.NewSection(region)
		var pts []Point3D
		switch {
		case !hasParent:
		case parent.Type == swc.Soma:
			if err := sec.Connect(soma, arc[parent.ID]); err != nil {
				return nil, err
			}
		default:
			if err := sec.Connect(sectionOf[parent.ID], 1); err != nil {
				return nil, err
			}
			pts = append(pts, Point3D{Pos: parent.Pos, Diam: parent.Diam()})
		}
		sectionPoints[sec] = append(pts, Point3D{Pos: s.Pos, Diam: s.Diam()})
		sectionOf[s.ID] = sec
	}

	for sec, pts := range sectionPoints {
		sec.SetPoints(pts)
	}
	c.All = c.All[:0]
	c.All = append(c.All, c.Soma...)
	c.All = append(c.All, c.Dend...)
	c.All = append(c.All, c.Axon...)
	return c, nil
}

// somaOutline orders soma samples along the soma's axis.
func somaOutline(samples []swc.Sample) []swc.Sample {
	if len(samples) != 3 {
		return samples
	}
	center := samples[0]
	if samples[1].Parent != center.ID || samples[2].Parent != center.ID {
		return samples
	}
	return []swc.Sample{samples[1], center, samples[2]}
}

// somaArcPositions returns, for each soma sample ID, its normalized path
// position along the soma outline.
func somaArcPositions(samples []swc.Sample) map[int]float64 {
	pos := make(map[int]float64, len(samples))
	if len(samples) == 1 {
		pos[samples[0].ID] = 0.5
		return pos
	}
	cum := make([]float64, len(samples))
	for i := 1; i < len(samples); i++ {
		cum[i] = cum[i-1] + r3.Norm(r3.Sub(samples[i].Pos, samples[i-1].Pos))
	}
	total := cum[len(cum)-1]
	for i, s := range samples {
		if total == 0 {
			pos[s.ID] = 0.5
			continue
		}
		pos[s.ID] = cum[i] / total
	}
	return pos
}

// ShiftOf is a convenience for building an ImportOptions.Shift.
func ShiftOf(x, y, z float64) r3.Vec { return r3.Vec{X: x, Y: y, Z: z} }
