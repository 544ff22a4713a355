// Package trace provides step recording for cell model construction.
// This package has no dependencies on cell/ and stores pure data types.
package trace

// InsertRecord captures a single mechanism insertion.
type InsertRecord struct {
	Section   string
	Mechanism string
	Existing  bool // mechanism was already present; insertion was a no-op
}

// DiscretizeRecord captures the segment count chosen for one section.
type DiscretizeRecord struct {
	Section string
	L       float64 // section length in µm
	OldNseg int
	Nseg    int
}

// AssignRecord captures a single parameter assignment.
type AssignRecord struct {
	Section  string
	Selector string // list the rule addressed ("all", "soma", ...)
	Param    string
	Old      float64
	New      float64
}
