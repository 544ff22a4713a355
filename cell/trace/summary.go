package trace

// TraceSummary aggregates statistics from a BuildTrace.
type TraceSummary struct {
	TotalInserts      int
	NoopInserts       int
	TotalAssignments  int
	OverriddenAssigns int // assignments to a section parameter already set earlier in the build
	ChangedSegments   int // sections whose nseg changed during discretization
	MaxNseg           int
	MechanismCounts   map[string]int // mechanism → number of sections it was inserted into
	SectionsAssigned  int
}

// Summarize computes aggregate statistics from a BuildTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(bt *BuildTrace) *TraceSummary {
	summary := &TraceSummary{
		MechanismCounts: make(map[string]int),
	}
	if bt == nil {
		return summary
	}

	summary.TotalInserts = len(bt.Inserts)
	for _, r := range bt.Inserts {
		if r.Existing {
			summary.NoopInserts++
			continue
		}
		summary.MechanismCounts[r.Mechanism]++
	}

	for _, r := range bt.Discretizes {
		if r.Nseg != r.OldNseg {
			summary.ChangedSegments++
		}
		if r.Nseg > summary.MaxNseg {
			summary.MaxNseg = r.Nseg
		}
	}

	summary.TotalAssignments = len(bt.Assignments)
	assigned := make(map[string]bool)
	sections := make(map[string]bool)
	for _, r := range bt.Assignments {
		key := r.Section + "." + r.Param
		if assigned[key] {
			summary.OverriddenAssigns++
		}
		assigned[key] = true
		sections[r.Section] = true
	}
	summary.SectionsAssigned = len(sections)

	return summary
}
