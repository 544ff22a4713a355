package trace

// TraceLevel controls the verbosity of build tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelSteps captures every insertion, discretization and assignment.
	TraceLevelSteps TraceLevel = "steps"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelSteps: true,
	"":              true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// BuildTrace collects step records while a cell model is built.
// A nil *BuildTrace is valid and records nothing.
type BuildTrace struct {
	Level       TraceLevel
	Inserts     []InsertRecord
	Discretizes []DiscretizeRecord
	Assignments []AssignRecord
}

// NewBuildTrace creates a BuildTrace ready for recording.
func NewBuildTrace(level TraceLevel) *BuildTrace {
	return &BuildTrace{
		Level:       level,
		Inserts:     make([]InsertRecord, 0),
		Discretizes: make([]DiscretizeRecord, 0),
		Assignments: make([]AssignRecord, 0),
	}
}

func (bt *BuildTrace) enabled() bool {
	return bt != nil && bt.Level == TraceLevelSteps
}

// RecordInsert appends a mechanism insertion record.
func (bt *BuildTrace) RecordInsert(record InsertRecord) {
	if bt.enabled() {
		bt.Inserts = append(bt.Inserts, record)
	}
}

// RecordDiscretize appends a discretization record.
func (bt *BuildTrace) RecordDiscretize(record DiscretizeRecord) {
	if bt.enabled() {
		bt.Discretizes = append(bt.Discretizes, record)
	}
}

// RecordAssign appends a parameter assignment record.
func (bt *BuildTrace) RecordAssign(record AssignRecord) {
	if bt.enabled() {
		bt.Assignments = append(bt.Assignments, record)
	}
}
