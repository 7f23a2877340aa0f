package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every management decision.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects decision records during a simulation.
// A nil *SimulationTrace records nothing, so policies can hold one
// unconditionally.
type SimulationTrace struct {
	Config     TraceConfig
	Migrations []MigrationRecord
	Shutdowns  []ShutdownRecord
	Placements []PlacementRecord
	Rejections []RejectionRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording, or nil
// when the level disables tracing.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	if config.Level == TraceLevelNone || config.Level == "" {
		return nil
	}
	return &SimulationTrace{
		Config:     config,
		Migrations: make([]MigrationRecord, 0),
		Shutdowns:  make([]ShutdownRecord, 0),
		Placements: make([]PlacementRecord, 0),
		Rejections: make([]RejectionRecord, 0),
	}
}

// RecordMigration appends a migration decision record.
func (st *SimulationTrace) RecordMigration(record MigrationRecord) {
	if st == nil {
		return
	}
	st.Migrations = append(st.Migrations, record)
}

// RecordShutdown appends a shutdown decision record.
func (st *SimulationTrace) RecordShutdown(record ShutdownRecord) {
	if st == nil {
		return
	}
	st.Shutdowns = append(st.Shutdowns, record)
}

// RecordPlacement appends a placement decision record.
func (st *SimulationTrace) RecordPlacement(record PlacementRecord) {
	if st == nil {
		return
	}
	st.Placements = append(st.Placements, record)
}

// RecordRejection appends a rejected relocation record.
func (st *SimulationTrace) RecordRejection(record RejectionRecord) {
	if st == nil {
		return
	}
	st.Rejections = append(st.Rejections, record)
}
