package value

// Version constants stamped into the plan journal.
const (
	// SchemaVersion is the record/plan schema version.
	SchemaVersion = "1"

	// EngineVersion is the xmsync engine version.
	EngineVersion = "0.1.0"
)
