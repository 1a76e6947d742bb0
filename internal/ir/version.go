package ir

// Version constants for report output.
const (
	// ReportVersion is the version of the report layout emitted by the CLI.
	ReportVersion = "1"

	// ToolVersion is the doi-suggester version.
	ToolVersion = "0.1.0"
)
