package game

// Options holds host settings that come from the command line rather than
// the config file.
type Options struct {
	LogStats       bool    // Log window and perf stats through slog
	StatsWindowSec float64 // Overrides telemetry.stats_window when > 0
	OutputDir      string  // CSV logs, config copy and snapshots
	SnapshotDir    string  // Snapshot destination when OutputDir is empty
	RestorePath    string  // Start from a saved snapshot
	Headless       bool
	StepsPerUpdate int // Frames advanced per UpdateHeadless call
}
