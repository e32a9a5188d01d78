package pipeline

import "time"

const (
	// InputExt marks eligible transcript files.
	InputExt = ".f.txt"
	// OutputExt replaces InputExt on the derived output path.
	OutputExt = ".json"
	// ErrorSuffix is appended to the input file name for error artifacts.
	ErrorSuffix = ".error.txt"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
	// StatusSkipped only appears in watch mode, for files whose output
	// already exists. Batch runs exclude those before launching workers.
	StatusSkipped = "skipped"
)

// Result is the outcome for one work item.
type Result struct {
	File     string
	Status   string
	Output   string
	Message  string
	Duration time.Duration
}

// Summary aggregates one batch run.
type Summary struct {
	RunID     string
	Found     int
	Skipped   int
	Processed int
	Success   int
	Errors    int
	WallTime  time.Duration
	// APITime is the accumulated per-file duration; with concurrent
	// workers it normally exceeds WallTime.
	APITime time.Duration
	Results []Result
}

// workItem is one input file and its derived destinations.
type workItem struct {
	inputPath  string
	outputPath string
	errorPath  string
}
