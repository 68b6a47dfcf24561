package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a tracked video.
type Status string

const (
	StatusPending     Status = "pending"
	StatusFetching    Status = "fetching"
	StatusFetched     Status = "fetched"
	StatusSummarizing Status = "summarizing"
	StatusSummarized  Status = "summarized"
	StatusNotifying   Status = "notifying"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

// DaemonStopReason is the error message set when in-flight videos are failed
// due to daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusPending,
	StatusFetching,
	StatusFetched,
	StatusSummarizing,
	StatusSummarized,
	StatusNotifying,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusFetching:    {},
	StatusSummarizing: {},
	StatusNotifying:   {},
}

type statusTransition struct {
	from Status
	to   Status
}

// stageRollbackTransitions map an interrupted in-flight status back to the
// stable status the stage started from.
var stageRollbackTransitions = []statusTransition{
	{from: StatusFetching, to: StatusPending},
	{from: StatusSummarizing, to: StatusFetched},
	{from: StatusNotifying, to: StatusSummarized},
}

// HealthSummary describes aggregated queue counts per key lifecycle state.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}

// Video is one tracked video persisted in SQLite.
type Video struct {
	ID          int64
	VideoID     string
	ChannelID   string
	ChannelName string
	Title       string
	URL         string
	PublishedAt time.Time
	Status      Status

	TranscriptPath  string
	TranscriptChars int
	ErrorMessage    string

	FinalSummary      string
	SummaryMethod     string
	PrimaryModel      string
	SecondaryModel    string
	SynthesisModel    string
	FallbackUsed      bool
	FallbackStrategy  string
	ProcessingSeconds float64
	CostEstimate      float64
	TokenUsageJSON    string

	NotifiedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing reports whether the video is mid-stage.
func (v Video) IsProcessing() bool {
	_, ok := processingStatuses[v.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight stage.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsTerminal reports whether the video needs no further work.
func (v Video) IsTerminal() bool {
	return v.Status == StatusCompleted || v.Status == StatusFailed
}

// SetFailed marks the video as failed with the given error message.
func (v *Video) SetFailed(message string) {
	v.Status = StatusFailed
	v.ErrorMessage = message
}
