package domain

import "time"

// DateLayout is the calendar-date format used across every file grammar.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO calendar date in the caller's local time zone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// FormatDate renders a time as an ISO calendar date, dropping the time of day.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Status is the completion state of a task.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)

// Priority orders tasks from None (lowest) to High.
type Priority int

const (
	PriorityNone Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
)

// Source identifies the backend a task came from. The string value doubles as
// the backend short name used as the identifier prefix.
type Source string

const (
	SourceLocalFile Source = "local"
	SourceObsidian  Source = "obsidian"
)

// Icon returns the one-glyph marker list views show next to a task.
func (s Source) Icon() string {
	switch s {
	case SourceObsidian:
		return "◆"
	default:
		return "■"
	}
}

// Task is a single item reconstructed from one physical line of a backing
// file. Tasks are value objects: mutation operations rewrite the file and
// return a fresh Task rather than modifying one in place.
//
// ID encodes "<backend-short-name>:<locator>" and, together with SourcePath
// and SourceLine, addresses the exact physical line the task came from. The
// addressing is positional: if the file is edited between a fetch and a
// mutation, the identifier may point at different content.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	Due         *time.Time `json:"due,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Source      Source     `json:"source"`
	SourceLine  int        `json:"source_line,omitempty"`
	SourcePath  string     `json:"source_path,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// IsDone reports whether the task has been completed.
func (t *Task) IsDone() bool {
	return t != nil && t.Status == StatusDone
}

// NewTask describes a task to be created. It is never round-tripped back.
type NewTask struct {
	Title    string
	Priority Priority
	Due      *time.Time
	Tags     []string
	Source   Source
}

// TaskUpdate is a partial change set. Nil fields are left unchanged.
//
// Due needs one extra bit: DueSet false means "leave the due date alone",
// DueSet true with a nil Due means "clear it".
type TaskUpdate struct {
	Title    *string
	Status   *Status
	Priority *Priority
	Due      *time.Time
	DueSet   bool
	Tags     *[]string
}
