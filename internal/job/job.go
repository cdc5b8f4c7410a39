// Package job defines the core value types shared by every other component:
// Job, its kind/priority/status enums, and the progress/error records
// attached to it.
package job

import (
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes the shape of a job's payload.
type Kind string

const (
	KindVideo    Kind = "video"
	KindPlaylist Kind = "playlist"
	KindBatch    Kind = "batch"
)

// Priority orders jobs for service; lower numeric value is serviced first.
type Priority int

const (
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

// Status is a node in the job state machine (see Transition).
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRetry      Status = "retry"
	StatusCancelled  Status = "cancelled"
)

// ErrorCategory is the closed set of buckets the classifier sorts raw errors
// into.
type ErrorCategory string

const (
	CategoryNetwork          ErrorCategory = "network"
	CategoryTimeout          ErrorCategory = "timeout"
	CategoryRateLimit        ErrorCategory = "rate_limit"
	CategoryAuth             ErrorCategory = "auth"
	CategoryNotFound         ErrorCategory = "not_found"
	CategoryPermissionDenied ErrorCategory = "permission_denied"
	CategoryInvalidInput     ErrorCategory = "invalid_input"
	CategoryQuotaExceeded    ErrorCategory = "quota_exceeded"
	CategoryInternal         ErrorCategory = "internal"
	CategoryUnknown          ErrorCategory = "unknown"
)

// LastError records the terminal or most recent failure of a job.
type LastError struct {
	Category   ErrorCategory `json:"category"`
	Message    string        `json:"message"`
	Retriable  bool          `json:"retriable"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// Payload is the kind-specific input to a job. It is opaque to every
// component except the Summarizer the caller injects.
type Payload struct {
	URL      string   `json:"url,omitempty"`
	URLs     []string `json:"urls,omitempty"`
	Model    string   `json:"model,omitempty"`
	Metadata any      `json:"metadata,omitempty"`
}

// Result is the opaque artifact produced by a successful summarization.
type Result struct {
	SummaryExcerpt string `json:"summary_excerpt"`
	Title          string `json:"title,omitempty"`
	Source         string `json:"source,omitempty"` // "cache" | "generated"
	Full           any    `json:"full,omitempty"`
}

// Job is the unit of work flowing through the queue, worker pool, and state
// store.
type Job struct {
	ID         string     `json:"id"`
	Kind       Kind       `json:"kind"`
	Priority   Priority   `json:"priority"`
	Payload    Payload    `json:"payload"`
	ClientID   string     `json:"client_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Status     Status     `json:"status"`
	Progress   float64    `json:"progress"`
	Step       string     `json:"step,omitempty"`
	Attempt    int        `json:"attempt"`
	MaxRetries int        `json:"max_retries"`
	Result     *Result    `json:"result,omitempty"`
	LastError  *LastError `json:"last_error,omitempty"`

	// seq breaks priority ties in FIFO order; it is assigned by the queue on
	// submit and is not part of the persisted-state contract beyond ordering.
	seq uint64
}

// Seq returns the monotonic submission sequence used to break priority ties.
func (j *Job) Seq() uint64 { return j.seq }

// SetSeq is called once by the queue at submission time.
func (j *Job) SetSeq(seq uint64) { j.seq = seq }

// New constructs a Job in the Pending state with a fresh ID.
func New(kind Kind, priority Priority, payload Payload, clientID string, maxRetries int) *Job {
	now := time.Now()
	return &Job{
		ID:         uuid.NewString(),
		Kind:       kind,
		Priority:   priority,
		Payload:    payload,
		ClientID:   clientID,
		CreatedAt:  now,
		UpdatedAt:  now,
		Status:     StatusPending,
		MaxRetries: maxRetries,
	}
}

// Clone returns a deep-enough copy safe to hand to a caller outside the lock
// guarding the original.
func (j *Job) Clone() *Job {
	cp := *j
	if j.Result != nil {
		r := *j.Result
		cp.Result = &r
	}
	if j.LastError != nil {
		e := *j.LastError
		cp.LastError = &e
	}
	if j.Payload.URLs != nil {
		cp.Payload.URLs = append([]string(nil), j.Payload.URLs...)
	}
	return &cp
}

// Terminal reports whether status is one from which no further transition is
// possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}
