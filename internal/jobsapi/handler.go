// Package jobsapi exposes the core's two library-level contracts — job
// submission and job query — over HTTP, the thin demonstration wiring
// referenced by spec.md §6 ("Job submission", "Job query"). It owns no
// business logic beyond request decoding: Submit goes straight to the
// priority queue, Get straight to the state store.
package jobsapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jaye773/summarizer-core/internal/classify"
	"github.com/jaye773/summarizer-core/internal/job"
	"github.com/jaye773/summarizer-core/internal/logging"
	"github.com/jaye773/summarizer-core/internal/queue"
	"github.com/jaye773/summarizer-core/internal/statestore"
)

// Handler registers the job submission and query endpoints as an Echo
// RouteRegistrar, matching the shape of pkg/fx/echo.RouteRegistrar.
type Handler struct {
	queue *queue.Queue
	store *statestore.Store
	log   logging.StandardLogger
}

// New constructs a Handler over q and store.
func New(q *queue.Queue, store *statestore.Store, log logging.StandardLogger) *Handler {
	if log == nil {
		log = &logging.DiscardLogger{}
	}
	return &Handler{queue: q, store: store, log: log}
}

// RegisterRoutes implements pkg/fx/echo.RouteRegistrar.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/jobs", h.submit)
	e.GET("/jobs/:id", h.get)
}

// submitRequest is the wire shape of a job submission, matching spec.md
// §6's submit({kind, payload, priority, client_id}).
type submitRequest struct {
	Kind       job.Kind     `json:"kind"`
	Priority   job.Priority `json:"priority"`
	ClientID   string       `json:"client_id"`
	MaxRetries int          `json:"max_retries"`
	Payload    job.Payload  `json:"payload"`
}

type submitResponse struct {
	JobID string `json:"job_id"`
}

func (h *Handler) submit(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return &queue.RejectedError{Reason: queue.ReasonInvalid}
	}
	if req.ClientID == "" || (req.Payload.URL == "" && len(req.Payload.URLs) == 0) {
		return &queue.RejectedError{Reason: queue.ReasonInvalid}
	}
	if req.Priority == 0 {
		req.Priority = job.PriorityMedium
	}
	if req.MaxRetries == 0 {
		req.MaxRetries = classify.DefaultMaxRetries
	}

	j := job.New(req.Kind, req.Priority, req.Payload, req.ClientID, req.MaxRetries)
	// Upsert before Submit: once Submit returns, a worker may Pop and
	// transition the job before this goroutine runs again, so the record
	// must already be visible to store.Get/Transition by then.
	h.store.Upsert(j)
	if err := h.queue.Submit(j); err != nil {
		j.Status = job.StatusFailed
		j.LastError = &job.LastError{
			Category:   job.CategoryInvalidInput,
			Message:    err.Error(),
			Retriable:  false,
			OccurredAt: time.Now(),
		}
		h.store.Upsert(j)
		return err
	}
	return c.JSON(http.StatusAccepted, submitResponse{JobID: j.ID})
}

// jobView is the wire shape of a job query response, matching spec.md §6's
// get(job_id) -> {status, progress, result?, error?, timestamps}.
type jobView struct {
	ID         string          `json:"id"`
	Kind       job.Kind        `json:"kind"`
	Priority   job.Priority    `json:"priority"`
	ClientID   string          `json:"client_id"`
	Status     job.Status      `json:"status"`
	Progress   float64         `json:"progress"`
	Step       string          `json:"step,omitempty"`
	Attempt    int             `json:"attempt"`
	MaxRetries int             `json:"max_retries"`
	Result     *job.Result     `json:"result,omitempty"`
	LastError  *job.LastError  `json:"last_error,omitempty"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`
}

func (h *Handler) get(c echo.Context) error {
	id := c.Param("id")
	j := h.store.Get(id)
	if j == nil {
		return echo.NewHTTPError(http.StatusNotFound, "job not found")
	}
	return c.JSON(http.StatusOK, toView(j))
}

func toView(j *job.Job) jobView {
	return jobView{
		ID:         j.ID,
		Kind:       j.Kind,
		Priority:   j.Priority,
		ClientID:   j.ClientID,
		Status:     j.Status,
		Progress:   j.Progress,
		Step:       j.Step,
		Attempt:    j.Attempt,
		MaxRetries: j.MaxRetries,
		Result:     j.Result,
		LastError:  j.LastError,
		CreatedAt:  j.CreatedAt.Format(timeLayout),
		UpdatedAt:  j.UpdatedAt.Format(timeLayout),
	}
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"
