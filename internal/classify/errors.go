package classify

// PermanentError signals that the wrapped error should never be retried,
// regardless of what category it classifies into. It is the same shape as
// the teacher's lib/jobqueue/worker.PermanentError, kept so the worker pool's
// single error-handling path stays uniform across both queue-level and
// classifier-level "do not retry" signals.
type PermanentError struct {
	Err error
}

// Permanent wraps err so the caller never retries it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }
