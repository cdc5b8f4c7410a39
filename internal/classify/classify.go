// Package classify maps raw summarizer errors onto a closed set of
// categories and decides whether, and after how long, a job should be
// retried.
package classify

import (
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/jaye773/summarizer-core/internal/job"
)

// Classification is the pure output of Classify.
type Classification struct {
	Category        job.ErrorCategory
	Retriable       bool
	SuggestedBackoff time.Duration
}

// rule is one entry of the prioritised substring/type rule table. Rules are
// tried in order; the first match wins.
type rule struct {
	substrings []string
	category   job.ErrorCategory
}

var rules = []rule{
	{[]string{"timeout", "deadline exceeded", "context canceled"}, job.CategoryTimeout},
	{[]string{"429", "rate limit", "too many requests"}, job.CategoryRateLimit},
	{[]string{"401", "unauthorized", "invalid credentials"}, job.CategoryAuth},
	{[]string{"403", "forbidden"}, job.CategoryPermissionDenied},
	{[]string{"404", "not found"}, job.CategoryNotFound},
	{[]string{"quota", "exceeded your current quota"}, job.CategoryQuotaExceeded},
	{[]string{"transcript", "disabled", "invalid input", "invalid url", "malformed"}, job.CategoryInvalidInput},
	{[]string{"connection refused", "no such host", "network unreachable", "eof"}, job.CategoryNetwork},
	{[]string{"internal error", "panic"}, job.CategoryInternal},
}

// retriableCategories is the default retry policy per category. Anything not
// listed here defaults to non-retriable.
var retriableCategories = map[job.ErrorCategory]bool{
	job.CategoryNetwork:   true,
	job.CategoryTimeout:   true,
	job.CategoryRateLimit: true,
	job.CategoryInternal:  true,
	job.CategoryUnknown:   true,
}

// baseBackoff is the category-specific base used in base * 2^attempt.
var baseBackoff = map[job.ErrorCategory]time.Duration{
	job.CategoryTimeout:   1 * time.Second,
	job.CategoryNetwork:   1 * time.Second,
	job.CategoryRateLimit: 30 * time.Second,
	job.CategoryInternal:  5 * time.Second,
}

const defaultBaseBackoff = 1 * time.Second
const maxBackoffPerAttempt = 5 * time.Minute

// Classify sorts a raw error into a category and its default retry policy.
// A *PermanentError always classifies as non-retriable regardless of its
// wrapped category's usual policy.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Category: job.CategoryUnknown, Retriable: false}
	}

	var perm *PermanentError
	forcedNonRetriable := errors.As(err, &perm)
	target := err
	if forcedNonRetriable {
		target = perm.Err
	}

	category := categorize(target)
	retriable := retriableCategories[category] && !forcedNonRetriable

	return Classification{
		Category:         category,
		Retriable:        retriable,
		SuggestedBackoff: backoffFor(category, 0),
	}
}

func categorize(err error) job.ErrorCategory {
	msg := strings.ToLower(err.Error())
	for _, r := range rules {
		for _, s := range r.substrings {
			if strings.Contains(msg, s) {
				return r.category
			}
		}
	}
	return job.CategoryUnknown
}

// backoffFor computes base*2^attempt with +-25% jitter, capped at
// maxBackoffPerAttempt, using backoff.ExponentialBackOff as the generator
// rather than hand-rolled jitter math. A fresh BackOff is built per call and
// advanced to the requested attempt, since SuggestedBackoff/DecideRetry are
// pure functions of (category, attempt) with no per-job retry state to
// carry across calls.
func backoffFor(category job.ErrorCategory, attempt int) time.Duration {
	base, ok := baseBackoff[category]
	if !ok {
		base = defaultBaseBackoff
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.MaxInterval = maxBackoffPerAttempt
	b.Multiplier = 2
	b.RandomizationFactor = 0.25
	b.Reset()

	var d time.Duration
	for i := 0; i <= attempt; i++ {
		d = b.NextBackOff()
	}
	if d == backoff.Stop || d > maxBackoffPerAttempt {
		d = maxBackoffPerAttempt
	}
	return d
}

// Decision is the outcome of DecideRetry.
type Decision struct {
	Retry bool
	Delay time.Duration
}

// neverRetryCategories never retry regardless of attempt count.
var neverRetryCategories = map[job.ErrorCategory]bool{
	job.CategoryInvalidInput:     true,
	job.CategoryAuth:             true,
	job.CategoryNotFound:         true,
	job.CategoryPermissionDenied: true,
}

// DefaultMaxRetries is the retry budget for retriable categories.
const DefaultMaxRetries = 3

// DecideRetry applies the max-retries and category policy to a classified
// error for a job currently at the given attempt count (attempts already
// made, 0-indexed).
func DecideRetry(c Classification, attempt, maxRetries int) Decision {
	if neverRetryCategories[c.Category] {
		return Decision{Retry: false}
	}
	if !c.Retriable {
		return Decision{Retry: false}
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if attempt >= maxRetries {
		return Decision{Retry: false}
	}
	return Decision{Retry: true, Delay: backoffFor(c.Category, attempt)}
}
