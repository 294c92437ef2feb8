package appender

import (
	"errors"
	"sync"

	"fjacquet/logmongo/internal/apperror"
	"fjacquet/logmongo/internal/logging"

	"golang.org/x/time/rate"
)

// ErrorReporter logs appender errors at a bounded rate. Errors over the
// limit are counted and the count is attached to the next report.
type ErrorReporter struct {
	logger  logging.Logger
	limiter *rate.Limiter

	mu         sync.Mutex
	suppressed int
}

// NewErrorReporter allows perSecond reports per second with a burst of one.
// perSecond <= 0 disables the limit.
func NewErrorReporter(logger logging.Logger, perSecond float64) *ErrorReporter {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &ErrorReporter{
		logger:  logger,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Report logs err, or counts it if the rate limit is exceeded.
func (r *ErrorReporter) Report(err error) {
	if err == nil {
		return
	}

	r.mu.Lock()
	if !r.limiter.Allow() {
		r.suppressed++
		r.mu.Unlock()
		return
	}
	suppressed := r.suppressed
	r.suppressed = 0
	r.mu.Unlock()

	log := r.logger.WithError(err)
	if suppressed > 0 {
		log = log.WithField(logging.FieldSuppressed, suppressed)
	}

	var writeErr *apperror.WriteError
	switch {
	case errors.As(err, &writeErr):
		log.WithField(logging.FieldCollection, writeErr.Collection).Error("Failed to write log documents")
	case errors.Is(err, apperror.ErrQueueFull):
		log.Warn("Log documents dropped")
	default:
		if names := failedFields(err); len(names) > 0 {
			log = log.WithField(logging.FieldField, names)
		}
		log.Warn("Log document rendered with errors")
	}
}

// failedFields lists the document fields named by the FieldErrors in err.
func failedFields(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var names []string
		for _, e := range joined.Unwrap() {
			names = append(names, failedFields(e)...)
		}
		return names
	}
	var fieldErr *apperror.FieldError
	if errors.As(err, &fieldErr) {
		return []string{fieldErr.Field}
	}
	return nil
}

// Suppressed returns how many errors have been dropped since the last report.
func (r *ErrorReporter) Suppressed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.suppressed
}
