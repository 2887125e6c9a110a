package metrics

import "gallery-viewer/internal/filesystem"

type filesystemObserver struct{}

// NewFilesystemObserver returns a filesystem.Observer backed by the
// filesystem metrics of this package.
func NewFilesystemObserver() filesystem.Observer {
	return filesystemObserver{}
}

func (filesystemObserver) ObserveOperation(operation string, durationSeconds float64, err error) {
	FilesystemOperationDuration.WithLabelValues(operation).Observe(durationSeconds)
	if err != nil {
		FilesystemOperationErrors.WithLabelValues(operation).Inc()
	}
}

func (filesystemObserver) ObserveRetry(operation string, outcome filesystem.RetryOutcome) {
	switch outcome {
	case filesystem.RetryStale:
		FilesystemStaleErrors.WithLabelValues(operation).Inc()
	case filesystem.RetryAttempt:
		FilesystemRetryAttempts.WithLabelValues(operation).Inc()
	case filesystem.RetrySucceeded:
		FilesystemRetrySuccess.WithLabelValues(operation).Inc()
	case filesystem.RetryExhausted:
		FilesystemRetryFailures.WithLabelValues(operation).Inc()
	}
}
