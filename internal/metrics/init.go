package metrics

// InitializeMetrics pre-populates the expected label combinations so that
// every metric is exported from the first Prometheus scrape.
func InitializeMetrics() {
	for _, op := range []string{"stat", "open", "rename"} {
		FilesystemOperationDuration.WithLabelValues(op)
		FilesystemOperationErrors.WithLabelValues(op)
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemStaleErrors.WithLabelValues(op)
	}

	for _, t := range []string{"image", "video"} {
		ThumbnailGenerationDuration.WithLabelValues(t)
		for _, status := range []string{"success", "error", "skipped"} {
			ThumbnailGenerationsTotal.WithLabelValues(t, status)
		}
		MediaFilesTotal.WithLabelValues(t)
	}
	for _, status := range []string{"generated", "skipped", "failed"} {
		ThumbnailGenerationFilesTotal.WithLabelValues(status)
	}

	for _, r := range []string{"ok", "invalid", "expired"} {
		LinkOpensTotal.WithLabelValues(r)
	}
	for _, r := range []string{"ok", "missing", "invalid", "expired", "not_covered"} {
		CookieVerificationsTotal.WithLabelValues(r)
	}
	for _, k := range []string{"original", "thumbnail", "archive"} {
		for _, s := range []string{"200", "304", "403", "404"} {
			ObjectRequestsTotal.WithLabelValues(k, s)
		}
	}

	for _, op := range []string{"initialize_schema", "create_link", "get_link", "count_links",
		"delete_expired_links", "session_get", "session_set", "session_delete", "get_metadata", "set_metadata"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
