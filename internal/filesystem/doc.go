/*
Package filesystem wraps os.Stat, os.Open and os.Rename with retry logic for
NFS stale file handle errors.

Only ESTALE triggers a retry; every other error is returned immediately.
Retries back off exponentially (50ms, 100ms, 200ms by default, capped at
MaxBackoff):

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())

Metrics are reported through an [Observer] registered once at startup with
[SetObserver]. Without one, nothing is recorded.
*/
package filesystem
