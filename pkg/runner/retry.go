package runner

import "strings"

// retryablePatterns are disconnection signatures in collected stream errors
// that indicate a recoverable link interruption rather than a logic error.
// Matching is case-insensitive substring.
var retryablePatterns = []string{
	"reconnecting",
	"stream disconnected",
	"stream closed",
	"connection reset",
	"connection refused",
	"network error",
}

// isRetryable reports whether any collected error message matches a
// disconnection signature.
func isRetryable(errors []string) bool {
	for _, msg := range errors {
		lower := strings.ToLower(msg)
		for _, pattern := range retryablePatterns {
			if strings.Contains(lower, pattern) {
				return true
			}
		}
	}
	return false
}
