package runner

import "testing"

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name   string
		errors []string
		want   bool
	}{
		{"empty", nil, false},
		{"unrelated error", []string{"model refused the request"}, false},
		{"reconnect notice", []string{"Reconnecting to backend..."}, true},
		{"stream disconnected", []string{"ERROR: Stream Disconnected unexpectedly"}, true},
		{"stream closed", []string{"stream closed by remote"}, true},
		{"connection reset", []string{"read tcp: Connection Reset by peer"}, true},
		{"connection refused", []string{"dial: connection refused"}, true},
		{"network error", []string{"a generic NETWORK ERROR occurred"}, true},
		{"match among noise", []string{"something else", "stream closed"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRetryable(tc.errors); got != tc.want {
				t.Fatalf("isRetryable(%v) = %v, want %v", tc.errors, got, tc.want)
			}
		})
	}
}
