package domain

import "fmt"

// FailureKind classifies why a fetch produced no content.
type FailureKind string

const (
	FailBadRequest FailureKind = "bad_request"
	FailTransport  FailureKind = "transport"
	FailTimeout    FailureKind = "timeout"
	FailStatus     FailureKind = "status"
)

// FetchError is the typed failure returned by the fetcher. It never escapes
// the site processor; callers inspect Kind instead of parsing log output.
type FetchError struct {
	URL        string
	Kind       FailureKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == FailStatus {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
