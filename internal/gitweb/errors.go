package gitweb

import "fmt"

// NetworkError is returned when a page could not be retrieved: the connection
// failed, the request timed out, or the server answered with a non-2xx status.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("error fetching %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError is returned when a fetched document does not have the structure
// gitweb pages are expected to have. Listing is set for project list pages.
type ParseError struct {
	URL     string
	Reason  string
	Listing bool
	Err     error
}

func (e *ParseError) Error() string {
	what := "unexpected page structure"
	if e.Listing {
		what = "listing format not recognized"
	}

	if e.Err != nil {
		return fmt.Sprintf("%s at %s: %s: %v", what, e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s at %s: %s", what, e.URL, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
