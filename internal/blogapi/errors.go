package blogapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/newsportal/reader/internal/errors"
)

// ErrorKind classifies a failed fetch.
type ErrorKind int

const (
	// KindNetwork means no usable response arrived: transport failure, timeout or cancellation.
	KindNetwork ErrorKind = iota + 1
	// KindHTTP means the API answered with a non-success status.
	KindHTTP
	// KindParse means the response body could not be decoded.
	KindParse
	// KindNotFound means the requested post does not exist.
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindParse:
		return "parse"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// ErrInvalidInput is returned for a page below 1 or an empty slug, before any request is made.
var ErrInvalidInput = errors.NewStd("invalid request input")

// FetchError describes why an API call produced no result.
type FetchError struct {
	Kind     ErrorKind
	Status   int    // HTTP status for KindHTTP and KindNotFound, 0 otherwise
	Endpoint string // logical endpoint, e.g. "list_posts"
	Err      error  // underlying cause, nil for status failures
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("%s: HTTP %d %s", e.Endpoint, e.Status, http.StatusText(e.Status))
	case KindNotFound:
		return fmt.Sprintf("%s: not found", e.Endpoint)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %s failure: %v", e.Endpoint, e.Kind, e.Err)
		}
		return fmt.Sprintf("%s: %s failure", e.Endpoint, e.Kind)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ErrorCategory maps the kind onto the shared error taxonomy.
func (e *FetchError) ErrorCategory() errors.ErrorCategory {
	switch e.Kind {
	case KindNetwork:
		return errors.CategoryNetwork
	case KindHTTP:
		return errors.CategoryHTTP
	case KindParse:
		return errors.CategoryParsing
	case KindNotFound:
		return errors.CategoryNotFound
	default:
		return errors.CategoryGeneric
	}
}

// AsFetchError extracts the FetchError from err's chain.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// IsNotFound reports whether err is a not-found outcome.
func IsNotFound(err error) bool {
	fe, ok := AsFetchError(err)
	return ok && fe.Kind == KindNotFound
}

// build wraps a FetchError in an enhanced error for logging and telemetry.
// elapsed is the time spent on the call before it failed.
func (e *FetchError) build(url string, timeout, elapsed time.Duration) error {
	b := errors.New(e).
		Component("blogapi").
		Category(e.ErrorCategory()).
		Context("endpoint", e.Endpoint).
		Context("kind", e.Kind.String()).
		NetworkContext(url, timeout).
		Timing(e.Endpoint, elapsed)
	if e.Status != 0 {
		b = b.Context("status", e.Status)
	}
	return b.Build()
}
