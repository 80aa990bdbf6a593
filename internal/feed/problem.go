// Package feed holds the per-view fetch controllers that drive the blog API
// and keep the state the presentation layer renders from.
package feed

import (
	"context"
	"net/http"

	"github.com/newsportal/reader/internal/blogapi"
	"github.com/newsportal/reader/internal/errors"
)

// ProblemKind classifies a failure for display.
type ProblemKind string

const (
	ProblemNetwork  ProblemKind = "network"
	ProblemHTTP     ProblemKind = "http"
	ProblemParse    ProblemKind = "parse"
	ProblemNotFound ProblemKind = "not_found"
	ProblemInvalid  ProblemKind = "invalid"
	ProblemUnknown  ProblemKind = "unknown"
)

// Problem is a display-ready description of a failed fetch. Message is the
// raw error text, localization happens at render time.
type Problem struct {
	Kind    ProblemKind
	Status  int
	Message string
}

// ProblemFrom converts an API error into a Problem. nil yields nil.
func ProblemFrom(err error) *Problem {
	if err == nil {
		return nil
	}

	if fe, ok := blogapi.AsFetchError(err); ok {
		p := &Problem{Status: fe.Status, Message: fe.Error()}
		switch fe.Kind {
		case blogapi.KindNetwork:
			p.Kind = ProblemNetwork
		case blogapi.KindHTTP:
			p.Kind = ProblemHTTP
		case blogapi.KindParse:
			p.Kind = ProblemParse
		case blogapi.KindNotFound:
			p.Kind = ProblemNotFound
		default:
			p.Kind = ProblemUnknown
		}
		return p
	}

	switch {
	case errors.Is(err, blogapi.ErrInvalidInput):
		return &Problem{Kind: ProblemInvalid, Status: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &Problem{Kind: ProblemNetwork, Message: err.Error()}
	default:
		return &Problem{Kind: ProblemUnknown, Message: err.Error()}
	}
}

// HTTPStatus is the status a page showing this problem should be served with.
func (p *Problem) HTTPStatus() int {
	if p == nil {
		return http.StatusOK
	}
	switch p.Kind {
	case ProblemNotFound:
		return http.StatusNotFound
	case ProblemInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
