package feed

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsportal/reader/internal/blogapi"
)

func TestProblemFrom(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		kind       ProblemKind
		httpStatus int
	}{
		{"not found", &blogapi.FetchError{Kind: blogapi.KindNotFound, Status: 404}, ProblemNotFound, http.StatusNotFound},
		{"http", &blogapi.FetchError{Kind: blogapi.KindHTTP, Status: 503}, ProblemHTTP, http.StatusBadGateway},
		{"wrapped", fmt.Errorf("loading: %w", &blogapi.FetchError{Kind: blogapi.KindParse}), ProblemParse, http.StatusBadGateway},
		{"invalid", fmt.Errorf("get_post: %w", blogapi.ErrInvalidInput), ProblemInvalid, http.StatusBadRequest},
		{"deadline", context.DeadlineExceeded, ProblemNetwork, http.StatusBadGateway},
		{"other", fmt.Errorf("boom"), ProblemUnknown, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ProblemFrom(tt.err)
			require.NotNil(t, p)
			assert.Equal(t, tt.kind, p.Kind)
			assert.Equal(t, tt.httpStatus, p.HTTPStatus())
			assert.NotEmpty(t, p.Message)
		})
	}

	assert.Nil(t, ProblemFrom(nil))
	var none *Problem
	assert.Equal(t, http.StatusOK, none.HTTPStatus())
}
