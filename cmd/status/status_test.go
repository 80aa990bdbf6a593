package status

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsportal/reader/internal/render"
)

type fakePinger struct {
	code int
	err  error
}

func (p fakePinger) Ping(context.Context) (int, error) { return p.code, p.err }

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		locale  string
		pinger  fakePinger
		want    string
		wantErr bool
	}{
		{"available", "en", fakePinger{code: 200}, "API available\n", false},
		{"error status", "en", fakePinger{code: 503}, "API error (503)\n", true},
		{"unreachable", "en", fakePinger{err: errors.New("dial tcp: refused")}, "API unreachable\n", true},
		{"russian", "ru", fakePinger{code: 200}, "API доступен\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := render.New(render.Options{Locale: tt.locale, Location: time.UTC})
			var out bytes.Buffer

			err := Check(context.Background(), &out, tt.pinger, r)

			assert.Equal(t, tt.want, out.String())
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnavailable)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
