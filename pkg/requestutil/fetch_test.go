package requestutil

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/djcass44/all-your-arch/internal/archivetest"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	payload := []byte("%NAME%\nag\n\n")

	for _, c := range archivetest.Compressions {
		t.Run(string(c), func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write(archivetest.Compress(t, c, payload))
			}))
			defer ts.Close()

			buf := &bytes.Buffer{}
			require.NoError(t, Fetch(ctx, ts.Client(), ts.URL+"/core.db", buf))
			assert.EqualValues(t, payload, buf.Bytes())
		})
	}
}

func TestFetch_Status(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer ts.Close()

	var cases = []struct {
		path string
		err  error
	}{
		{"/missing", ErrNotFound},
		{"/broken", ErrUnexpectedStatus},
	}
	for _, tt := range cases {
		t.Run(tt.path, func(t *testing.T) {
			err := Fetch(ctx, nil, ts.URL+tt.path, &bytes.Buffer{})
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
