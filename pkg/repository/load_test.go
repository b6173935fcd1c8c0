package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/djcass44/all-your-arch/internal/archivetest"
	"github.com/djcass44/all-your-arch/pkg/desc"
	"github.com/djcass44/all-your-arch/pkg/requestutil"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMirror(t *testing.T, files map[string][]byte) *httptest.Server {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(data)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testDatabase(t *testing.T) []byte {
	return archivetest.Tar(t,
		archivetest.File{Name: "ag-2.2.0-1/"},
		archivetest.File{Name: "ag-2.2.0-1/desc", Body: string(record("ag", "2.2.0-1"))},
		archivetest.File{Name: "zlib-1.3-1/"},
		archivetest.File{Name: "zlib-1.3-1/desc", Body: string(record("zlib", "1.3-1"))},
	)
}

func TestLoad(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	db := testDatabase(t)
	files := archivetest.Tar(t,
		archivetest.File{Name: "ag-2.2.0-1/desc", Body: string(record("ag", "2.2.0-1"))},
		archivetest.File{Name: "ag-2.2.0-1/files", Body: "%FILES%\nusr/\nusr/bin/\nusr/bin/ag\n\n"},
		archivetest.File{Name: "zlib-1.3-1/desc", Body: string(record("zlib", "1.3-1"))},
		archivetest.File{Name: "zlib-1.3-1/files", Body: "%FILES%\nusr/\nusr/lib/\nusr/lib/libz.so\n\n"},
	)

	for _, c := range archivetest.Compressions {
		t.Run(string(c), func(t *testing.T) {
			ts := newMirror(t, map[string][]byte{
				"/core/os/x86_64/core.db":    archivetest.Compress(t, c, db),
				"/core/os/x86_64/core.files": archivetest.Compress(t, c, files),
			})

			idx, err := Load(ctx, "core", ts.URL+"/core/os/x86_64/", WithFiles(true), WithHTTPClient(ts.Client()))
			require.NoError(t, err)

			assert.EqualValues(t, "core", idx.Name())
			assert.EqualValues(t, ts.URL+"/core/os/x86_64", idx.Source())
			assert.EqualValues(t, []string{"ag", "zlib"}, names(idx))

			out, ok := idx.Files("zlib")
			require.True(t, ok)
			assert.EqualValues(t, []string{"usr/", "usr/lib/", "usr/lib/libz.so"}, out)
		})
	}
}

func TestLoad_MissingFiles(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	ts := newMirror(t, map[string][]byte{
		"/extra.db": archivetest.Compress(t, archivetest.Gzip, testDatabase(t)),
	})

	idx, err := Load(ctx, "extra", ts.URL, WithFiles(true))
	require.NoError(t, err)
	assert.EqualValues(t, 2, idx.Count())

	_, ok := idx.Files("ag")
	assert.False(t, ok)
}

func TestLoad_Errors(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	broken := archivetest.Tar(t,
		archivetest.File{Name: "ag-2.2.0-1/desc", Body: string(record("ag", "2.2.0-1"))},
		archivetest.File{Name: "bad-1.0-1/desc", Body: "%NAME\nbad\n\n"},
	)
	ts := newMirror(t, map[string][]byte{
		"/broken.db": archivetest.Compress(t, archivetest.Zstd, broken),
	})

	t.Run("missing database", func(t *testing.T) {
		_, err := Load(ctx, "core", ts.URL)
		assert.ErrorIs(t, err, requestutil.ErrNotFound)
	})
	t.Run("undecodable entry", func(t *testing.T) {
		_, err := Load(ctx, "broken", ts.URL)
		var decodeErr *EntryDecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.EqualValues(t, "bad-1.0-1/desc", decodeErr.Entry)
		assert.ErrorIs(t, err, desc.ErrMalformedBlock)
	})
}
