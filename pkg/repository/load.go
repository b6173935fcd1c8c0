package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/djcass44/all-your-arch/pkg/archiveutil"
	"github.com/djcass44/all-your-arch/pkg/requestutil"
	"github.com/go-logr/logr"
)

const (
	ExtDatabase = ".db"
	ExtFiles    = ".files"

	entryDesc  = "desc"
	entryFiles = "files"
)

// Load downloads the database of the named repository from url and
// builds an index from it. When WithFiles is set the files database
// is also downloaded, and a missing one is tolerated.
func Load(ctx context.Context, name, url string, opts ...Option) (*Index, error) {
	o := newOptions(opts)
	log := logr.FromContextOrDiscard(ctx).WithValues("repo", name, "url", url)
	log.V(1).Info("loading repository")

	url = strings.TrimSuffix(url, "/")

	entries, err := fetchEntries(ctx, o.client, url+"/"+name+ExtDatabase, entryDesc)
	if err != nil {
		return nil, fmt.Errorf("fetching %s database: %w", name, err)
	}
	log.V(2).Info("fetched database", "entries", len(entries))

	opts = append(slices.Clip(opts), WithSource(name, url))
	if o.files {
		fileEntries, err := fetchEntries(ctx, o.client, url+"/"+name+ExtFiles, entryFiles)
		switch {
		case errors.Is(err, requestutil.ErrNotFound):
			log.Info("repository has no files database")
		case err != nil:
			return nil, fmt.Errorf("fetching %s files database: %w", name, err)
		default:
			log.V(2).Info("fetched files database", "entries", len(fileEntries))
			opts = append(opts, WithFileEntries(fileEntries))
		}
	}

	idx, err := Build(ctx, entries, opts...)
	if err != nil {
		return nil, err
	}
	log.V(1).Info("loaded repository", "count", idx.Count())
	return idx, nil
}

// fetchEntries downloads a database and collects the entries with the
// given base name.
func fetchEntries(ctx context.Context, client *http.Client, target, kind string) ([]Entry, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("url", target)

	buf := &bytes.Buffer{}
	if err := requestutil.Fetch(ctx, client, target, buf); err != nil {
		return nil, err
	}
	log.V(3).Info("reading database", "size", buf.Len())

	var entries []Entry
	err := archiveutil.Walk(ctx, buf, func(name string, r io.Reader) error {
		if path.Base(name) != kind {
			return nil
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{Name: name, Data: data})
		if len(entries)%1000 == 0 {
			log.V(4).Info("reading entries", "count", len(entries))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading database: %w", err)
	}
	return entries, nil
}
