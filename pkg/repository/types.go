package repository

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/djcass44/all-your-arch/pkg/alpm"
)

// Entry is a single raw record taken from a repository archive.
type Entry struct {
	// Name identifies the entry, usually its path within the
	// archive (e.g. "ag-2.2.0-1/desc").
	Name string
	Data []byte
}

// Index is an immutable, name-keyed collection of package records.
// It is safe for concurrent use. Records returned by an Index must
// not be modified.
type Index struct {
	name   string
	source string

	packages      []*alpm.Package
	byName        map[string]int
	byBase        map[string]int
	byNameVersion map[string]int
	providers     map[string][]int
	vcs           map[string][]int
	files         map[string][]string
}

// EntryDecodeError is returned by Build when an entry could not be
// decoded into a package record.
type EntryDecodeError struct {
	Entry string
	Err   error
}

func (e *EntryDecodeError) Error() string {
	return fmt.Sprintf("decoding entry %q: %s", e.Entry, e.Err)
}

func (e *EntryDecodeError) Unwrap() error {
	return e.Err
}

type Option func(o *options)

type options struct {
	name        string
	source      string
	concurrency int
	strict      bool
	files       bool
	fileEntries []Entry
	client      *http.Client
}

func newOptions(opts []Option) *options {
	o := &options{
		concurrency: runtime.GOMAXPROCS(0),
		client:      http.DefaultClient,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}
	if o.client == nil {
		o.client = http.DefaultClient
	}
	return o
}

// WithConcurrency sets the number of entries decoded in parallel.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithStrict rejects blocks that do not map to a known field.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithFiles makes Load fetch the files database alongside the
// package database.
func WithFiles(files bool) Option {
	return func(o *options) {
		o.files = files
	}
}

// WithFileEntries attaches the "files" entries of a files database
// to the index.
func WithFileEntries(entries []Entry) Option {
	return func(o *options) {
		o.fileEntries = entries
	}
}

// WithSource records where the index was loaded from.
func WithSource(name, source string) Option {
	return func(o *options) {
		o.name = name
		o.source = source
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.client = client
	}
}
