package repository

import (
	"bytes"
	"context"
	"iter"
	"path"

	"github.com/djcass44/all-your-arch/pkg/alpm"
	"github.com/djcass44/all-your-arch/pkg/desc"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// Build decodes every entry into a package record and indexes the
// records by name. Entries are decoded concurrently but inserted in
// order, so when two entries share a name the later one wins and
// takes the later position.
//
// If any entry fails to decode, Build returns an *EntryDecodeError
// for the earliest failing entry and no index.
func Build(ctx context.Context, entries []Entry, opts ...Option) (*Index, error) {
	o := newOptions(opts)
	log := logr.FromContextOrDiscard(ctx).WithValues("repo", o.name)
	log.V(3).Info("decoding entries", "count", len(entries), "concurrency", o.concurrency)

	packages, err := decodeAll[alpm.Package](ctx, entries, o)
	if err != nil {
		return nil, err
	}

	// the last occurrence of each name is the one we keep
	last := make(map[string]int, len(packages))
	for i, p := range packages {
		if j, ok := last[p.Name]; ok {
			log.V(4).Info("package redefined", "name", p.Name, "entry", entries[i].Name, "previous", entries[j].Name)
		}
		last[p.Name] = i
	}

	idx := &Index{
		name:          o.name,
		source:        o.source,
		packages:      make([]*alpm.Package, 0, len(last)),
		byName:        make(map[string]int, len(last)),
		byBase:        map[string]int{},
		byNameVersion: make(map[string]int, len(last)),
		providers:     map[string][]int{},
		vcs:           map[string][]int{},
		files:         map[string][]string{},
	}
	for i, p := range packages {
		if last[p.Name] != i {
			continue
		}
		idx.insert(ctx, p)
	}

	if len(o.fileEntries) > 0 {
		if err := idx.attachFiles(ctx, o); err != nil {
			return nil, err
		}
	}

	log.V(2).Info("built index", "count", idx.Count(), "files", len(idx.files))
	return idx, nil
}

func (idx *Index) insert(ctx context.Context, p *alpm.Package) {
	log := logr.FromContextOrDiscard(ctx)
	i := len(idx.packages)
	idx.packages = append(idx.packages, p)
	idx.byName[p.Name] = i
	idx.byNameVersion[p.NameVersion()] = i

	if p.Base != "" {
		if j, ok := idx.byBase[p.Base]; ok {
			log.V(5).Info("base already registered", "base", p.Base, "name", p.Name, "registered", idx.packages[j].Name)
		} else {
			idx.byBase[p.Base] = i
		}
	}
	for _, provided := range p.Provides {
		name := alpm.ProvidedName(provided)
		if ps := idx.providers[name]; len(ps) == 0 || ps[len(ps)-1] != i {
			idx.providers[name] = append(ps, i)
		}
	}
	if base, ok := p.VCSBase(); ok {
		idx.vcs[base] = append(idx.vcs[base], i)
	}
}

func (idx *Index) attachFiles(ctx context.Context, o *options) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("repo", o.name)
	files, err := decodeAll[alpm.Files](ctx, o.fileEntries, o)
	if err != nil {
		return err
	}
	for i, f := range files {
		dir := path.Dir(o.fileEntries[i].Name)
		j, ok := idx.byNameVersion[dir]
		if !ok {
			log.V(4).Info("skipping file list for unknown package", "entry", o.fileEntries[i].Name)
			continue
		}
		idx.files[idx.packages[j].Name] = f.Files
	}
	return nil
}

// decodeAll decodes each entry into a new T. The result is in entry
// order.
func decodeAll[T any](ctx context.Context, entries []Entry, o *options) ([]*T, error) {
	out := make([]*T, len(entries))
	errs := make([]error, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i := range entries {
		// stop handing out work once something has failed. Every entry
		// before the failing one has already been scheduled, so the
		// earliest failure is always recorded.
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			v := new(T)
			dec := desc.NewDecoder(bytes.NewReader(entries[i].Data))
			if o.strict {
				dec.DisallowUnknownKeys()
			}
			if err := dec.Decode(v); err != nil {
				errs[i] = err
				return err
			}
			out[i] = v
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, &EntryDecodeError{Entry: entries[i].Name, Err: err}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the package with the given name.
func (idx *Index) Get(name string) (*alpm.Package, bool) {
	return idx.lookup(idx.byName, name)
}

// GetByBase returns the first package built from the given base.
func (idx *Index) GetByBase(base string) (*alpm.Package, bool) {
	return idx.lookup(idx.byBase, base)
}

// GetByNameVersion returns a package by its database directory name,
// e.g. "ag-2.2.0-1".
func (idx *Index) GetByNameVersion(s string) (*alpm.Package, bool) {
	return idx.lookup(idx.byNameVersion, s)
}

// Provider returns the first package that lists name in its
// PROVIDES.
func (idx *Index) Provider(name string) (*alpm.Package, bool) {
	ps := idx.providers[name]
	if len(ps) == 0 {
		return nil, false
	}
	return idx.packages[ps[0]], true
}

// Providers returns every package that lists name in its PROVIDES, in
// index order.
func (idx *Index) Providers(name string) []*alpm.Package {
	return idx.collect(idx.providers[name])
}

// VCSSources returns the packages built from version control that
// track the package with the given name, e.g. "neovim-git" for
// "neovim".
func (idx *Index) VCSSources(name string) []*alpm.Package {
	return idx.collect(idx.vcs[name])
}

func (idx *Index) collect(positions []int) []*alpm.Package {
	var out []*alpm.Package
	for _, i := range positions {
		out = append(out, idx.packages[i])
	}
	return out
}

// Files returns the files owned by the named package. It returns
// false if the index was built without a files database or the
// package has no entry in it.
func (idx *Index) Files(name string) ([]string, bool) {
	files, ok := idx.files[name]
	return files, ok
}

func (idx *Index) lookup(m map[string]int, key string) (*alpm.Package, bool) {
	i, ok := m[key]
	if !ok {
		return nil, false
	}
	return idx.packages[i], true
}

// All iterates over every package in index order.
func (idx *Index) All() iter.Seq[*alpm.Package] {
	return func(yield func(*alpm.Package) bool) {
		for _, p := range idx.packages {
			if !yield(p) {
				return
			}
		}
	}
}

func (idx *Index) Count() int {
	return len(idx.packages)
}

func (idx *Index) Name() string {
	return idx.name
}

func (idx *Index) Source() string {
	return idx.source
}
