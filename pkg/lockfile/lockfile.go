package lockfile

import (
	"fmt"
	"slices"
	"sort"

	v1 "github.com/djcass44/all-your-arch/pkg/api/v1"
)

// Validate checks that the configuration file lines up
// with what we expect from the lockfile and vice versa
func (l *Lock) Validate(cfg v1.BuildSpec) error {
	// check that the requested packages are all in the lockfile
	var names []string
	for _, p := range cfg.Packages {
		names = append(names, p.Names...)
	}
	for _, n := range names {
		v, ok := l.find(n)
		if !ok {
			return fmt.Errorf("package not found in lock: %s", n)
		}
		if !v.Direct {
			return fmt.Errorf("package locked as a dependency, but requested in manifest: %s", n)
		}
	}

	// now we do the reverse

	for k, v := range l.Packages {
		// dependencies are never in the manifest
		if !v.Direct {
			continue
		}
		found := slices.Contains(names, k)
		for _, r := range v.Requested {
			found = found || slices.Contains(names, r)
		}
		if !found {
			return fmt.Errorf("package found in lock, but not manifest: %s", k)
		}
	}

	return nil
}

// find returns the package locked for a name in the configuration
// file, either directly or through a provided name.
func (l *Lock) find(name string) (Package, bool) {
	if v, ok := l.Packages[name]; ok {
		return v, true
	}
	for _, v := range l.Packages {
		if slices.Contains(v.Requested, name) {
			return v, true
		}
	}
	return Package{}, false
}

// Add records a resolved package. A package requested by name stays
// direct even if something else depends on it.
func (l *Lock) Add(p Package) {
	if l.Packages == nil {
		l.Packages = map[string]Package{}
	}
	if existing, ok := l.Packages[p.Name]; ok {
		p.Direct = p.Direct || existing.Direct
		p.Requested = append(slices.Clone(existing.Requested), p.Requested...)
	}
	if len(p.Requested) > 0 {
		slices.Sort(p.Requested)
		p.Requested = slices.Compact(p.Requested)
	}
	l.Packages[p.Name] = p
}

// SortedKeys returns package names
// sorted alphabetically.
func (l *Lock) SortedKeys() []string {
	pkgKeys := make([]string, 0)
	for k := range l.Packages {
		pkgKeys = append(pkgKeys, k)
	}
	sort.Strings(pkgKeys)
	return pkgKeys
}
