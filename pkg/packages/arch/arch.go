package arch

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	v1 "github.com/djcass44/all-your-arch/pkg/api/v1"
	"github.com/djcass44/all-your-arch/pkg/airutil"
	"github.com/djcass44/all-your-arch/pkg/alpm"
	"github.com/djcass44/all-your-arch/pkg/archiveutil"
	"github.com/djcass44/all-your-arch/pkg/lockfile"
	"github.com/djcass44/all-your-arch/pkg/repository"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// NewPackageKeeper loads the index of every repository. Repositories
// are searched in the order they are given, like pacman.conf.
func NewPackageKeeper(ctx context.Context, arch string, repositories []v1.Repository, opts ...repository.Option) (*PackageKeeper, error) {
	log := logr.FromContextOrDiscard(ctx)

	indices := make([]*repository.Index, len(repositories))
	g, gctx := errgroup.WithContext(ctx)
	for i, repo := range repositories {
		url, err := airutil.ExpandRepo(repo.URL, repo.Name, arch)
		if err != nil {
			return nil, fmt.Errorf("expanding url of repository %s: %w", repo.Name, err)
		}
		g.Go(func() error {
			idx, err := repository.Load(gctx, repo.Name, url, append(slices.Clip(opts), repository.WithFiles(repo.Files))...)
			if err != nil {
				return err
			}
			indices[i] = idx
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.V(2).Info("loaded indices", "count", len(indices))
	for _, i := range indices {
		log.V(1).Info("added index", "count", i.Count(), "name", i.Name(), "source", i.Source())
	}

	return &PackageKeeper{
		arch:    arch,
		indices: indices,
		now:     time.Now,
	}, nil
}

func (*PackageKeeper) Unpack(ctx context.Context, pkg string, rootfs string) ([]string, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("pkg", pkg)
	log.V(4).Info("unpacking package")

	f, err := os.Open(pkg)
	if err != nil {
		log.Error(err, "failed to open file")
		return nil, err
	}
	defer f.Close()

	return archiveutil.Untar(ctx, f, rootfs)
}

// Resolve walks the dependencies of the named package breadth-first.
// The named package, or the package providing it, is always first in
// the result.
func (p *PackageKeeper) Resolve(ctx context.Context, pkg string) ([]lockfile.Package, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("pkg", pkg)

	var out []lockfile.Package
	seen := map[string]bool{}
	queue := []alpm.Dependency{{Name: pkg}}

	for len(queue) > 0 {
		dep := queue[0]
		queue = queue[1:]

		match, idx, err := p.find(ctx, dep)
		if err != nil {
			return nil, err
		}
		if seen[match.Name] {
			continue
		}
		seen[match.Name] = true
		log.V(5).Info("found package match", "dep", dep.String(), "name", match.Name, "version", match.Version, "deps", len(match.Depends))

		lp := lockfile.Package{
			Name:       match.Name,
			Type:       v1.PackageArch,
			Repository: idx.Name(),
			Version:    match.Version,
			Resolved:   idx.Source() + "/" + match.FileName,
			Integrity:  "sha256:" + match.SHA256Sum,
			Direct:     len(out) == 0,
		}
		// remember the virtual name so the lock can be checked against
		// the configuration
		if lp.Direct && match.Name != pkg {
			lp.Requested = []string{pkg}
		}
		out = append(out, lp)
		queue = append(queue, match.Depends...)
	}
	return out, nil
}

// find locates the package satisfying dep. Packages with a matching
// name take precedence over packages that provide it.
func (p *PackageKeeper) find(ctx context.Context, dep alpm.Dependency) (*alpm.Package, *repository.Index, error) {
	log := logr.FromContextOrDiscard(ctx)
	for _, idx := range p.indices {
		if match, ok := idx.Get(dep.Name); ok && p.compatible(match) && dep.Matches(match.Version) {
			return match, idx, nil
		}
	}
	for _, idx := range p.indices {
		for _, match := range idx.Providers(dep.Name) {
			if !p.compatible(match) {
				continue
			}
			if dep.Constraint == "" || dep.Matches(providedVersion(match, dep.Name)) {
				log.V(6).Info("dependency satisfied by provider", "dep", dep.String(), "provider", match.Name)
				return match, idx, nil
			}
		}
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrPackageNotFound, dep.String())
}

// compatible checks whether a package can be installed on the
// configured architecture.
func (p *PackageKeeper) compatible(pkg *alpm.Package) bool {
	return p.arch == "" || pkg.Architecture == "any" || pkg.Architecture == p.arch
}

func providedVersion(pkg *alpm.Package, name string) string {
	for _, provided := range pkg.Provides {
		n, v, ok := strings.Cut(provided, "=")
		if ok && n == name {
			return v
		}
	}
	return ""
}

func (p *PackageKeeper) lookup(lp lockfile.Package) (*alpm.Package, error) {
	for _, idx := range p.indices {
		if lp.Repository != "" && idx.Name() != lp.Repository {
			continue
		}
		match, ok := idx.Get(lp.Name)
		if !ok {
			continue
		}
		if match.Version != lp.Version {
			return nil, fmt.Errorf("%w: %s locked at %s, repository has %s", ErrStaleLock, lp.Name, lp.Version, match.Version)
		}
		return match, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, lp.Name)
}
