package arch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/djcass44/all-your-arch/pkg/alpm"
	"github.com/djcass44/all-your-arch/pkg/lockfile"
	"github.com/djcass44/all-your-arch/pkg/packages"
	"github.com/go-logr/logr"
)

// Install unpacks a downloaded package into rootfs and records it in
// the pacman local database so that pacman inside the root filesystem
// sees it as installed.
func (p *PackageKeeper) Install(ctx context.Context, lp lockfile.Package, pkgFile, rootfs string) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("pkg", lp.Name, "version", lp.Version)
	log.V(1).Info("installing package")

	pkg, err := p.lookup(lp)
	if err != nil {
		return err
	}

	files, err := p.Unpack(ctx, pkgFile, rootfs)
	if err != nil {
		return fmt.Errorf("unpacking %s: %w", lp.Name, err)
	}

	reason := alpm.ReasonDependency
	if lp.Direct {
		reason = alpm.ReasonExplicit
	}
	return p.writeInstalled(ctx, pkg, reason, files, rootfs)
}

// writeInstalled adds a package to the pacman local database.
func (p *PackageKeeper) writeInstalled(ctx context.Context, pkg *alpm.Package, reason alpm.Reason, files []string, rootfs string) error {
	local := filepath.Join(rootfs, LocalDatabase)
	dir := filepath.Join(local, pkg.NameVersion())
	log := logr.FromContextOrDiscard(ctx).WithValues("pkg", pkg.Name, "path", dir)
	log.V(5).Info("recording package")

	if err := packages.Record(ctx, dir, "desc", pkg.Local(p.now(), reason)); err != nil {
		return err
	}
	if err := packages.Record(ctx, dir, "files", alpm.Files{Files: files}); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(local, "ALPM_DB_VERSION"), []byte(DatabaseVersion+"\n"), 0644); err != nil {
		log.Error(err, "failed to write database version")
		return err
	}
	return nil
}
