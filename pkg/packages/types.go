package packages

import (
	"context"

	"github.com/djcass44/all-your-arch/pkg/lockfile"
)

type PackageManager interface {
	// Resolve returns the named package and everything it depends on.
	Resolve(ctx context.Context, pkg string) ([]lockfile.Package, error)
	// Unpack extracts a package file into rootfs and returns the paths
	// it created.
	Unpack(ctx context.Context, pkg, rootfs string) ([]string, error)
}
