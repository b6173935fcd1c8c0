package arch

import (
	"errors"
	"time"

	"github.com/djcass44/all-your-arch/pkg/repository"
)

const (
	// LocalDatabase is the pacman local database relative to the root
	// filesystem.
	LocalDatabase = "var/lib/pacman/local"
	// DatabaseVersion is the local database format written by pacman 6.
	DatabaseVersion = "9"
)

var (
	ErrPackageNotFound = errors.New("package not found")
	ErrStaleLock       = errors.New("locked package no longer matches the repository")
)

type PackageKeeper struct {
	arch    string
	indices []*repository.Index
	now     func() time.Time
}
