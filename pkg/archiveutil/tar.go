package archiveutil

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-logr/logr"
)

// MetadataFiles are the members of a package archive that describe
// the package rather than belong to it.
var MetadataFiles = []string{".PKGINFO", ".MTREE", ".BUILDINFO", ".INSTALL", ".CHANGELOG"}

var ErrUnsafePath = errors.New("path escapes the destination")

// WalkFunc is called for each regular file in an archive. The reader
// is only valid until WalkFunc returns.
type WalkFunc func(name string, r io.Reader) error

// Walk calls fn for each regular file in the tar archive, in archive
// order.
func Walk(ctx context.Context, r io.Reader, fn WalkFunc) error {
	log := logr.FromContextOrDiscard(ctx)
	tr := tar.NewReader(r)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		header, err := tr.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			log.Error(err, "failed to read file from archive")
			return err
		case header == nil:
			continue
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		log.V(9).Info("visiting file", "name", header.Name, "size", header.Size)
		if err := fn(header.Name, tr); err != nil {
			return fmt.Errorf("%s: %w", header.Name, err)
		}
	}
}

// Untar expands a (possibly compressed) package archive into the
// given path and returns the paths it created relative to that path.
// Directories end in a "/".
func Untar(ctx context.Context, r io.Reader, path string) ([]string, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("path", path)
	path = filepath.Clean(path)

	stream, err := Decompress(r)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	tr := tar.NewReader(stream)
	var files []string

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		header, err := tr.Next()
		switch {
		case err == io.EOF:
			return files, nil
		case err != nil:
			log.Error(err, "failed to read file from archive")
			return nil, err
		case header == nil:
			continue
		}

		name := strings.TrimPrefix(filepath.Clean(header.Name), "./")
		if slices.Contains(MetadataFiles, name) || name == "." {
			log.V(6).Info("skipping metadata file", "name", name)
			continue
		}
		target, err := within(path, name)
		if err != nil {
			return nil, err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			log.V(5).Info("creating directory", "target", target)
			if err := os.MkdirAll(target, 0755); err != nil {
				log.Error(err, "failed to create directory", "target", target)
				return nil, err
			}
			files = append(files, name+"/")
		case tar.TypeReg:
			log.V(5).Info("creating file", "target", target, "mode", header.Mode)
			if err := writeFile(target, tr, os.FileMode(header.Mode).Perm()); err != nil {
				log.Error(err, "failed to extract file", "target", target)
				return nil, err
			}
			files = append(files, name)
		case tar.TypeSymlink:
			log.V(5).Info("creating symlink", "target", target, "link", header.Linkname)
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return nil, err
			}
			_ = os.Remove(target)
			if err := os.Symlink(header.Linkname, target); err != nil {
				log.Error(err, "failed to create symlink", "target", target)
				return nil, err
			}
			files = append(files, name)
		case tar.TypeLink:
			source, err := within(path, header.Linkname)
			if err != nil {
				return nil, err
			}
			if err := resolveParent(path, source); err != nil {
				return nil, err
			}
			log.V(5).Info("creating hardlink", "target", target, "source", source)
			_ = os.Remove(target)
			if err := os.Link(source, target); err != nil {
				log.Error(err, "failed to create hardlink", "target", target)
				return nil, err
			}
			files = append(files, name)
		default:
			log.V(4).Info("skipping unsupported file type", "name", name, "type", header.Typeflag)
		}
	}
}

// within joins name onto root, refusing names that would resolve
// outside of it, including through symlinks already extracted.
func within(root, name string) (string, error) {
	target := filepath.Join(root, name)
	if !contains(root, target) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	if err := resolveParent(root, target); err != nil {
		return "", err
	}
	return target, nil
}

// resolveParent follows symlinks in the deepest existing parent of
// target and checks that it is still inside root.
func resolveParent(root, target string) error {
	dir := filepath.Dir(target)
	for dir != root && dir != filepath.Dir(dir) {
		if _, err := os.Lstat(dir); err == nil {
			break
		}
		dir = filepath.Dir(dir)
	}
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		// nothing has been extracted yet
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	realDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		// dangling links lead nowhere we can check
		return fmt.Errorf("%w: %s: %w", ErrUnsafePath, dir, err)
	}
	if !contains(realRoot, realDir) {
		return fmt.Errorf("%w: %s resolves to %s", ErrUnsafePath, dir, realDir)
	}
	return nil
}

func contains(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	// replace symlinks rather than writing through them
	if fi, err := os.Lstat(target); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(target); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
