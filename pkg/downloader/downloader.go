package downloader

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/djcass44/all-your-arch/pkg/lockfile"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/hashicorp/go-getter"
)

var ErrUnsupportedIntegrity = errors.New("unsupported integrity")

type Downloader struct {
	cacheDir string
}

func NewDownloader(cacheDir string) (*Downloader, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, err
	}
	return &Downloader{cacheDir: cacheDir}, nil
}

// Download fetches src into the cache and verifies it against the
// integrity string (e.g. "sha256:<hex>"). A file that is already
// cached with the expected digest is not downloaded again.
func (d *Downloader) Download(ctx context.Context, src, integrity string) (string, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("src", src)
	log.V(1).Info("downloading file")

	digest, ok := strings.CutPrefix(integrity, "sha256:")
	if !ok || digest == "" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedIntegrity, integrity)
	}

	uri, err := url.Parse(src)
	if err != nil {
		log.Error(err, "failed to parse url")
		return "", err
	}

	// download the file to a predictable location so that
	// we can avoid repeated downloads
	dst := filepath.Join(d.cacheDir, filepath.Base(uri.Path))
	if sum, err := lockfile.Sha256(dst); err == nil && sum == digest {
		log.V(1).Info("using cached file", "dst", dst)
		return dst, nil
	}

	// have go-getter verify the download for us, and stop it from
	// unpacking ".pkg.tar.zst" files
	q := uri.Query()
	q.Set("checksum", integrity)
	q.Set("archive", "false")
	uri.RawQuery = q.Encode()

	partial := filepath.Join(d.cacheDir, "."+uuid.NewString()+".partial")
	log.V(2).Info("preparing to download file", "dst", dst, "partial", partial)

	client := &getter.Client{
		Ctx:             ctx,
		Src:             uri.String(),
		Dst:             partial,
		Mode:            getter.ClientModeFile,
		DisableSymlinks: true,
	}
	if err := client.Get(); err != nil {
		log.Error(err, "failed to download file")
		_ = os.Remove(partial)
		return "", err
	}
	// we need to chmod the files so that the root group
	// can access them as if they were the owner
	if err := os.Chmod(partial, 0664); err != nil {
		log.Error(err, "failed to update file permissions", "file", partial)
		return "", err
	}
	if err := os.Rename(partial, dst); err != nil {
		log.Error(err, "failed to move file into the cache", "file", partial)
		return "", err
	}

	return dst, nil
}
