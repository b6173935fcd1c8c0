// Package archivetest builds archives in memory for tests.
package archivetest

import (
	"archive/tar"
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

// File is a member of a test archive. Names ending in "/" are
// written as directories and a non-empty Link makes a symlink.
type File struct {
	Name string
	Body string
	Link string
	Mode int64
}

// Tar writes files into an uncompressed tar archive.
func Tar(t *testing.T, files ...File) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	tw := tar.NewWriter(buf)
	for _, f := range files {
		hdr := &tar.Header{
			Name: f.Name,
			Mode: f.Mode,
		}
		switch {
		case f.Link != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = f.Link
		case len(f.Name) > 0 && f.Name[len(f.Name)-1] == '/':
			hdr.Typeflag = tar.TypeDir
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(f.Body))
		}
		if hdr.Mode == 0 {
			hdr.Mode = 0644
			if hdr.Typeflag == tar.TypeDir {
				hdr.Mode = 0755
			}
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(f.Body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

// Compression names a compression format understood by Compress.
type Compression string

const (
	None Compression = "none"
	Gzip Compression = "gzip"
	Zstd Compression = "zstd"
	XZ   Compression = "xz"
	LZ4  Compression = "lz4"
)

// Compressions lists every supported format, for table tests.
var Compressions = []Compression{None, Gzip, Zstd, XZ, LZ4}

// Compress compresses data with the given format.
func Compress(t *testing.T, c Compression, data []byte) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	var w io.WriteCloser
	var err error
	switch c {
	case Gzip:
		w = gzip.NewWriter(buf)
	case Zstd:
		w, err = zstd.NewWriter(buf)
	case XZ:
		w, err = xz.NewWriter(buf)
	case LZ4:
		w = lz4.NewWriter(buf)
	default:
		return data
	}
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}
