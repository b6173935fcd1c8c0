package archiveutil

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

const (
	MimeGzip = "application/gzip"
	MimeZstd = "application/zstd"
	MimeXZ   = "application/x-xz"
)

// lz4Magic starts every lz4 frame.
var lz4Magic = []byte{0x04, 0x22, 0x4d, 0x18}

// sniffLen is the number of bytes read to detect the compression.
const sniffLen = 3072

// Decompress detects whether r is gzip, zstd, xz or lz4 compressed and
// returns a reader for the decompressed content. Anything else is
// returned unchanged.
func Decompress(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	mtype := mimetype.Detect(head)
	switch {
	case mtype.Is(MimeGzip):
		return gzip.NewReader(br)
	case mtype.Is(MimeZstd):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case mtype.Is(MimeXZ):
		dec, err := xz.NewReader(br)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(dec), nil
	case bytes.HasPrefix(head, lz4Magic):
		return io.NopCloser(lz4.NewReader(br)), nil
	default:
		return io.NopCloser(br), nil
	}
}
