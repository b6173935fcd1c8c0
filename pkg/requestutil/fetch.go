package requestutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/carlmjohnson/requests"
	"github.com/djcass44/all-your-arch/pkg/archiveutil"
	"github.com/go-logr/logr"
)

var (
	ErrNotFound         = errors.New("file not found")
	ErrUnexpectedStatus = errors.New("unexpected response code")
)

// Fetch downloads the target and writes its decompressed content to
// out. A 404 is reported as ErrNotFound so that callers can try
// another location.
func Fetch(ctx context.Context, client *http.Client, target string, out io.Writer) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("url", target)
	log.V(1).Info("downloading file")

	if client == nil {
		client = http.DefaultClient
	}
	err := requests.
		URL(target).
		Client(client).
		AddValidator(checkStatus).
		Handle(WithDecompression(out)).
		Fetch(ctx)
	if err != nil {
		log.V(1).Info("failed to download file", "err", err.Error())
		return err
	}
	log.V(1).Info("successfully downloaded file")
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}

// WithDecompression writes the response body to out, decompressing
// it first if needed. Mirrors usually
// serve databases as application/octet-stream, so the content is
// sniffed rather than trusting the Content-Type.
func WithDecompression(out io.Writer) requests.ResponseHandler {
	return func(response *http.Response) error {
		log := logr.FromContextOrDiscard(response.Request.Context())
		log.V(8).Info("reading response", "contentType", response.Header.Get("Content-Type"), "length", response.ContentLength)

		stream, err := archiveutil.Decompress(response.Body)
		if err != nil {
			return fmt.Errorf("decompressing: %w", err)
		}
		defer stream.Close()

		if _, err := io.Copy(out, stream); err != nil {
			return fmt.Errorf("writing uncompressed output: %w", err)
		}
		return nil
	}
}
