package packages

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/djcass44/all-your-arch/pkg/desc"
	"github.com/go-logr/logr"
)

// Record writes v to dir/file in the %KEY% block format, replacing
// any existing record.
func Record(ctx context.Context, dir, file string, v any) error {
	path := filepath.Join(filepath.Clean(dir), file)
	log := logr.FromContextOrDiscard(ctx).WithValues("path", path)
	log.V(5).Info("recording package")

	data, err := desc.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", file, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing '%s': %w", path, err)
	}
	return nil
}
