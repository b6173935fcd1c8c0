package cmd

import (
	"os"
	"path/filepath"
	"testing"

	aybv1 "github.com/djcass44/all-your-arch/pkg/api/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(dir, "valid.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`apiVersion: aya.dcas.dev/v1
kind: Build
metadata:
  name: base
spec:
  architecture: x86_64
  strict: true
  repositories:
    - name: core
      url: https://geo.mirror.pkgbuild.com/$repo/os/$arch
      files: true
  packages:
    - names:
        - bash
        - coreutils
`), 0644))

		cfg, err := readConfig(path)
		require.NoError(t, err)
		assert.EqualValues(t, "base", cfg.Name)
		assert.EqualValues(t, aybv1.BuildSpec{
			Architecture: "x86_64",
			Strict:       true,
			Repositories: []aybv1.Repository{
				{Name: "core", URL: "https://geo.mirror.pkgbuild.com/$repo/os/$arch", Files: true},
			},
			Packages: []aybv1.Package{
				{Names: []string{"bash", "coreutils"}},
			},
		}, cfg.Spec)
	})
	t.Run("invalid", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("metadata:\n  name: base\nspec:\n  repositories: []\n"), 0644))

		_, err := readConfig(path)
		assert.Error(t, err)
	})
	t.Run("missing", func(t *testing.T) {
		_, err := readConfig(filepath.Join(dir, "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
