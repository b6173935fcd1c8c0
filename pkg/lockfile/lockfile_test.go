package lockfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	v1 "github.com/djcass44/all-your-arch/pkg/api/v1"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLock_Validate(t *testing.T) {
	var cases = []struct {
		name string
		cfg  v1.BuildSpec
		ok   bool
	}{
		{
			name: "matching manifest",
			cfg: v1.BuildSpec{
				Packages: []v1.Package{
					{
						Names: []string{"test-package"},
					},
				},
			},
			ok: true,
		},
		{
			name: "extra package",
			cfg: v1.BuildSpec{
				Packages: []v1.Package{
					{
						Names: []string{"test-package", "fake-package"},
					},
				},
			},
			ok: false,
		},
		{
			name: "dependency requested directly",
			cfg: v1.BuildSpec{
				Packages: []v1.Package{
					{
						Names: []string{"test-package", "test-dependency"},
					},
				},
			},
			ok: false,
		},
		{
			name: "extra package in lock",
			cfg: v1.BuildSpec{
				Packages: []v1.Package{},
			},
			ok: false,
		},
	}

	lock := &Lock{
		Packages: map[string]Package{
			"test-package": {
				Direct: true,
			},
			"test-dependency": {},
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			err := lock.Validate(tt.cfg)
			if !tt.ok {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

}

func TestLock_SortedKeys(t *testing.T) {
	l := &Lock{
		Packages: map[string]Package{
			"packageA": {},
			"packageC": {},
			"packageB": {},
		},
	}

	assert.EqualValues(t, []string{"packageA", "packageB", "packageC"}, l.SortedKeys())
}

func TestLock_ValidateProvided(t *testing.T) {
	lock := &Lock{}
	lock.Add(Package{Name: "bash", Direct: true, Requested: []string{"sh"}})
	lock.Add(Package{Name: "glibc"})

	var cases = []struct {
		name  string
		names []string
		ok    bool
	}{
		{"provided name", []string{"sh"}, true},
		{"provider not requested", []string{}, false},
		{"provider requested by its own name", []string{"bash"}, true},
		{"dependency requested", []string{"sh", "glibc"}, false},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			err := lock.Validate(v1.BuildSpec{Packages: []v1.Package{{Names: tt.names}}})
			if !tt.ok {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLock_Add(t *testing.T) {
	lock := &Lock{}
	lock.Add(Package{Name: "bash", Direct: true, Requested: []string{"sh"}})
	lock.Add(Package{Name: "bash", Direct: false})
	lock.Add(Package{Name: "bash", Direct: true, Requested: []string{"sh"}})
	lock.Add(Package{Name: "bash", Direct: true})

	assert.EqualValues(t, Package{Name: "bash", Direct: true, Requested: []string{"sh"}}, lock.Packages["bash"])

	lock.Add(Package{Name: "glibc"})
	lock.Add(Package{Name: "glibc", Direct: true})
	assert.True(t, lock.Packages["glibc"].Direct)
	assert.Nil(t, lock.Packages["glibc"].Requested)
}

func TestName(t *testing.T) {
	assert.EqualValues(t, "/tmp/build-lock.json", Name("/tmp/build.yaml"))
	assert.EqualValues(t, "build-lock.json", Name("build.yml"))
}

func TestRead(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	dir := t.TempDir()
	cfg := filepath.Join(dir, "build.yaml")

	_, err := Read(ctx, cfg)
	assert.ErrorIs(t, err, ErrMissing)

	require.NoError(t, os.WriteFile(Name(cfg), []byte(`{"name":"base","lockfileVersion":1,"packages":{"bash":{"type":"Arch","repository":"core","version":"5.2-1","resolved":"https://example.com/bash.pkg.tar.zst","integrity":"sha256:abc","direct":true}}}`), 0644))

	lock, err := Read(ctx, cfg)
	require.NoError(t, err)
	assert.EqualValues(t, "base", lock.Name)
	assert.EqualValues(t, Package{
		Type:       v1.PackageArch,
		Repository: "core",
		Version:    "5.2-1",
		Resolved:   "https://example.com/bash.pkg.tar.zst",
		Integrity:  "sha256:abc",
		Direct:     true,
	}, lock.Packages["bash"])
}

func TestSha256(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0644))

	out, err := Sha256(path)
	require.NoError(t, err)
	assert.EqualValues(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", out)
}
