package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/djcass44/all-your-arch/pkg/alpm"
	"github.com/djcass44/all-your-arch/pkg/desc"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// record returns a minimal package description with any extra blocks
// appended.
func record(name, version string, extra ...string) []byte {
	sb := strings.Builder{}
	_, _ = fmt.Fprintf(&sb, "%%FILENAME%%\n%s-%s-x86_64.pkg.tar.zst\n\n", name, version)
	_, _ = fmt.Fprintf(&sb, "%%NAME%%\n%s\n\n", name)
	_, _ = fmt.Fprintf(&sb, "%%VERSION%%\n%s\n\n", version)
	sb.WriteString("%CSIZE%\n100\n\n%ISIZE%\n200\n\n")
	sb.WriteString("%SHA256SUM%\n0e2a8b1a9bd8a1b9c68a3ab05f95f2fbad8da8ccbb8a1f0a3a5c5b8ba0c8e7f1\n\n")
	sb.WriteString("%ARCH%\nx86_64\n\n%BUILDDATE%\n1560520506\n\n%PACKAGER%\nNobody <nobody@example.com>\n\n")
	for _, e := range extra {
		sb.WriteString(e)
		sb.WriteString("\n\n")
	}
	return []byte(sb.String())
}

func names(idx *Index) []string {
	var out []string
	for p := range idx.All() {
		out = append(out, p.Name)
	}
	return out
}

func TestBuild(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	entries := []Entry{
		{Name: "ag-2.2.0-1/desc", Data: record("ag", "2.2.0-1", "%DEPENDS%\npcre\nxz\nzlib")},
		{Name: "bash-5.2-1/desc", Data: record("bash", "5.2-1", "%PROVIDES%\nsh=5.2")},
		{Name: "zlib-1.3-1/desc", Data: record("zlib", "1:1.3-1")},
	}

	idx, err := Build(ctx, entries, WithSource("core", "https://mirror.example.com/core/os/x86_64"))
	require.NoError(t, err)

	assert.EqualValues(t, 3, idx.Count())
	assert.EqualValues(t, "core", idx.Name())
	assert.EqualValues(t, "https://mirror.example.com/core/os/x86_64", idx.Source())
	assert.EqualValues(t, []string{"ag", "bash", "zlib"}, names(idx))

	t.Run("lookup is exact", func(t *testing.T) {
		p, ok := idx.Get("ag")
		require.True(t, ok)
		assert.EqualValues(t, "2.2.0-1", p.Version)
		assert.EqualValues(t, []string{"pcre", "xz", "zlib"}, []string{p.Depends[0].Name, p.Depends[1].Name, p.Depends[2].Name})

		_, ok = idx.Get("AG")
		assert.False(t, ok)
		_, ok = idx.Get("a")
		assert.False(t, ok)
	})
	t.Run("iteration is restartable", func(t *testing.T) {
		assert.EqualValues(t, names(idx), names(idx))
	})
	t.Run("iteration can stop early", func(t *testing.T) {
		var seen int
		for range idx.All() {
			seen++
			break
		}
		assert.EqualValues(t, 1, seen)
	})
	t.Run("provider", func(t *testing.T) {
		p, ok := idx.Provider("sh")
		require.True(t, ok)
		assert.EqualValues(t, "bash", p.Name)

		_, ok = idx.Provider("bash")
		assert.False(t, ok)
	})
	t.Run("name version", func(t *testing.T) {
		p, ok := idx.GetByNameVersion("zlib-1:1.3-1")
		require.True(t, ok)
		assert.EqualValues(t, "zlib", p.Name)
	})
}

func TestIndex_Providers(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	entries := []Entry{
		{Name: "gawk-5.3-1/desc", Data: record("gawk", "5.3-1", "%PROVIDES%\nawk=5.3")},
		{Name: "mawk-1.3-1/desc", Data: record("mawk", "1.3-1", "%PROVIDES%\nawk\nawk=1.3")},
		{Name: "nawk-2024-1/desc", Data: record("nawk", "2024-1", "%PROVIDES%\nawk")},
	}
	idx, err := Build(ctx, entries)
	require.NoError(t, err)

	var out []string
	for _, p := range idx.Providers("awk") {
		out = append(out, p.Name)
	}
	assert.EqualValues(t, []string{"gawk", "mawk", "nawk"}, out)

	p, ok := idx.Provider("awk")
	require.True(t, ok)
	assert.EqualValues(t, "gawk", p.Name)

	assert.Empty(t, idx.Providers("sh"))
}

func TestBuild_Empty(t *testing.T) {
	idx, err := Build(context.TODO(), nil)
	require.NoError(t, err)
	assert.Zero(t, idx.Count())
	assert.Empty(t, names(idx))
}

func TestBuild_LastWriteWins(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	entries := []Entry{
		{Name: "p", Data: record("X", "1.0-1")},
		{Name: "other", Data: record("Y", "1.0-1")},
		{Name: "q", Data: record("X", "2.0-1")},
	}
	idx, err := Build(ctx, entries)
	require.NoError(t, err)

	assert.EqualValues(t, 2, idx.Count())
	// the later occurrence keeps its later position
	assert.EqualValues(t, []string{"Y", "X"}, names(idx))

	p, ok := idx.Get("X")
	require.True(t, ok)
	assert.EqualValues(t, "2.0-1", p.Version)

	var expected alpm.Package
	require.NoError(t, desc.Unmarshal(entries[2].Data, &expected))
	assert.EqualValues(t, &expected, p)

	_, ok = idx.GetByNameVersion("X-1.0-1")
	assert.False(t, ok)
}

func TestBuild_FailFast(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	entries := []Entry{
		{Name: "a-1-1/desc", Data: record("a", "1-1")},
		{Name: "b-1-1/desc", Data: record("b", "1-1")},
		{Name: "c-1-1/desc", Data: []byte("%NAME%\nc\n\n")},
		{Name: "d-1-1/desc", Data: record("d", "1-1")},
		{Name: "e-1-1/desc", Data: []byte("%CSIZE%\nlots\n\n")},
	}

	for _, n := range []int{1, 2, 8} {
		t.Run(fmt.Sprintf("concurrency %d", n), func(t *testing.T) {
			idx, err := Build(ctx, entries, WithConcurrency(n))
			assert.Nil(t, idx)

			var decodeErr *EntryDecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.EqualValues(t, "c-1-1/desc", decodeErr.Entry)
			assert.ErrorIs(t, err, desc.ErrMissingField)
			assert.Contains(t, err.Error(), "c-1-1/desc")
		})
	}
}

func TestBuild_Strict(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	entries := []Entry{
		{Name: "a-1-1/desc", Data: record("a", "1-1", "%XDATA%\npkgtype=pkg")},
	}

	_, err := Build(ctx, entries)
	assert.NoError(t, err)

	_, err = Build(ctx, entries, WithStrict(true))
	assert.ErrorIs(t, err, desc.ErrUnexpectedKey)
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.TODO())
	cancel()

	_, err := Build(ctx, []Entry{{Name: "a", Data: record("a", "1-1")}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIndex_GetByBase(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	idx, err := Build(ctx, []Entry{
		{Name: "1", Data: record("python-foo", "1.0-1", "%BASE%\nfoo")},
		{Name: "2", Data: record("python-foo-docs", "1.0-1", "%BASE%\nfoo")},
		{Name: "3", Data: record("bar", "1.0-1")},
	})
	require.NoError(t, err)

	p, ok := idx.GetByBase("foo")
	require.True(t, ok)
	assert.EqualValues(t, "python-foo", p.Name)

	_, ok = idx.GetByBase("bar")
	assert.False(t, ok)
}

func TestIndex_VCSSources(t *testing.T) {
	idx, err := Build(context.TODO(), []Entry{
		{Name: "1", Data: record("neovim", "0.10.0-1")},
		{Name: "2", Data: record("neovim-git", "0.11.0.r1-1")},
		{Name: "3", Data: record("neovim-hg", "0.11.0.r2-1")},
	})
	require.NoError(t, err)

	var out []string
	for _, p := range idx.VCSSources("neovim") {
		out = append(out, p.Name)
	}
	assert.EqualValues(t, []string{"neovim-git", "neovim-hg"}, out)
	assert.Empty(t, idx.VCSSources("vim"))
}

func TestIndex_Files(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	entries := []Entry{
		{Name: "ag-2.2.0-1/desc", Data: record("ag", "2.2.0-1")},
		{Name: "zlib-1.3-1/desc", Data: record("zlib", "1.3-1")},
	}
	files := []Entry{
		{Name: "ag-2.2.0-1/files", Data: []byte("%FILES%\nusr/\nusr/bin/\nusr/bin/ag\n\n")},
		{Name: "ghost-1.0-1/files", Data: []byte("%FILES%\nusr/bin/ghost\n\n")},
	}

	idx, err := Build(ctx, entries, WithFileEntries(files))
	require.NoError(t, err)

	out, ok := idx.Files("ag")
	require.True(t, ok)
	assert.EqualValues(t, []string{"usr/", "usr/bin/", "usr/bin/ag"}, out)

	_, ok = idx.Files("zlib")
	assert.False(t, ok)
	_, ok = idx.Files("ghost")
	assert.False(t, ok)

	t.Run("bad file entries fail the build", func(t *testing.T) {
		_, err := Build(ctx, entries, WithFileEntries([]Entry{{Name: "ag-2.2.0-1/files", Data: []byte("%FILES%\n")}}))
		var decodeErr *EntryDecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.EqualValues(t, "ag-2.2.0-1/files", decodeErr.Entry)
		assert.ErrorIs(t, err, desc.ErrMalformedBlock)
	})
}

func TestBuild_Concurrency(t *testing.T) {
	var entries []Entry
	for i := range 500 {
		name := fmt.Sprintf("pkg%03d", i)
		entries = append(entries, Entry{Name: name, Data: record(name, "1.0-1")})
	}
	idx, err := Build(context.TODO(), entries, WithConcurrency(16))
	require.NoError(t, err)

	out := names(idx)
	assert.Len(t, out, 500)
	assert.True(t, slices.IsSorted(out))
}
