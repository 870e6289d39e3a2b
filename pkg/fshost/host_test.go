package fshost

import (
	"syscall"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/stackb/memcompile/pkg/testutil"
	"github.com/stackb/memcompile/pkg/tsc"
)

func newTestHost(t *testing.T, files ...testutil.FileSpec) *Host {
	fs := testutil.NewMemFs(t, files...)
	h, err := New(fs,
		WithLogger(testutil.NewTestLogger(t)),
		WithCurrentDirectory("/work"),
		WithLibDir("/lib"),
	)
	require.NoError(t, err)
	return h
}

func TestHostFileOperations(t *testing.T) {
	h := newTestHost(t,
		testutil.FileSpec{Path: "/work/src/a.ts", Content: "export const a = 1;"},
		testutil.FileSpec{Path: "/work/types/b.d.ts", Content: "\uFEFFexport declare const b: number;"},
		testutil.FileSpec{Path: "/work/empty/", NotExist: true},
	)

	require.True(t, h.FileExists("src/a.ts"))
	require.True(t, h.FileExists("/work/src/a.ts"))
	require.False(t, h.FileExists("src"))
	require.False(t, h.FileExists("src/missing.ts"))

	text, ok := h.ReadFile("src/a.ts")
	require.True(t, ok)
	require.Equal(t, "export const a = 1;", text)

	text, ok = h.ReadFile("types/b.d.ts")
	require.True(t, ok)
	require.Equal(t, "export declare const b: number;", text, "byte order mark is stripped")

	_, ok = h.ReadFile("nope.ts")
	require.False(t, ok)

	require.True(t, h.DirectoryExists("src"))
	require.True(t, h.DirectoryExists("empty"))
	require.False(t, h.DirectoryExists("src/a.ts"))

	if diff := cmp.Diff([]string{"empty", "src", "types"}, h.GetDirectories(".")); diff != "" {
		t.Errorf("GetDirectories (-want +got):\n%s", diff)
	}
}

func TestHostGetSourceFile(t *testing.T) {
	h := newTestHost(t, testutil.FileSpec{Path: "/work/a.ts", Content: "let a = 1;\nlet b = 2;"})

	sf := h.GetSourceFile("a.ts", tsc.ES2020)
	require.NotNil(t, sf)
	require.Equal(t, "a.ts", sf.FileName)
	require.Equal(t, tsc.ES2020, sf.LanguageVersion)
	line, char := sf.LineAndCharacterOfPosition(15)
	require.Equal(t, 1, line)
	require.Equal(t, 4, char)

	require.Nil(t, h.GetSourceFile("b.ts", tsc.ES2020))
}

func TestHostWriteFile(t *testing.T) {
	h := newTestHost(t)

	require.NoError(t, h.WriteFile("out/a.js.map", "{}", false))
	require.NoError(t, h.WriteFile("/abs/b.js", "b", true))

	require.Equal(t, "{}", testutil.MustReadTestFile(t, h.Fs(), "/work/out/a.js.map"))
	require.Equal(t, "\uFEFFb", testutil.MustReadTestFile(t, h.Fs(), "/abs/b.js"))

	text, ok := h.ReadFile("/abs/b.js")
	require.True(t, ok)
	require.Equal(t, "b", text)
}

func TestHostWriteFileErrors(t *testing.T) {
	for name, tc := range map[string]struct {
		fs      afero.Fs
		wantErr error
	}{
		"writable": {
			fs: afero.NewMemMapFs(),
		},
		"read-only": {
			fs:      afero.NewReadOnlyFs(afero.NewMemMapFs()),
			wantErr: syscall.EPERM,
		},
	} {
		t.Run(name, func(t *testing.T) {
			h, err := New(tc.fs)
			require.NoError(t, err)
			if testutil.ExpectError(t, tc.wantErr, h.WriteFile("/x/a.js.map", "{}", false)) {
				return
			}
			require.True(t, h.FileExists("/x/a.js.map"))
		})
	}
}

func TestHostReadCache(t *testing.T) {
	h := newTestHost(t, testutil.FileSpec{Path: "/lib/lib.es6.d.ts", Content: "interface Array<T> {}"})

	for i := 0; i < 3; i++ {
		text, ok := h.ReadFile("/lib/lib.es6.d.ts")
		require.True(t, ok)
		require.Equal(t, "interface Array<T> {}", text)
	}
	hits, misses := h.CacheStats()
	require.Equal(t, int64(2), hits)
	require.Equal(t, int64(1), misses)

	// a changed file must not be served from the cache
	require.NoError(t, afero.WriteFile(h.Fs(), "/lib/lib.es6.d.ts", []byte("interface Array<T> { length: number }"), 0o644))
	require.NoError(t, h.Fs().Chtimes("/lib/lib.es6.d.ts", time.Now(), time.Now().Add(time.Hour)))

	text, ok := h.ReadFile("/lib/lib.es6.d.ts")
	require.True(t, ok)
	require.Equal(t, "interface Array<T> { length: number }", text)
}

func TestHostReadCacheDisabled(t *testing.T) {
	fs := testutil.NewMemFs(t, testutil.FileSpec{Path: "/a.ts", Content: "a"})
	h, err := New(fs, WithReadCacheSize(0))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, ok := h.ReadFile("/a.ts")
		require.True(t, ok)
	}
	hits, misses := h.CacheStats()
	require.Zero(t, hits)
	require.Zero(t, misses)
}

func TestHostSettings(t *testing.T) {
	h := newTestHost(t)

	require.Equal(t, "/work", h.GetCurrentDirectory())
	require.Equal(t, "\n", h.GetNewLine())
	require.True(t, h.UseCaseSensitiveFileNames())
	require.Equal(t, "Src/A.ts", h.GetCanonicalFileName("Src/A.ts"))
	require.Equal(t, "/lib/lib.es6.d.ts", h.GetDefaultLibFileName(tsc.CompilerOptions{tsc.OptionTarget: tsc.ES2015}))
	require.Equal(t, "/lib/lib.d.ts", h.GetDefaultLibFileName(tsc.CompilerOptions{tsc.OptionTarget: "bogus"}))

	insensitive, err := New(afero.NewMemMapFs(), WithCaseSensitiveFileNames(false), WithNewLine("\r\n"))
	require.NoError(t, err)
	require.Equal(t, "src/a.ts", insensitive.GetCanonicalFileName("Src/A.ts"))
	require.Equal(t, "\r\n", insensitive.GetNewLine())
}
