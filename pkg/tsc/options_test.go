package tsc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestMergeCompilerOptions(t *testing.T) {
	defaults := DefaultCompilerOptions()
	got := MergeCompilerOptions(defaults, CompilerOptions{
		OptionModule: "ESNext",
		OptionOutDir: "dist",
	})
	want := CompilerOptions{
		OptionTarget: ES2015,
		OptionModule: "ESNext",
		OptionOutDir: "dist",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if _, ok := defaults[OptionOutDir]; ok {
		t.Error("merge must not modify the defaults")
	}
}

func TestCompilerOptionsTarget(t *testing.T) {
	for name, tc := range map[string]struct {
		value   any
		want    ScriptTarget
		wantErr bool
	}{
		"unset":        {want: ES3},
		"enum":         {value: ES2020, want: ES2020},
		"name":         {value: "es2015", want: ES2015},
		"mixed case":   {value: "ESNext", want: ESNext},
		"es6 alias":    {value: "ES6", want: ES2015},
		"json number":  {value: float64(2), want: ES2015},
		"int":          {value: 9, want: ES2022},
		"unknown name": {value: "ES1999", wantErr: true},
		"fraction":     {value: 2.5, wantErr: true},
		"out of range": {value: 42, wantErr: true},
		"wrong type":   {value: true, wantErr: true},
	} {
		t.Run(name, func(t *testing.T) {
			opts := CompilerOptions{}
			if tc.value != nil {
				opts[OptionTarget] = tc.value
			}
			got, err := opts.Target()
			if tc.wantErr {
				require.Error(t, err)
				require.Equal(t, codes.InvalidArgument, status.Code(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestCompilerOptionsModule(t *testing.T) {
	for name, tc := range map[string]struct {
		opts    CompilerOptions
		want    ModuleKind
		wantErr bool
	}{
		"unset with old target": {opts: CompilerOptions{OptionTarget: ES5}, want: CommonJS},
		"unset with es2015":     {opts: CompilerOptions{OptionTarget: ES2015}, want: ModuleES2015},
		"name":                  {opts: CompilerOptions{OptionModule: "commonjs"}, want: CommonJS},
		"enum":                  {opts: CompilerOptions{OptionModule: ModuleESNext}, want: ModuleESNext},
		"number":                {opts: CompilerOptions{OptionModule: float64(199)}, want: NodeNext},
		"unknown":               {opts: CompilerOptions{OptionModule: "commonjs2"}, wantErr: true},
		"unknown number":        {opts: CompilerOptions{OptionModule: 8}, wantErr: true},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := tc.opts.Module()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestCompilerOptionsScalars(t *testing.T) {
	opts := CompilerOptions{
		OptionSourceMap: true,
		OptionOutDir:    "dist",
		OptionNoEmit:    "yes",
		OptionNewLine:   "crlf",
	}

	b, err := opts.Bool(OptionSourceMap)
	require.NoError(t, err)
	require.True(t, b)

	b, err = opts.Bool(OptionDeclaration)
	require.NoError(t, err)
	require.False(t, b)

	_, err = opts.Bool(OptionNoEmit)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	s, err := opts.String(OptionOutDir)
	require.NoError(t, err)
	require.Equal(t, "dist", s)

	_, err = opts.String(OptionSourceMap)
	require.Error(t, err)

	nl, err := opts.NewLine()
	require.NoError(t, err)
	require.Equal(t, "\r\n", nl)
}

func TestDefaultLibFileName(t *testing.T) {
	for target, want := range map[ScriptTarget]string{
		ES5:    "lib.d.ts",
		ES2015: "lib.es6.d.ts",
		ES2020: "lib.es2020.full.d.ts",
		ESNext: "lib.esnext.full.d.ts",
	} {
		if got := DefaultLibFileName(target); got != want {
			t.Errorf("%v: want %q, got %q", target, want, got)
		}
	}
}

func TestRemoveFileExtension(t *testing.T) {
	for in, want := range map[string]string{
		"a.ts":      "a",
		"a/b.d.ts":  "a/b",
		"a.b/c":     "a.b/c",
		"x.mts":     "x",
		"noext":     "noext",
		"dir/x.js":  "dir/x",
		"lib.d.mts": "lib",
	} {
		if got := RemoveFileExtension(in); got != want {
			t.Errorf("%s: want %q, got %q", in, want, got)
		}
	}
}
