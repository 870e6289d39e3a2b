package vpath

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	for name, tc := range map[string]struct {
		key  string
		want string
	}{
		"degenerate":          {key: "", want: ".ts"},
		"already compilable":  {key: "a/b/c.ts", want: "a/b/c.ts"},
		"missing extension":   {key: "foo", want: "foo.ts"},
		"backslashes":         {key: `a\b\c.ts`, want: "a/b/c.ts"},
		"runs of backslashes": {key: `a\\\b\\c`, want: "a/b/c.ts"},
		"mixed separators":    {key: `a\b/c`, want: "a/b/c.ts"},
		"declaration":         {key: "types.d.ts", want: "types.d.ts"},
		"tsx is not ts":       {key: "view.tsx", want: "view.tsx.ts"},
		"js source":           {key: "legacy.js", want: "legacy.js.ts"},
		"suffix mid-name":     {key: "a.ts.bak", want: "a.ts.bak.ts"},
	} {
		t.Run(name, func(t *testing.T) {
			got := Normalize(tc.key)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, key := range []string{"foo", `a\b`, "x.ts", "", `\\`} {
		once := Normalize(key)
		if twice := Normalize(once); twice != once {
			t.Errorf("%q: %q != %q", key, once, twice)
		}
	}
}

func TestSourceKeyForOutput(t *testing.T) {
	type result struct {
		Key  string
		Kind OutputKind
		OK   bool
	}

	for name, tc := range map[string]struct {
		fileName string
		want     result
	}{
		"js":          {fileName: "a/b.js", want: result{"a/b.ts", OutputJS, true}},
		"declaration": {fileName: "a/b.d.ts", want: result{"a/b.ts", OutputDeclaration, true}},
		"source map":  {fileName: "a/b.js.map", want: result{"", OutputOther, false}},
		"build info":  {fileName: "tsconfig.tsbuildinfo", want: result{"", OutputOther, false}},
		"mjs":         {fileName: "a.mjs", want: result{"", OutputOther, false}},
		"plain ts":    {fileName: "a.ts", want: result{"", OutputOther, false}},
		"dts in dir":  {fileName: "x.d.ts/y.js", want: result{"x.d.ts/y.ts", OutputJS, true}},
	} {
		t.Run(name, func(t *testing.T) {
			key, kind, ok := SourceKeyForOutput(tc.fileName)
			if diff := cmp.Diff(tc.want, result{key, kind, ok}); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}
