package esbuildc

import (
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/stackb/memcompile/pkg/tsc"
)

func TestParseSettings(t *testing.T) {
	for name, tc := range map[string]struct {
		options      tsc.CompilerOptions
		wantTarget   api.Target
		wantModule   tsc.ModuleKind
		wantTsconfig string
		wantErr      string
	}{
		"defaults": {
			options:    tsc.DefaultCompilerOptions(),
			wantTarget: api.ES2015,
			wantModule: tsc.CommonJS,
		},
		"es5": {
			options:    tsc.CompilerOptions{"target": "es5"},
			wantTarget: api.ES5,
			wantModule: tsc.CommonJS,
		},
		"es2020": {
			options:    tsc.CompilerOptions{"target": tsc.ES2020, "module": "esnext"},
			wantTarget: api.ES2020,
			wantModule: tsc.ModuleESNext,
		},
		"esnext": {
			options:    tsc.CompilerOptions{"target": "ESNext", "module": "es2022"},
			wantTarget: api.ESNext,
			wantModule: tsc.ModuleES2022,
		},
		"es2024 maps to esnext": {
			options:    tsc.CompilerOptions{"target": tsc.ES2024, "module": tsc.CommonJS},
			wantTarget: api.ESNext,
			wantModule: tsc.CommonJS,
		},
		"tsconfig passthrough": {
			options: tsc.CompilerOptions{
				"target":                 tsc.ES2015,
				"experimentalDecorators": true,
				"strict":                 false,
				"outDir":                 "dist",
			},
			wantTarget:   api.ES2015,
			wantModule:   tsc.ModuleES2015,
			wantTsconfig: `{"compilerOptions":{"experimentalDecorators":true,"strict":false}}`,
		},
		"es3": {
			options: tsc.CompilerOptions{"target": tsc.ES3},
			wantErr: "rpc error: code = InvalidArgument desc = target ES3 is not supported by the esbuild compiler",
		},
		"amd": {
			options: tsc.CompilerOptions{"target": tsc.ES2015, "module": tsc.AMD},
			wantErr: "rpc error: code = InvalidArgument desc = module amd is not supported by the esbuild compiler",
		},
		"declaration": {
			options: tsc.CompilerOptions{"target": tsc.ES2015, "declaration": true},
			wantErr: `rpc error: code = InvalidArgument desc = compiler option "declaration" is not supported: the esbuild compiler does not emit declarations`,
		},
		"emitDeclarationOnly": {
			options: tsc.CompilerOptions{"target": tsc.ES2015, "emitDeclarationOnly": true},
			wantErr: `rpc error: code = InvalidArgument desc = compiler option "emitDeclarationOnly" is not supported: the esbuild compiler does not emit declarations`,
		},
		"bad bool": {
			options: tsc.CompilerOptions{"target": tsc.ES2015, "noEmit": "yes"},
			wantErr: `rpc error: code = InvalidArgument desc = compiler option "noEmit" must be a boolean, got string`,
		},
	} {
		t.Run(name, func(t *testing.T) {
			s, err := parseSettings(tc.options)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				require.Equal(t, codes.InvalidArgument, status.Code(err))
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tc.wantTarget, s.esTarget); diff != "" {
				t.Errorf("target (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantModule, s.module); diff != "" {
				t.Errorf("module (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantTsconfig, s.tsconfigRaw); diff != "" {
				t.Errorf("tsconfigRaw (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSettingsSourceMapConflict(t *testing.T) {
	s, err := parseSettings(tsc.CompilerOptions{"target": tsc.ES2015, "sourceMap": true, "inlineSourceMap": true})
	require.NoError(t, err)
	require.Len(t, s.diagnostics, 1)
	require.Equal(t, 5053, s.diagnostics[0].Code)
	require.Equal(t, "Option 'sourceMap' cannot be specified with option 'inlineSourceMap'.", s.diagnostics[0].Message())
	require.Equal(t, api.SourceMapExternal, s.sourceMapMode(), "inline maps are embedded after transpile")
}

func TestSettingsFormat(t *testing.T) {
	for name, tc := range map[string]struct {
		module   tsc.ModuleKind
		fileName string
		want     api.Format
	}{
		"commonjs":     {module: tsc.CommonJS, fileName: "a.ts", want: api.FormatCommonJS},
		"none":         {module: tsc.ModuleNone, fileName: "a.ts", want: api.FormatCommonJS},
		"es2015":       {module: tsc.ModuleES2015, fileName: "a.ts", want: api.FormatESModule},
		"esnext":       {module: tsc.ModuleESNext, fileName: "a.ts", want: api.FormatESModule},
		"nodenext cjs": {module: tsc.NodeNext, fileName: "a.ts", want: api.FormatCommonJS},
		"nodenext mts": {module: tsc.NodeNext, fileName: "a.mts", want: api.FormatESModule},
		"node16 cts":   {module: tsc.Node16, fileName: "a.cts", want: api.FormatCommonJS},
		"preserve":     {module: tsc.ModulePreserve, fileName: "a.ts", want: api.FormatESModule},
	} {
		t.Run(name, func(t *testing.T) {
			s := &settings{module: tc.module}
			if diff := cmp.Diff(tc.want, s.format(tc.fileName)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}
