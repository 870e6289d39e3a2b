package esbuildc

import (
	"encoding/json"

	"github.com/evanw/esbuild/pkg/api"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/stackb/memcompile/pkg/tsc"
)

// tsconfigPassthrough lists the compiler options esbuild itself understands
// when given as a raw tsconfig.
var tsconfigPassthrough = []string{
	"alwaysStrict",
	"experimentalDecorators",
	"importsNotUsedAsValues",
	"jsx",
	"jsxFactory",
	"jsxFragmentFactory",
	"jsxImportSource",
	"preserveValueImports",
	"strict",
	"useDefineForClassFields",
	"verbatimModuleSyntax",
}

var esTargets = map[tsc.ScriptTarget]api.Target{
	tsc.ES5:    api.ES5,
	tsc.ES2015: api.ES2015,
	tsc.ES2016: api.ES2016,
	tsc.ES2017: api.ES2017,
	tsc.ES2018: api.ES2018,
	tsc.ES2019: api.ES2019,
	tsc.ES2020: api.ES2020,
	tsc.ES2021: api.ES2021,
	tsc.ES2022: api.ES2022,
}

// settings are the compiler options translated for esbuild.
type settings struct {
	target   tsc.ScriptTarget
	esTarget api.Target
	module   tsc.ModuleKind

	outDir  string
	rootDir string
	newLine string

	sourceMap        bool
	inlineSourceMap  bool
	noEmit           bool
	noEmitOnError    bool
	listEmittedFiles bool
	emitBOM          bool

	tsconfigRaw string

	// diagnostics are option problems that do not stop compilation.
	diagnostics []*tsc.Diagnostic
}

func unsupported(format string, args ...any) error {
	return status.Errorf(codes.InvalidArgument, format, args...)
}

func parseSettings(options tsc.CompilerOptions) (*settings, error) {
	s := &settings{}

	target, err := options.Target()
	if err != nil {
		return nil, err
	}
	s.target = target
	switch target {
	case tsc.ES3, tsc.JSON:
		return nil, unsupported("target %v is not supported by the esbuild compiler", target)
	}
	if esTarget, ok := esTargets[target]; ok {
		s.esTarget = esTarget
	} else {
		s.esTarget = api.ESNext
	}

	module, err := options.Module()
	if err != nil {
		return nil, err
	}
	switch module {
	case tsc.AMD, tsc.UMD, tsc.System:
		return nil, unsupported("module %v is not supported by the esbuild compiler", module)
	}
	s.module = module

	for _, key := range []string{tsc.OptionDeclaration, tsc.OptionEmitDeclarationOnly} {
		on, err := options.Bool(key)
		if err != nil {
			return nil, err
		}
		if on {
			return nil, unsupported("compiler option %q is not supported: the esbuild compiler does not emit declarations", key)
		}
	}

	if s.outDir, err = options.String(tsc.OptionOutDir); err != nil {
		return nil, err
	}
	if s.rootDir, err = options.String(tsc.OptionRootDir); err != nil {
		return nil, err
	}
	if s.newLine, err = options.NewLine(); err != nil {
		return nil, err
	}

	for key, dst := range map[string]*bool{
		tsc.OptionSourceMap:        &s.sourceMap,
		tsc.OptionInlineSourceMap:  &s.inlineSourceMap,
		tsc.OptionNoEmit:           &s.noEmit,
		tsc.OptionNoEmitOnError:    &s.noEmitOnError,
		tsc.OptionListEmittedFiles: &s.listEmittedFiles,
		tsc.OptionEmitBOM:          &s.emitBOM,
	} {
		if *dst, err = options.Bool(key); err != nil {
			return nil, err
		}
	}
	if s.sourceMap && s.inlineSourceMap {
		s.diagnostics = append(s.diagnostics, tsc.NewGlobalDiagnostic(tsc.CategoryError, 5053,
			"Option '%s' cannot be specified with option '%s'.", tsc.OptionSourceMap, tsc.OptionInlineSourceMap))
		s.sourceMap = false
	}

	raw := make(map[string]any)
	for _, key := range tsconfigPassthrough {
		if v, ok := options[key]; ok && v != nil {
			raw[key] = v
		}
	}
	if len(raw) > 0 {
		data, err := json.Marshal(map[string]any{"compilerOptions": raw})
		if err != nil {
			return nil, unsupported("encoding compiler options: %v", err)
		}
		s.tsconfigRaw = string(data)
	}

	return s, nil
}

// format picks the esbuild output format for a source file.
func (s *settings) format(fileName string) api.Format {
	switch s.module {
	case tsc.CommonJS, tsc.ModuleNone:
		return api.FormatCommonJS
	case tsc.Node16, tsc.NodeNext:
		if tsc.JSOutputExtension(fileName) == ".mjs" {
			return api.FormatESModule
		}
		return api.FormatCommonJS
	default:
		return api.FormatESModule
	}
}

// sourceMapMode has esbuild produce an external map for inlineSourceMap too;
// the map is embedded once the bundle path comments are stripped.
func (s *settings) sourceMapMode() api.SourceMap {
	switch {
	case s.inlineSourceMap:
		return api.SourceMapExternal
	case s.sourceMap:
		return api.SourceMapLinked
	default:
		return api.SourceMapNone
	}
}
