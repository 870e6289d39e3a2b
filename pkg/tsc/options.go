package tsc

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Option keys understood by the compiler bindings in this module.
const (
	OptionTarget              = "target"
	OptionModule              = "module"
	OptionOutDir              = "outDir"
	OptionRootDir             = "rootDir"
	OptionSourceMap           = "sourceMap"
	OptionInlineSourceMap     = "inlineSourceMap"
	OptionDeclaration         = "declaration"
	OptionEmitDeclarationOnly = "emitDeclarationOnly"
	OptionNoEmit              = "noEmit"
	OptionNoEmitOnError       = "noEmitOnError"
	OptionListEmittedFiles    = "listEmittedFiles"
	OptionEmitBOM             = "emitBOM"
	OptionNewLine             = "newLine"
	OptionLib                 = "lib"
)

// CompilerOptions is the set of compiler configuration flags, keyed the way
// tsconfig.json "compilerOptions" keys are.
type CompilerOptions map[string]any

// DefaultCompilerOptions returns the options applied when the caller does not
// set them.
func DefaultCompilerOptions() CompilerOptions {
	return CompilerOptions{
		OptionTarget: ES2015,
		OptionModule: CommonJS,
	}
}

// MergeCompilerOptions returns a new set containing defaults overlaid with
// overrides. Entries in overrides win for the same key.
func MergeCompilerOptions(defaults, overrides CompilerOptions) CompilerOptions {
	merged := make(CompilerOptions, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// Target returns the configured script target, ES3 when unset.
func (o CompilerOptions) Target() (ScriptTarget, error) {
	v, ok := o[OptionTarget]
	if !ok || v == nil {
		return ES3, nil
	}
	t, err := ParseScriptTarget(v)
	if err != nil {
		return 0, invalidOption(OptionTarget, err)
	}
	return t, nil
}

// Module returns the configured module kind. When unset it follows the
// TypeScript rule: CommonJS below ES2015, ES2015 otherwise.
func (o CompilerOptions) Module() (ModuleKind, error) {
	v, ok := o[OptionModule]
	if !ok || v == nil {
		target, err := o.Target()
		if err != nil {
			return 0, err
		}
		if target >= ES2015 {
			return ModuleES2015, nil
		}
		return CommonJS, nil
	}
	m, err := ParseModuleKind(v)
	if err != nil {
		return 0, invalidOption(OptionModule, err)
	}
	return m, nil
}

// Bool returns a boolean flag, false when unset.
func (o CompilerOptions) Bool(key string) (bool, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, status.Errorf(codes.InvalidArgument, "compiler option %q must be a boolean, got %T", key, v)
	}
	return b, nil
}

// String returns a string option, "" when unset.
func (o CompilerOptions) String(key string) (string, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "compiler option %q must be a string, got %T", key, v)
	}
	return s, nil
}

// NewLine returns the configured line terminator ("\n" unless newLine is
// "crlf").
func (o CompilerOptions) NewLine() (string, error) {
	s, err := o.String(OptionNewLine)
	if err != nil {
		return "", err
	}
	switch s {
	case "", "lf", "LF":
		return "\n", nil
	case "crlf", "CRLF":
		return "\r\n", nil
	default:
		return "", status.Errorf(codes.InvalidArgument, "compiler option %q must be \"lf\" or \"crlf\", got %q", OptionNewLine, s)
	}
}

func invalidOption(key string, err error) error {
	return status.Errorf(codes.InvalidArgument, "compiler option %q: %v", key, err)
}
