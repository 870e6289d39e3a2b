// Package tsc defines the capability surface of a TypeScript compiler: the
// host it performs file operations through, the program it builds, and the
// diagnostics it reports. Concrete compilers live in their own packages.
package tsc

// CompilerHost is everything a compiler needs from its environment. All
// paths are slash-separated.
type CompilerHost interface {
	// FileExists reports whether fileName can be read.
	FileExists(fileName string) bool
	// ReadFile returns the text of fileName, or false if it cannot be read.
	ReadFile(fileName string) (string, bool)
	// WriteFile stores an emitted output.
	WriteFile(fileName, data string, writeByteOrderMark bool) error
	// GetSourceFile returns the source unit for fileName, or nil if the file
	// cannot be found.
	GetSourceFile(fileName string, languageVersion ScriptTarget) *SourceFile
	DirectoryExists(directoryName string) bool
	GetDirectories(path string) []string
	GetCurrentDirectory() string
	GetDefaultLibFileName(options CompilerOptions) string
	GetCanonicalFileName(fileName string) string
	UseCaseSensitiveFileNames() bool
	GetNewLine() string
}

// EmitResult is returned by Program.Emit.
type EmitResult struct {
	EmitSkipped bool
	Diagnostics []*Diagnostic
	// EmittedFiles is only populated when listEmittedFiles is set.
	EmittedFiles []string
}

// Program is a set of analysed source files ready to emit.
type Program interface {
	RootFileNames() []string
	SourceFiles() []*SourceFile
	SourceFile(fileName string) *SourceFile
	Options() CompilerOptions
	OptionsDiagnostics() []*Diagnostic
	GlobalDiagnostics() []*Diagnostic
	SyntacticDiagnostics() []*Diagnostic
	SemanticDiagnostics() []*Diagnostic
	// Emit writes every output through the program's host.
	Emit() *EmitResult
}

// Compiler constructs hosts, source files and programs. Configuration errors
// are returned from CreateProgram; problems in the sources are reported as
// diagnostics.
type Compiler interface {
	CreateCompilerHost(options CompilerOptions) (CompilerHost, error)
	CreateSourceFile(fileName, sourceText string, languageVersion ScriptTarget) *SourceFile
	CreateProgram(rootNames []string, options CompilerOptions, host CompilerHost) (Program, error)
	GetPreEmitDiagnostics(program Program) []*Diagnostic
}

// PreEmitDiagnostics gathers option, syntactic, global and semantic
// diagnostics in that order.
func PreEmitDiagnostics(program Program) []*Diagnostic {
	var all []*Diagnostic
	all = append(all, program.OptionsDiagnostics()...)
	all = append(all, program.SyntacticDiagnostics()...)
	all = append(all, program.GlobalDiagnostics()...)
	all = append(all, program.SemanticDiagnostics()...)
	return all
}
