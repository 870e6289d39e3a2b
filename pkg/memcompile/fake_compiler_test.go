package memcompile

import (
	"fmt"
	"regexp"

	"github.com/spf13/afero"

	"github.com/stackb/memcompile/pkg/fshost"
	"github.com/stackb/memcompile/pkg/tsc"
)

var (
	exportConstRe    = regexp.MustCompile(`export const (\w+)`)
	numberMismatchRe = regexp.MustCompile(`const (\w+): number = '`)
)

// fakeCompiler is a type-checking compiler stand-in. It reports a TS2322 for
// every string assigned to a number-typed const and emits the source text as
// JavaScript plus one declaration per exported const.
type fakeCompiler struct {
	fs afero.Fs
}

func (c fakeCompiler) CreateCompilerHost(options tsc.CompilerOptions) (tsc.CompilerHost, error) {
	return fshost.New(c.fs, fshost.WithCurrentDirectory("/work"))
}

func (fakeCompiler) CreateSourceFile(fileName, sourceText string, languageVersion tsc.ScriptTarget) *tsc.SourceFile {
	return tsc.NewSourceFile(fileName, sourceText, languageVersion)
}

func (fakeCompiler) CreateProgram(rootNames []string, options tsc.CompilerOptions, host tsc.CompilerHost) (tsc.Program, error) {
	target, err := options.Target()
	if err != nil {
		return nil, err
	}
	p := &fakeProgram{roots: rootNames, options: options, host: host}
	for _, name := range rootNames {
		file := host.GetSourceFile(name, target)
		if file == nil {
			p.global = append(p.global, tsc.NewGlobalDiagnostic(tsc.CategoryError, tsc.CodeFileNotFound, "File '%s' not found.", name))
			continue
		}
		p.files = append(p.files, file)
		for _, m := range numberMismatchRe.FindAllStringSubmatchIndex(file.Text, -1) {
			p.semantic = append(p.semantic, &tsc.Diagnostic{
				File:        file,
				Start:       m[2],
				Length:      m[3] - m[2],
				Category:    tsc.CategoryError,
				Code:        2322,
				MessageText: "Type 'string' is not assignable to type 'number'.",
			})
		}
	}
	return p, nil
}

func (fakeCompiler) GetPreEmitDiagnostics(program tsc.Program) []*tsc.Diagnostic {
	return tsc.PreEmitDiagnostics(program)
}

type fakeProgram struct {
	roots    []string
	options  tsc.CompilerOptions
	host     tsc.CompilerHost
	files    []*tsc.SourceFile
	global   []*tsc.Diagnostic
	semantic []*tsc.Diagnostic
}

func (p *fakeProgram) RootFileNames() []string                 { return p.roots }
func (p *fakeProgram) SourceFiles() []*tsc.SourceFile          { return p.files }
func (p *fakeProgram) Options() tsc.CompilerOptions            { return p.options }
func (p *fakeProgram) OptionsDiagnostics() []*tsc.Diagnostic   { return nil }
func (p *fakeProgram) GlobalDiagnostics() []*tsc.Diagnostic    { return p.global }
func (p *fakeProgram) SyntacticDiagnostics() []*tsc.Diagnostic { return nil }
func (p *fakeProgram) SemanticDiagnostics() []*tsc.Diagnostic  { return p.semantic }

func (p *fakeProgram) SourceFile(fileName string) *tsc.SourceFile {
	for _, file := range p.files {
		if file.FileName == fileName {
			return file
		}
	}
	return nil
}

func (p *fakeProgram) Emit() *tsc.EmitResult {
	result := &tsc.EmitResult{}
	sourceMap, _ := p.options.Bool(tsc.OptionSourceMap)
	for _, file := range p.files {
		stem := tsc.RemoveFileExtension(file.FileName)
		var declarations string
		for _, m := range exportConstRe.FindAllStringSubmatch(file.Text, -1) {
			declarations += fmt.Sprintf("export declare const %s: any;\n", m[1])
		}
		writes := []struct{ name, data string }{
			{stem + ".js", "\"use strict\";\n" + file.Text},
			{stem + ".d.ts", declarations},
		}
		if sourceMap {
			writes = append(writes, struct{ name, data string }{stem + ".js.map", `{"version":3}`})
		}
		for _, w := range writes {
			if err := p.host.WriteFile(w.name, w.data, false); err != nil {
				result.Diagnostics = append(result.Diagnostics, tsc.NewGlobalDiagnostic(tsc.CategoryError, tsc.CodeCouldNotWrite,
					"Could not write file '%s': %s.", w.name, err))
				continue
			}
			result.EmittedFiles = append(result.EmittedFiles, w.name)
		}
	}
	return result
}
