package esbuildc

import (
	"path"
	"strings"

	"github.com/stackb/memcompile/pkg/tsc"
)

const (
	codeNotUnderRootDir = 6059
)

// Emit implements part of the tsc.Program interface.
func (p *program) Emit() *tsc.EmitResult {
	result := &tsc.EmitResult{}

	if p.settings.noEmit {
		result.EmitSkipped = true
		return result
	}
	if p.settings.noEmitOnError && tsc.HasErrors(tsc.PreEmitDiagnostics(p)) {
		p.logger.Debug().Msg("emit skipped: noEmitOnError")
		result.EmitSkipped = true
		return result
	}

	var emitted []*unit
	for _, u := range p.units {
		if u.transpiled {
			emitted = append(emitted, u)
		}
	}

	root := p.commonSourceDirectory(emitted, result)
	for _, u := range emitted {
		out := p.outputPath(u.file.FileName, root)
		p.write(result, out, p.withNewLine(u.js))
		if u.sourceMap != "" {
			p.write(result, out+".map", u.sourceMap)
		}
	}

	return result
}

func (p *program) write(result *tsc.EmitResult, fileName, data string) {
	if err := p.host.WriteFile(fileName, data, p.settings.emitBOM); err != nil {
		result.Diagnostics = append(result.Diagnostics, tsc.NewGlobalDiagnostic(tsc.CategoryError, tsc.CodeCouldNotWrite,
			"Could not write file '%s': %s.", fileName, err))
		return
	}
	if p.settings.listEmittedFiles {
		result.EmittedFiles = append(result.EmittedFiles, fileName)
	}
}

func (p *program) withNewLine(text string) string {
	if p.settings.newLine == "\n" {
		return text
	}
	return strings.ReplaceAll(text, "\n", p.settings.newLine)
}

// commonSourceDirectory is rootDir when set, otherwise the deepest directory
// containing every emitted file. Only consulted when outDir is set.
func (p *program) commonSourceDirectory(units []*unit, result *tsc.EmitResult) string {
	if p.settings.outDir == "" {
		return ""
	}
	if p.settings.rootDir != "" {
		root := path.Clean(p.settings.rootDir)
		for _, u := range units {
			if !isUnder(u.file.FileName, root) {
				result.Diagnostics = append(result.Diagnostics, tsc.NewGlobalDiagnostic(tsc.CategoryError, codeNotUnderRootDir,
					"File '%s' is not under 'rootDir' '%s'. 'rootDir' is expected to contain all source files.",
					u.file.FileName, p.settings.rootDir))
			}
		}
		return root
	}

	var common []string
	for i, u := range units {
		dir := strings.Split(path.Dir(u.file.FileName), "/")
		if i == 0 {
			common = dir
			continue
		}
		n := 0
		for n < len(common) && n < len(dir) && common[n] == dir[n] {
			n++
		}
		common = common[:n]
	}
	if len(common) == 0 {
		return "."
	}
	return strings.Join(common, "/")
}

// outputPath maps a source file to its emitted JavaScript path.
func (p *program) outputPath(fileName, root string) string {
	if p.settings.outDir == "" {
		return outputFileName(fileName)
	}
	rel := fileName
	if root != "." && isUnder(fileName, root) {
		rel = strings.TrimPrefix(fileName, root+"/")
	}
	rel = strings.TrimPrefix(path.Clean(rel), "/")
	return path.Join(p.settings.outDir, outputFileName(rel))
}

func outputFileName(fileName string) string {
	return tsc.RemoveFileExtension(fileName) + tsc.JSOutputExtension(fileName)
}

func isUnder(fileName, dir string) bool {
	if dir == "." {
		return !path.IsAbs(fileName) && !strings.HasPrefix(path.Clean(fileName), "../")
	}
	return strings.HasPrefix(fileName, dir+"/")
}
