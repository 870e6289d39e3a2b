package esbuildc

import (
	"encoding/base64"
	"fmt"
	"path"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog"

	"github.com/stackb/memcompile/pkg/tsc"
)

// namespace is the esbuild plugin namespace source files are loaded into.
const namespace = "vhost"

const cannotFindModule = "Cannot find module '%s' or its corresponding type declarations."

const inlineSourceMappingURL = "//# sourceMappingURL=data:application/json;base64,"

var mappingsRe = regexp.MustCompile(`"mappings":\s*"([^"]*)"`)

// unit is one source file of the program and what esbuild made of it.
type unit struct {
	file      *tsc.SourceFile
	syntactic []*tsc.Diagnostic
	semantic  []*tsc.Diagnostic

	// transpiled is false for declaration files and files esbuild rejected.
	transpiled bool
	js         string
	sourceMap  string
}

// program implements tsc.Program.
type program struct {
	logger   zerolog.Logger
	roots    []string
	options  tsc.CompilerOptions
	settings *settings
	host     tsc.CompilerHost

	units  []*unit
	byName map[string]*unit
	global []*tsc.Diagnostic
}

func newProgram(roots []string, options tsc.CompilerOptions, s *settings, host tsc.CompilerHost, logger zerolog.Logger) *program {
	return &program{
		logger:   logger,
		roots:    roots,
		options:  options,
		settings: s,
		host:     host,
		byName:   make(map[string]*unit),
	}
}

// build loads the roots and transpiles files breadth-first until no new
// relative imports turn up.
func (p *program) build() {
	t1 := time.Now()

	var queue []*unit
	for _, name := range p.roots {
		if _, seen := p.byName[name]; seen {
			continue
		}
		u := p.load(name)
		if u == nil {
			p.global = append(p.global, tsc.NewGlobalDiagnostic(tsc.CategoryError, tsc.CodeFileNotFound,
				"File '%s' not found.", name))
			continue
		}
		queue = append(queue, u)
	}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		if u.file.IsDeclarationFile() {
			continue
		}
		for _, name := range p.transpile(u) {
			if _, ok := p.byName[name]; ok {
				continue
			}
			if imported := p.load(name); imported != nil {
				queue = append(queue, imported)
			}
		}
	}

	p.logger.Debug().
		Int("roots", len(p.roots)).
		Int("files", len(p.units)).
		Dur("elapsed", time.Since(t1)).
		Msg("program created")
}

// load fetches a file through the host and registers it. Files already in
// the program are returned as is.
func (p *program) load(name string) *unit {
	if u, ok := p.byName[name]; ok {
		return u
	}
	file := p.host.GetSourceFile(name, p.settings.target)
	if file == nil {
		return nil
	}
	u := &unit{file: file}
	p.units = append(p.units, u)
	p.byName[name] = u
	return u
}

// transpile runs esbuild over a single file and returns the files its
// relative imports resolved to.
func (p *program) transpile(u *unit) []string {
	name := u.file.FileName

	var mu sync.Mutex
	var imports []string

	plugin := api.Plugin{
		Name: namespace,
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: ".*"}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				if args.Kind == api.ResolveEntryPoint {
					return api.OnResolveResult{Path: args.Path, Namespace: namespace}, nil
				}
				resolved, ok := p.resolveImport(args.Path, name)
				if !ok {
					return api.OnResolveResult{}, fmt.Errorf(cannotFindModule, args.Path)
				}
				if resolved != "" {
					mu.Lock()
					imports = append(imports, resolved)
					mu.Unlock()
				}
				return api.OnResolveResult{Path: args.Path, External: true}, nil
			})
			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: namespace}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				text := u.file.Text
				return api.OnLoadResult{Contents: &text, Loader: loaderFor(args.Path)}, nil
			})
		},
	}

	result := api.Build(api.BuildOptions{
		EntryPoints: []string{name},
		Outfile:     "/" + path.Base(outputFileName(name)),
		Bundle:      true,
		Write:       false,
		Platform:    api.PlatformNeutral,
		Format:      p.settings.format(name),
		Target:      p.settings.esTarget,
		Sourcemap:   p.settings.sourceMapMode(),
		TreeShaking: api.TreeShakingFalse,
		TsconfigRaw: p.settings.tsconfigRaw,
		LogLevel:    api.LogLevelSilent,
		Plugins:     []api.Plugin{plugin},
	})

	for _, msg := range result.Errors {
		p.report(u, msg, tsc.CategoryError)
	}
	for _, msg := range result.Warnings {
		p.report(u, msg, tsc.CategoryWarning)
	}

	if len(result.Errors) == 0 {
		u.transpiled = true
		for _, out := range result.OutputFiles {
			if strings.HasSuffix(out.Path, ".map") {
				u.sourceMap = string(out.Contents)
			} else {
				u.js = string(out.Contents)
			}
		}
		u.js, u.sourceMap = stripPathComments(u.js, u.sourceMap)
		if p.settings.inlineSourceMap {
			u.js += inlineSourceMappingURL + base64.StdEncoding.EncodeToString([]byte(u.sourceMap)) + "\n"
			u.sourceMap = ""
		}
	}

	p.logger.Debug().
		Str("file", name).
		Int("errors", len(result.Errors)).
		Int("warnings", len(result.Warnings)).
		Strs("imports", imports).
		Msg("transpiled")

	return imports
}

// stripPathComments removes the "// vhost:<path>" line esbuild writes ahead
// of each bundled file, along with the matching generated lines of the
// source map.
func stripPathComments(js, sourceMap string) (string, string) {
	lines := strings.SplitAfter(js, "\n")
	var dropped []int
	var b strings.Builder
	for i, line := range lines {
		if strings.HasPrefix(line, "// "+namespace+":") {
			dropped = append(dropped, i)
			continue
		}
		b.WriteString(line)
	}
	if len(dropped) == 0 {
		return js, sourceMap
	}

	if loc := mappingsRe.FindStringSubmatchIndex(sourceMap); loc != nil {
		groups := strings.Split(sourceMap[loc[2]:loc[3]], ";")
		kept := groups[:0]
		for i, group := range groups {
			if len(dropped) > 0 && dropped[0] == i {
				dropped = dropped[1:]
				continue
			}
			kept = append(kept, group)
		}
		sourceMap = sourceMap[:loc[2]] + strings.Join(kept, ";") + sourceMap[loc[3]:]
	}

	return b.String(), sourceMap
}

// report files an esbuild message with the unit it points into, falling back
// to the unit being transpiled.
func (p *program) report(u *unit, msg api.Message, category tsc.DiagnosticCategory) {
	d := p.diagnosticFromMessage(msg, category)
	target := u
	if d.File != nil {
		if owner, ok := p.byName[d.File.FileName]; ok {
			target = owner
		}
	}
	if isResolutionMessage(msg) {
		target.semantic = append(target.semantic, d)
	} else {
		target.syntactic = append(target.syntactic, d)
	}
}

// RootFileNames implements part of the tsc.Program interface.
func (p *program) RootFileNames() []string {
	return p.roots
}

// SourceFiles implements part of the tsc.Program interface.
func (p *program) SourceFiles() []*tsc.SourceFile {
	files := make([]*tsc.SourceFile, len(p.units))
	for i, u := range p.units {
		files[i] = u.file
	}
	return files
}

// SourceFile implements part of the tsc.Program interface.
func (p *program) SourceFile(fileName string) *tsc.SourceFile {
	if u, ok := p.byName[fileName]; ok {
		return u.file
	}
	return nil
}

// Options implements part of the tsc.Program interface.
func (p *program) Options() tsc.CompilerOptions {
	return p.options
}

// OptionsDiagnostics implements part of the tsc.Program interface.
func (p *program) OptionsDiagnostics() []*tsc.Diagnostic {
	return p.settings.diagnostics
}

// GlobalDiagnostics implements part of the tsc.Program interface.
func (p *program) GlobalDiagnostics() []*tsc.Diagnostic {
	return p.global
}

// SyntacticDiagnostics implements part of the tsc.Program interface.
func (p *program) SyntacticDiagnostics() []*tsc.Diagnostic {
	var all []*tsc.Diagnostic
	for _, u := range p.units {
		all = append(all, u.syntactic...)
	}
	return all
}

// SemanticDiagnostics implements part of the tsc.Program interface.
func (p *program) SemanticDiagnostics() []*tsc.Diagnostic {
	var all []*tsc.Diagnostic
	for _, u := range p.units {
		all = append(all, u.semantic...)
	}
	return all
}
