// Package esbuildc is a tsc.Compiler backed by esbuild. esbuild strips types
// and transpiles each source file but does not type-check or emit
// declarations, so a program built here reports syntax and module resolution
// diagnostics only.
package esbuildc

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/stackb/memcompile/pkg/fshost"
	"github.com/stackb/memcompile/pkg/tsc"
)

// Option configures a Compiler.
type Option func(*Compiler) *Compiler

// WithLogger sets the logger for the compiler and the hosts it creates.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Compiler) *Compiler {
		c.logger = logger
		return c
	}
}

// WithFs sets the filesystem hosts created by CreateCompilerHost read from.
func WithFs(fs afero.Fs) Option {
	return func(c *Compiler) *Compiler {
		c.fs = fs
		return c
	}
}

// WithHostOptions appends options for the hosts created by
// CreateCompilerHost.
func WithHostOptions(options ...fshost.Option) Option {
	return func(c *Compiler) *Compiler {
		c.hostOptions = append(c.hostOptions, options...)
		return c
	}
}

// Compiler implements tsc.Compiler. It is safe for concurrent use; hosts are
// shared between programs with the same newline setting so their read caches
// are reused.
type Compiler struct {
	logger      zerolog.Logger
	fs          afero.Fs
	hostOptions []fshost.Option

	mu    sync.Mutex
	hosts map[string]*fshost.Host
}

// New creates a Compiler. The operating system filesystem is used unless
// WithFs is given.
func New(options ...Option) *Compiler {
	c := &Compiler{
		logger: zerolog.Nop(),
		hosts:  make(map[string]*fshost.Host),
	}
	for _, opt := range options {
		c = opt(c)
	}
	return c
}

// CreateCompilerHost implements part of the tsc.Compiler interface.
func (c *Compiler) CreateCompilerHost(options tsc.CompilerOptions) (tsc.CompilerHost, error) {
	newLine, err := options.NewLine()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if host, ok := c.hosts[newLine]; ok {
		return host, nil
	}

	hostOptions := []fshost.Option{fshost.WithLogger(c.logger)}
	hostOptions = append(hostOptions, c.hostOptions...)
	hostOptions = append(hostOptions, fshost.WithNewLine(newLine))

	var host *fshost.Host
	if c.fs == nil {
		host, err = fshost.NewOsHost(hostOptions...)
	} else {
		host, err = fshost.New(c.fs, hostOptions...)
	}
	if err != nil {
		return nil, err
	}
	c.hosts[newLine] = host
	return host, nil
}

// CreateSourceFile implements part of the tsc.Compiler interface.
func (c *Compiler) CreateSourceFile(fileName, sourceText string, languageVersion tsc.ScriptTarget) *tsc.SourceFile {
	return tsc.NewSourceFile(fileName, sourceText, languageVersion)
}

// CreateProgram implements part of the tsc.Compiler interface. Every root and
// every file reachable from a root through relative imports is transpiled
// before it returns.
func (c *Compiler) CreateProgram(rootNames []string, options tsc.CompilerOptions, host tsc.CompilerHost) (tsc.Program, error) {
	s, err := parseSettings(options)
	if err != nil {
		return nil, err
	}
	p := newProgram(rootNames, options, s, host, c.logger)
	p.build()
	return p, nil
}

// GetPreEmitDiagnostics implements part of the tsc.Compiler interface.
func (c *Compiler) GetPreEmitDiagnostics(program tsc.Program) []*tsc.Diagnostic {
	return tsc.PreEmitDiagnostics(program)
}
