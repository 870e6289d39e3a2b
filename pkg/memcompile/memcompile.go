// Package memcompile compiles TypeScript sources held in memory. Callers pass
// a map of keys to source text and get back the emitted JavaScript and
// declarations keyed by the same keys, along with formatted diagnostics.
package memcompile

import (
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/stackb/memcompile/pkg/fshost"
	"github.com/stackb/memcompile/pkg/tsc"
	"github.com/stackb/memcompile/pkg/tscnode"
	"github.com/stackb/memcompile/pkg/vhost"
	"github.com/stackb/memcompile/pkg/vstore"
)

// Options configure a single compilation.
type Options struct {
	// CompilerOptions are merged over {target: ES2015, module: CommonJS}.
	CompilerOptions tsc.CompilerOptions
	// OnWriteFile sees every output before it is classified; returning true
	// consumes it.
	OnWriteFile vhost.WriteFileFunc
	// AllowKeyCollisions lets a later key (in sorted order) replace an
	// earlier one that normalizes to the same path instead of failing.
	AllowKeyCollisions bool
	// AuxiliaryWrites selects the handling of outputs that are neither
	// JavaScript nor declarations.
	AuxiliaryWrites vhost.AuxiliaryWrites
	// PassthroughPatterns are doublestar patterns limiting which auxiliary
	// outputs reach the filesystem under AuxiliaryPassthrough.
	PassthroughPatterns []string
}

// Result is the outcome of a compilation.
type Result struct {
	// Error is a *DiagnosticsError when any diagnostic was reported.
	Error error
	// EmitResult is the compiler's emit result, nil when there was nothing
	// to compile.
	EmitResult *tsc.EmitResult
	// JSFileMap holds emitted JavaScript by original key.
	JSFileMap map[string]string
	// TsDeclarationMap holds emitted declarations by original key.
	TsDeclarationMap map[string]string
	// Diagnostics are the raw diagnostics Error was formatted from.
	Diagnostics []*tsc.Diagnostic
	// Auxiliary holds captured auxiliary outputs by output path.
	Auxiliary map[string]string
}

type Option func(*Compiler) *Compiler

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Compiler) *Compiler {
		c.logger = logger
		return c
	}
}

// WithBackend sets the compiler that builds programs. WithFs and
// WithReadCacheSize are ignored when a backend is given.
func WithBackend(backend tsc.Compiler) Option {
	return func(c *Compiler) *Compiler {
		c.backend = backend
		return c
	}
}

// WithFs sets the filesystem the default backend falls back to for files
// absent from the sources.
func WithFs(fs afero.Fs) Option {
	return func(c *Compiler) *Compiler {
		c.fs = fs
		return c
	}
}

func WithReadCacheSize(size int) Option {
	return func(c *Compiler) *Compiler {
		c.readCacheSize = size
		return c
	}
}

// WithTypeScript sets the typescript.js the default backend loads. Ignored
// when a backend is given.
func WithTypeScript(path string) Option {
	return func(c *Compiler) *Compiler {
		c.typescript = path
		return c
	}
}

var defaultOptions = []Option{
	WithLogger(zerolog.Nop()),
	WithReadCacheSize(fshost.DefaultReadCacheSize),
}

// Compiler runs in-memory compilations. It is safe for concurrent use; each
// call to Compile owns its own store and host.
type Compiler struct {
	logger        zerolog.Logger
	backend       tsc.Compiler
	fs            afero.Fs
	readCacheSize int
	typescript    string
}

// New creates a Compiler. Without WithBackend it type-checks and emits with
// the TypeScript compiler run under node (see package tscnode); esbuildc.New
// is a faster transpile-only backend.
func New(options ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range append(defaultOptions, options...) {
		c = opt(c)
	}
	if c.backend == nil {
		backendOptions := []tscnode.Option{
			tscnode.WithLogger(c.logger),
			tscnode.WithHostOptions(fshost.WithReadCacheSize(c.readCacheSize)),
		}
		if c.fs != nil {
			backendOptions = append(backendOptions, tscnode.WithFs(c.fs))
		}
		if c.typescript != "" {
			backendOptions = append(backendOptions, tscnode.WithTypeScript(c.typescript))
		}
		c.backend = tscnode.New(backendOptions...)
	}
	return c
}

// Close releases resources held by the backend.
func (c *Compiler) Close() error {
	if closer, ok := c.backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

var defaultCompiler = sync.OnceValue(func() *Compiler {
	return New()
})

// Compile compiles sources with the default Compiler. options may be nil.
func Compile(sources map[string]string, options *Options) (*Result, error) {
	return defaultCompiler().Compile(sources, options)
}

// Compile compiles sources. Problems in the sources are reported through
// Result.Error; the returned error is reserved for key collisions, invalid
// passthrough patterns and compiler configuration errors.
func (c *Compiler) Compile(sources map[string]string, options *Options) (*Result, error) {
	t1 := time.Now()
	if options == nil {
		options = &Options{}
	}

	store, err := vstore.NewFromSources(sources, vstore.WithAllowCollisions(options.AllowKeyCollisions))
	if err != nil {
		return nil, err
	}

	compilerOptions := tsc.MergeCompilerOptions(tsc.DefaultCompilerOptions(), options.CompilerOptions)
	next, err := c.backend.CreateCompilerHost(compilerOptions)
	if err != nil {
		return nil, err
	}
	host, err := vhost.New(next, c.backend, store,
		vhost.WithLogger(c.logger),
		vhost.WithWriteFile(options.OnWriteFile),
		vhost.WithAuxiliaryWrites(options.AuxiliaryWrites),
		vhost.WithPassthroughPatterns(options.PassthroughPatterns...),
	)
	if err != nil {
		return nil, err
	}

	result := &Result{
		JSFileMap:        store.JSFileMap(),
		TsDeclarationMap: store.TsDeclarationMap(),
		Auxiliary:        store.AuxiliaryMap(),
	}
	if store.Len() == 0 {
		return result, nil
	}

	program, err := c.backend.CreateProgram(store.SourceFileNames(), compilerOptions, host)
	if err != nil {
		return nil, err
	}
	result.EmitResult = program.Emit()

	var diagnostics []*tsc.Diagnostic
	diagnostics = append(diagnostics, c.backend.GetPreEmitDiagnostics(program)...)
	diagnostics = append(diagnostics, result.EmitResult.Diagnostics...)
	result.Diagnostics = diagnostics
	if len(diagnostics) > 0 {
		result.Error = newDiagnosticsError(store, diagnostics)
	}

	c.logger.Debug().
		Int("sources", store.Len()).
		Int("js", len(result.JSFileMap)).
		Int("declarations", len(result.TsDeclarationMap)).
		Int("diagnostics", len(diagnostics)).
		Dur("elapsed", time.Since(t1)).
		Msg("compiled")

	return result, nil
}
