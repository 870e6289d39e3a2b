// Package tscnode is a tsc.Compiler backed by the TypeScript compiler running
// under node. Each program is built by a short-lived node process that loads
// typescript.js and performs its file reads through the Go host, so programs
// are fully type-checked and can emit declarations.
package tscnode

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/amenzhinsky/go-memexec"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/stackb/memcompile/pkg/fshost"
	"github.com/stackb/memcompile/pkg/tsc"
)

const driverFileName = "tscnode_driver.js"

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

// WithNodeExe runs the given node executable image from memory instead of
// looking node up on the PATH.
func WithNodeExe(exe []byte) Option {
	return func(c *Compiler) *Compiler {
		c.nodeExe = exe
		return c
	}
}

// WithNodePath sets the node executable, a path or a name looked up on the
// PATH.
func WithNodePath(path string) Option {
	return func(c *Compiler) *Compiler {
		c.nodePath = path
		return c
	}
}

// WithTypeScript sets the typescript.js to load. See LookupTypeScript for the
// default.
func WithTypeScript(path string) Option {
	return func(c *Compiler) *Compiler {
		c.typescript = path
		return c
	}
}

// WithTimeout bounds the lifetime of a single compilation process.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Compiler) *Compiler {
		c.timeout = timeout
		return c
	}
}

var defaultOptions = []Option{
	WithLogger(zerolog.Nop()),
	WithNodePath("node"),
	WithTimeout(2 * time.Minute),
}

// Compiler implements tsc.Compiler. It is safe for concurrent use; every
// CreateProgram call runs its own node process.
type Compiler struct {
	logger      zerolog.Logger
	fs          afero.Fs
	hostOptions []fshost.Option
	nodeExe     []byte
	nodePath    string
	typescript  string
	timeout     time.Duration

	mu    sync.Mutex
	hosts map[string]*fshost.Host

	startOnce sync.Once
	startErr  error
	exe       *memexec.Exec
	node      string
	dir       string
}

// New creates a Compiler. Nothing is started until the first program is
// created.
func New(options ...Option) *Compiler {
	c := &Compiler{
		hosts: make(map[string]*fshost.Host),
	}
	for _, opt := range append(defaultOptions, options...) {
		c = opt(c)
	}
	return c
}

// Close releases the driver script and the in-memory node executable.
func (c *Compiler) Close() error {
	var err error
	if c.exe != nil {
		err = c.exe.Close()
		c.exe = nil
	}
	if c.dir != "" {
		if rmErr := os.RemoveAll(c.dir); err == nil {
			err = rmErr
		}
		c.dir = ""
	}
	return err
}

// start writes the driver script to a temporary directory and prepares the
// node executable.
func (c *Compiler) start() error {
	c.startOnce.Do(func() {
		t1 := time.Now()

		dir, err := os.MkdirTemp("", "tscnode")
		if err != nil {
			c.startErr = fmt.Errorf("creating driver dir: %w", err)
			return
		}
		c.dir = dir
		if err := os.WriteFile(filepath.Join(dir, driverFileName), []byte(driverJs), 0o644); err != nil {
			c.startErr = fmt.Errorf("writing %s: %w", driverFileName, err)
			return
		}

		if len(c.nodeExe) > 0 {
			exe, err := memexec.New(c.nodeExe)
			if err != nil {
				c.startErr = fmt.Errorf("loading node executable: %w", err)
				return
			}
			c.exe = exe
		} else {
			node, err := exec.LookPath(c.nodePath)
			if err != nil {
				c.startErr = status.Errorf(codes.FailedPrecondition, "node not found: %v", err)
				return
			}
			c.node = node
		}

		c.logger.Debug().
			Str("dir", dir).
			Bool("memexec", c.exe != nil).
			Dur("elapsed", time.Since(t1)).
			Msg("typescript driver ready")
	})
	return c.startErr
}

func (c *Compiler) command() *exec.Cmd {
	if c.exe != nil {
		return c.exe.Command(driverFileName)
	}
	return exec.Command(c.node, driverFileName)
}

// CreateCompilerHost implements part of the tsc.Compiler interface. Hosts
// resolve relative names against the working directory unless
// WithHostOptions says otherwise.
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
	if wd, err := os.Getwd(); err == nil {
		hostOptions = append(hostOptions, fshost.WithCurrentDirectory(wd))
	}
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

// CreateProgram implements part of the tsc.Compiler interface. The program
// is checked and its outputs are collected before it returns; they reach the
// host when Emit is called.
func (c *Compiler) CreateProgram(rootNames []string, options tsc.CompilerOptions, host tsc.CompilerHost) (tsc.Program, error) {
	raw, err := compilerOptionsJSON(options)
	if err != nil {
		return nil, err
	}
	listEmittedFiles, err := options.Bool(tsc.OptionListEmittedFiles)
	if err != nil {
		return nil, err
	}

	typescript := c.typescript
	if typescript == "" {
		if typescript, err = LookupTypeScript(host.GetCurrentDirectory()); err != nil {
			return nil, err
		}
	}
	if abs, err := filepath.Abs(typescript); err == nil {
		typescript = abs
	}
	if err := c.start(); err != nil {
		return nil, err
	}

	cmd := c.command()
	cmd.Dir = c.dir
	cmd.Env = []string{fmt.Sprintf("%s=%s", EnvTypeScript, typescript)}

	p := newProgram(rootNames, options, host, c, c.logger)
	p.listEmittedFiles = listEmittedFiles
	if err := p.run(cmd, &compileRequest{
		RootNames:                 rootNames,
		Options:                   raw,
		CurrentDirectory:          host.GetCurrentDirectory(),
		NewLine:                   host.GetNewLine(),
		UseCaseSensitiveFileNames: host.UseCaseSensitiveFileNames(),
	}, c.timeout); err != nil {
		return nil, err
	}
	return p, nil
}

// GetPreEmitDiagnostics implements part of the tsc.Compiler interface.
func (c *Compiler) GetPreEmitDiagnostics(program tsc.Program) []*tsc.Diagnostic {
	return tsc.PreEmitDiagnostics(program)
}
