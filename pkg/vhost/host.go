// Package vhost implements a tsc.CompilerHost that serves files from a
// vstore.Store and captures emitted outputs into it. Operations on paths the
// store does not know about fall through to a wrapped host.
package vhost

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/stackb/memcompile/pkg/tsc"
	"github.com/stackb/memcompile/pkg/vpath"
	"github.com/stackb/memcompile/pkg/vstore"
)

// WriteFileFunc is offered every write before it is classified. Returning
// true marks the write as handled.
type WriteFileFunc func(store *vstore.Store, fileName, data string) bool

// AuxiliaryWrites selects what happens to outputs that are neither code nor
// declarations (source maps, build info).
type AuxiliaryWrites int

const (
	// AuxiliaryPassthrough hands them to the wrapped host.
	AuxiliaryPassthrough AuxiliaryWrites = iota
	// AuxiliaryCapture keeps them in the store.
	AuxiliaryCapture
	// AuxiliaryDiscard drops them.
	AuxiliaryDiscard
)

func (a AuxiliaryWrites) String() string {
	switch a {
	case AuxiliaryCapture:
		return "capture"
	case AuxiliaryDiscard:
		return "discard"
	default:
		return "passthrough"
	}
}

// Option configures a Host.
type Option func(*Host) *Host

// WithLogger sets the logger that records reads, fallbacks and write
// classification.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Host) *Host {
		h.logger = logger
		return h
	}
}

// WithWriteFile installs fn as the first stop for every write. When fn
// returns true the write is considered handled and is not classified or
// stored.
func WithWriteFile(fn WriteFileFunc) Option {
	return func(h *Host) *Host {
		h.onWriteFile = fn
		return h
	}
}

// WithAuxiliaryWrites selects what happens to outputs that are neither
// JavaScript nor declarations. The default is AuxiliaryPassthrough.
func WithAuxiliaryWrites(mode AuxiliaryWrites) Option {
	return func(h *Host) *Host {
		h.auxiliary = mode
		return h
	}
}

// WithPassthroughPatterns restricts passthrough to auxiliary outputs matching
// one of the doublestar patterns; other auxiliary outputs are captured.
func WithPassthroughPatterns(patterns ...string) Option {
	return func(h *Host) *Host {
		h.passthrough = append(h.passthrough, patterns...)
		return h
	}
}

// Host decorates a tsc.CompilerHost. It holds the store for the duration of
// one compilation but does not own it.
type Host struct {
	next     tsc.CompilerHost
	compiler tsc.Compiler
	store    *vstore.Store
	logger   zerolog.Logger

	onWriteFile WriteFileFunc
	auxiliary   AuxiliaryWrites
	passthrough []string
}

// New wraps next. compiler constructs the source units handed out by
// GetSourceFile.
func New(next tsc.CompilerHost, compiler tsc.Compiler, store *vstore.Store, options ...Option) (*Host, error) {
	h := &Host{
		next:     next,
		compiler: compiler,
		store:    store,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		h = opt(h)
	}
	for _, pattern := range h.passthrough {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid passthrough pattern %q", pattern)
		}
	}
	return h, nil
}

// Store returns the store the host reads from and writes to.
func (h *Host) Store() *vstore.Store {
	return h.store
}

// FileExists implements part of the tsc.CompilerHost interface.
func (h *Host) FileExists(fileName string) bool {
	if h.store.HasSource(fileName) {
		return true
	}
	return h.next.FileExists(fileName)
}

// ReadFile implements part of the tsc.CompilerHost interface.
func (h *Host) ReadFile(fileName string) (string, bool) {
	if text, ok := h.store.SourceText(fileName); ok {
		return text, true
	}
	h.logger.Debug().Str("file", fileName).Msg("reading from fallback host")
	return h.next.ReadFile(fileName)
}

// GetSourceFile implements part of the tsc.CompilerHost interface.
func (h *Host) GetSourceFile(fileName string, languageVersion tsc.ScriptTarget) *tsc.SourceFile {
	text, ok := h.ReadFile(fileName)
	if !ok {
		return nil
	}
	return h.compiler.CreateSourceFile(fileName, text, languageVersion)
}

// WriteFile implements part of the tsc.CompilerHost interface.
func (h *Host) WriteFile(fileName, data string, writeByteOrderMark bool) error {
	if h.onWriteFile != nil && h.onWriteFile(h.store, fileName, data) {
		h.logger.Debug().Str("file", fileName).Msg("write handled by interceptor")
		return nil
	}

	key, kind := h.store.OutputKey(fileName)
	switch kind {
	case vpath.OutputJS:
		h.store.PutJS(key, data)
	case vpath.OutputDeclaration:
		h.store.PutDeclaration(key, data)
	default:
		return h.writeAuxiliary(fileName, data, writeByteOrderMark)
	}
	h.logger.Debug().Str("file", fileName).Str("key", key).Stringer("kind", kind).Msg("captured output")
	return nil
}

func (h *Host) writeAuxiliary(fileName, data string, writeByteOrderMark bool) error {
	mode := h.auxiliary
	if mode == AuxiliaryPassthrough && len(h.passthrough) > 0 && !h.matchesPassthrough(fileName) {
		mode = AuxiliaryCapture
	}

	switch mode {
	case AuxiliaryCapture:
		h.store.PutAuxiliary(fileName, data)
		h.logger.Debug().Str("file", fileName).Msg("captured auxiliary output")
		return nil
	case AuxiliaryDiscard:
		h.logger.Debug().Str("file", fileName).Msg("discarded auxiliary output")
		return nil
	default:
		h.logger.Debug().Str("file", fileName).Msg("passing auxiliary output to fallback host")
		return h.next.WriteFile(fileName, data, writeByteOrderMark)
	}
}

func (h *Host) matchesPassthrough(fileName string) bool {
	for _, pattern := range h.passthrough {
		if ok, _ := doublestar.Match(pattern, fileName); ok {
			return true
		}
	}
	return false
}

// DirectoryExists implements part of the tsc.CompilerHost interface.
func (h *Host) DirectoryExists(directoryName string) bool {
	if h.store.DirectoryExists(directoryName) {
		return true
	}
	return h.next.DirectoryExists(directoryName)
}

// GetDirectories implements part of the tsc.CompilerHost interface. Virtual
// subdirectories are listed before real ones, without duplicates.
func (h *Host) GetDirectories(path string) []string {
	virtual := h.store.Directories(path)
	real := h.next.GetDirectories(path)
	if len(virtual) == 0 {
		return real
	}
	seen := make(map[string]bool, len(virtual))
	dirs := make([]string, 0, len(virtual)+len(real))
	for _, dir := range virtual {
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	for _, dir := range real {
		if !seen[dir] {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// GetCurrentDirectory implements part of the tsc.CompilerHost interface.
func (h *Host) GetCurrentDirectory() string {
	return h.next.GetCurrentDirectory()
}

// GetDefaultLibFileName implements part of the tsc.CompilerHost interface.
func (h *Host) GetDefaultLibFileName(options tsc.CompilerOptions) string {
	return h.next.GetDefaultLibFileName(options)
}

// GetCanonicalFileName implements part of the tsc.CompilerHost interface.
func (h *Host) GetCanonicalFileName(fileName string) string {
	return h.next.GetCanonicalFileName(fileName)
}

// UseCaseSensitiveFileNames implements part of the tsc.CompilerHost interface.
func (h *Host) UseCaseSensitiveFileNames() bool {
	return h.next.UseCaseSensitiveFileNames()
}

// GetNewLine implements part of the tsc.CompilerHost interface.
func (h *Host) GetNewLine() string {
	return h.next.GetNewLine()
}
