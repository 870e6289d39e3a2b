// Package fshost implements tsc.CompilerHost on top of an afero.Fs. It is the
// "real" host the virtual host falls back to for files it does not own.
package fshost

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/stackb/memcompile/pkg/tsc"
)

const byteOrderMark = "\uFEFF"

// DefaultReadCacheSize is the number of file texts kept in the read cache.
const DefaultReadCacheSize = 256

type Option func(*Host) *Host

func WithLogger(logger zerolog.Logger) Option {
	return func(h *Host) *Host {
		h.logger = logger
		return h
	}
}

// WithCurrentDirectory sets the directory relative file names resolve
// against.
func WithCurrentDirectory(dir string) Option {
	return func(h *Host) *Host {
		h.cwd = filepath.ToSlash(dir)
		return h
	}
}

// WithReadCacheSize sets the read cache capacity. Zero disables caching.
func WithReadCacheSize(size int) Option {
	return func(h *Host) *Host {
		h.cacheSize = size
		return h
	}
}

func WithNewLine(newLine string) Option {
	return func(h *Host) *Host {
		h.newLine = newLine
		return h
	}
}

// WithLibDir sets the directory holding the bundled lib.*.d.ts files.
func WithLibDir(dir string) Option {
	return func(h *Host) *Host {
		h.libDir = filepath.ToSlash(dir)
		return h
	}
}

func WithCaseSensitiveFileNames(caseSensitive bool) Option {
	return func(h *Host) *Host {
		h.caseSensitive = caseSensitive
		return h
	}
}

var defaultOptions = []Option{
	WithLogger(zerolog.Nop()),
	WithReadCacheSize(DefaultReadCacheSize),
	WithNewLine("\n"),
	WithCaseSensitiveFileNames(true),
}

type cachedFile struct {
	size    int64
	modTime time.Time
	text    string
}

// Host is a tsc.CompilerHost backed by an afero.Fs. It is safe for concurrent
// use.
type Host struct {
	fs            afero.Fs
	logger        zerolog.Logger
	cwd           string
	libDir        string
	newLine       string
	caseSensitive bool

	cacheSize int
	cache     *lru.Cache[string, cachedFile]
	hits      atomic.Int64
	misses    atomic.Int64
}

// New creates a Host over fs.
func New(fs afero.Fs, options ...Option) (*Host, error) {
	h := &Host{fs: fs}
	for _, opt := range append(defaultOptions, options...) {
		h = opt(h)
	}
	if h.cacheSize > 0 {
		cache, err := lru.New[string, cachedFile](h.cacheSize)
		if err != nil {
			return nil, err
		}
		h.cache = cache
	}
	return h, nil
}

// NewOsHost creates a Host over the operating system filesystem.
func NewOsHost(options ...Option) (*Host, error) {
	return New(afero.NewOsFs(), options...)
}

// Fs returns the underlying filesystem.
func (h *Host) Fs() afero.Fs {
	return h.fs
}

// CacheStats returns the read cache hit and miss counts.
func (h *Host) CacheStats() (hits, misses int64) {
	return h.hits.Load(), h.misses.Load()
}

func (h *Host) resolve(fileName string) string {
	name := filepath.ToSlash(fileName)
	if h.cwd != "" && !path.IsAbs(name) {
		name = path.Join(h.cwd, name)
	}
	return filepath.FromSlash(name)
}

// FileExists implements part of the tsc.CompilerHost interface.
func (h *Host) FileExists(fileName string) bool {
	info, err := h.fs.Stat(h.resolve(fileName))
	return err == nil && !info.IsDir()
}

// ReadFile implements part of the tsc.CompilerHost interface.
func (h *Host) ReadFile(fileName string) (string, bool) {
	name := h.resolve(fileName)
	info, err := h.fs.Stat(name)
	if err != nil || info.IsDir() {
		return "", false
	}

	if h.cache != nil {
		if cached, ok := h.cache.Get(name); ok && cached.size == info.Size() && cached.modTime.Equal(info.ModTime()) {
			h.hits.Add(1)
			return cached.text, true
		}
		h.misses.Add(1)
	}

	data, err := afero.ReadFile(h.fs, name)
	if err != nil {
		h.logger.Debug().Err(err).Str("file", name).Msg("read failed")
		return "", false
	}
	text := strings.TrimPrefix(string(data), byteOrderMark)

	if h.cache != nil {
		h.cache.Add(name, cachedFile{size: info.Size(), modTime: info.ModTime(), text: text})
	}
	return text, true
}

// WriteFile implements part of the tsc.CompilerHost interface.
func (h *Host) WriteFile(fileName, data string, writeByteOrderMark bool) error {
	name := h.resolve(fileName)
	if dir := filepath.Dir(name); dir != "." {
		if err := h.fs.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}
	if writeByteOrderMark {
		data = byteOrderMark + data
	}
	if err := afero.WriteFile(h.fs, name, []byte(data), 0o644); err != nil {
		return err
	}
	if h.cache != nil {
		h.cache.Remove(name)
	}
	h.logger.Debug().Str("file", name).Int("bytes", len(data)).Msg("wrote file")
	return nil
}

// GetSourceFile implements part of the tsc.CompilerHost interface.
func (h *Host) GetSourceFile(fileName string, languageVersion tsc.ScriptTarget) *tsc.SourceFile {
	text, ok := h.ReadFile(fileName)
	if !ok {
		return nil
	}
	return tsc.NewSourceFile(fileName, text, languageVersion)
}

// DirectoryExists implements part of the tsc.CompilerHost interface.
func (h *Host) DirectoryExists(directoryName string) bool {
	ok, err := afero.DirExists(h.fs, h.resolve(directoryName))
	return err == nil && ok
}

// GetDirectories implements part of the tsc.CompilerHost interface.
func (h *Host) GetDirectories(dir string) []string {
	infos, err := afero.ReadDir(h.fs, h.resolve(dir))
	if err != nil {
		return nil
	}
	var dirs []string
	for _, info := range infos {
		if info.IsDir() {
			dirs = append(dirs, info.Name())
		}
	}
	return dirs
}

// GetCurrentDirectory implements part of the tsc.CompilerHost interface.
func (h *Host) GetCurrentDirectory() string {
	return h.cwd
}

// GetDefaultLibFileName implements part of the tsc.CompilerHost interface.
func (h *Host) GetDefaultLibFileName(options tsc.CompilerOptions) string {
	target, err := options.Target()
	if err != nil {
		target = tsc.ES5
	}
	return path.Join(h.libDir, tsc.DefaultLibFileName(target))
}

// GetCanonicalFileName implements part of the tsc.CompilerHost interface.
func (h *Host) GetCanonicalFileName(fileName string) string {
	if h.caseSensitive {
		return fileName
	}
	return strings.ToLower(fileName)
}

// UseCaseSensitiveFileNames implements part of the tsc.CompilerHost interface.
func (h *Host) UseCaseSensitiveFileNames() bool {
	return h.caseSensitive
}

// GetNewLine implements part of the tsc.CompilerHost interface.
func (h *Host) GetNewLine() string {
	return h.newLine
}
