// Package vstore holds the in-memory state of one compilation: the virtual
// sources, the identity map from virtual paths back to caller keys, and the
// outputs captured during emit.
package vstore

import (
	"sort"

	"github.com/dghubble/trie"

	"github.com/stackb/memcompile/pkg/vpath"
)

// Store is created per compilation and is not safe for concurrent use.
type Store struct {
	// sources maps virtual path -> source text.
	sources map[string]string
	// ids maps virtual path -> original caller key.
	ids map[string]string
	// dirs indexes the directories implied by virtual paths.
	dirs *trie.PathTrie

	jsFiles      map[string]string
	declarations map[string]string
	auxiliary    map[string]string

	allowCollisions bool
}

type Option func(*Store) *Store

// WithAllowCollisions makes Add overwrite an existing virtual path instead of
// failing with a KeyCollisionError.
func WithAllowCollisions(allow bool) Option {
	return func(s *Store) *Store {
		s.allowCollisions = allow
		return s
	}
}

// New creates an empty Store.
func New(options ...Option) *Store {
	s := &Store{
		sources:      make(map[string]string),
		ids:          make(map[string]string),
		dirs:         trie.NewPathTrie(),
		jsFiles:      make(map[string]string),
		declarations: make(map[string]string),
		auxiliary:    make(map[string]string),
	}
	for _, opt := range options {
		s = opt(s)
	}
	return s
}

// NewFromSources creates a Store holding every entry of sources. Keys are
// added in sorted order so collision handling does not depend on map
// iteration order.
func NewFromSources(sources map[string]string, options ...Option) (*Store, error) {
	s := New(options...)
	keys := make([]string, 0, len(sources))
	for key := range sources {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, err := s.Add(key, sources[key]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add registers text under the virtual path derived from key and records the
// key in the identity map. It returns the virtual path.
func (s *Store) Add(key, text string) (string, error) {
	p := vpath.Normalize(key)
	if existing, ok := s.ids[p]; ok && !s.allowCollisions {
		return "", &KeyCollisionError{Path: p, Existing: existing, Key: key}
	}
	s.ids[p] = key
	s.sources[p] = text
	s.indexDirectories(p)
	return p, nil
}

// Len returns the number of virtual sources.
func (s *Store) Len() int {
	return len(s.sources)
}

// SourceFileNames returns the virtual paths in sorted order.
func (s *Store) SourceFileNames() []string {
	names := make([]string, 0, len(s.sources))
	for name := range s.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasSource reports whether p is a virtual path.
func (s *Store) HasSource(p string) bool {
	_, ok := s.sources[p]
	return ok
}

// SourceText returns the text stored under virtual path p.
func (s *Store) SourceText(p string) (string, bool) {
	text, ok := s.sources[p]
	return text, ok
}

// OriginalKey returns the caller key a virtual path was derived from.
func (s *Store) OriginalKey(p string) (string, bool) {
	key, ok := s.ids[p]
	return key, ok
}

// DisplayName returns the original key for p, or p itself when it is not a
// virtual path.
func (s *Store) DisplayName(p string) string {
	if key, ok := s.ids[p]; ok {
		return key
	}
	return p
}

// OutputKey returns the key an emitted file is stored under: the original
// caller key of the source it came from, or the output path itself when no
// identity mapping exists.
func (s *Store) OutputKey(outputPath string) (string, vpath.OutputKind) {
	sourcePath, kind, ok := vpath.SourceKeyForOutput(outputPath)
	if !ok {
		return outputPath, kind
	}
	if key, ok := s.ids[sourcePath]; ok {
		return key, kind
	}
	return outputPath, kind
}

// PutJS records emitted code.
func (s *Store) PutJS(key, data string) {
	s.jsFiles[key] = data
}

// PutDeclaration records emitted declaration text.
func (s *Store) PutDeclaration(key, data string) {
	s.declarations[key] = data
}

// PutAuxiliary records an output that is neither code nor declarations.
func (s *Store) PutAuxiliary(fileName, data string) {
	s.auxiliary[fileName] = data
}

// JSFileMap returns the emitted code keyed by output key. The map is owned by
// the store.
func (s *Store) JSFileMap() map[string]string {
	return s.jsFiles
}

// TsDeclarationMap returns the emitted declarations keyed by output key.
func (s *Store) TsDeclarationMap() map[string]string {
	return s.declarations
}

// AuxiliaryMap returns captured auxiliary outputs keyed by output path.
func (s *Store) AuxiliaryMap() map[string]string {
	return s.auxiliary
}
