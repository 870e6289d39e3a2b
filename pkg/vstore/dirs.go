package vstore

import (
	"path"
	"sort"

	"github.com/stackb/memcompile/pkg/vpath"
)

type dirEntry struct {
	subdirs map[string]struct{}
}

func (s *Store) dirEntry(dir string, create bool) *dirEntry {
	if v := s.dirs.Get(dir); v != nil {
		return v.(*dirEntry)
	}
	if !create {
		return nil
	}
	entry := &dirEntry{subdirs: make(map[string]struct{})}
	s.dirs.Put(dir, entry)
	return entry
}

// indexDirectories records every ancestor directory of the virtual path p.
func (s *Store) indexDirectories(p string) {
	child := path.Clean(p)
	isFile := true
	for {
		dir := path.Dir(child)
		if dir == child {
			return
		}
		entry := s.dirEntry(dir, true)
		if !isFile {
			entry.subdirs[path.Base(child)] = struct{}{}
		}
		if dir == "." || dir == "/" {
			return
		}
		child = dir
		isFile = false
	}
}

// DirectoryExists reports whether dir contains a virtual source, directly or
// in a subdirectory.
func (s *Store) DirectoryExists(dir string) bool {
	return s.dirEntry(cleanDir(dir), false) != nil
}

// Directories returns the sorted names of the virtual subdirectories of dir.
func (s *Store) Directories(dir string) []string {
	entry := s.dirEntry(cleanDir(dir), false)
	if entry == nil {
		return nil
	}
	names := make([]string, 0, len(entry.subdirs))
	for name := range entry.subdirs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func cleanDir(dir string) string {
	return path.Clean(vpath.ToSlash(dir))
}
