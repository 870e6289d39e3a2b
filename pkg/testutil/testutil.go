package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// FileSpec describes a file to create on a test filesystem.
type FileSpec struct {
	// Path is slash-separated.
	Path    string
	Content string
	// NotExist only creates the parent directory.
	NotExist bool
}

// NewMemFs returns an in-memory filesystem holding the given files.
func NewMemFs(t *testing.T, files ...FileSpec) afero.Fs {
	fs := afero.NewMemMapFs()
	MustWriteTestFiles(t, fs, files)
	return fs
}

func MustWriteTestFiles(t *testing.T, fs afero.Fs, files []FileSpec) []string {
	var filenames []string
	for _, file := range files {
		name := filepath.FromSlash(file.Path)
		if err := fs.MkdirAll(filepath.Dir(name), os.ModePerm); err != nil {
			t.Fatal(err)
		}
		if !file.NotExist {
			if err := afero.WriteFile(fs, name, []byte(file.Content), os.ModePerm); err != nil {
				t.Fatal(err)
			}
		}
		filenames = append(filenames, name)
	}
	return filenames
}

func MustReadTestFile(t *testing.T, fs afero.Fs, filename string) string {
	data, err := afero.ReadFile(fs, filepath.FromSlash(filename))
	if err != nil {
		ListFiles(t, fs, "/")
		t.Fatal("reading", filename, ":", err)
	}
	return string(data)
}

// MustWriteOsFile writes content to the slash-separated name under dir on
// the operating system filesystem and returns the file path.
func MustWriteOsFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	filename := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(filename), os.ModePerm); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return filename
}

// EqualError reports whether errors a and b are considered equal.
// They're equal if both are nil, or both are not nil and a.Error() == b.Error().
func EqualError(a, b error) bool {
	return a == nil && b == nil || a != nil && b != nil && a.Error() == b.Error()
}

// ExpectError asserts that the errors are equal.  Return value is true
// if the "want" argument is non-nil.
func ExpectError(t *testing.T, want, got error) bool {
	t.Helper()
	if !EqualError(want, got) {
		t.Fatal("errors: want:", want, "got:", got)
	}
	return want != nil
}

// ListFiles is a convenience debugging function to log the files under a given dir.
func ListFiles(t *testing.T, fs afero.Fs, dir string) {
	t.Log("Listing files under:", dir)
	if err := afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		t.Log(path)
		return nil
	}); err != nil {
		t.Log(err)
	}
}

// Paths returns the slash-separated names of all regular files on fs.
func Paths(t *testing.T, fs afero.Fs) []string {
	var paths []string
	if err := afero.Walk(fs, "/", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			paths = append(paths, filepath.ToSlash(path))
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	return paths
}
