package tsc

import (
	"path"
	"strings"
)

// IsDeclarationFileName reports whether fileName names a declaration file
// (.d.ts, .d.mts, .d.cts).
func IsDeclarationFileName(fileName string) bool {
	return strings.HasSuffix(fileName, ".d.ts") ||
		strings.HasSuffix(fileName, ".d.mts") ||
		strings.HasSuffix(fileName, ".d.cts")
}

// JSOutputExtension returns the extension of the JavaScript emitted for a
// source file.
func JSOutputExtension(fileName string) string {
	switch {
	case strings.HasSuffix(fileName, ".mts"):
		return ".mjs"
	case strings.HasSuffix(fileName, ".cts"):
		return ".cjs"
	default:
		return ".js"
	}
}

// RemoveFileExtension strips the final extension, treating declaration
// suffixes as a single extension.
func RemoveFileExtension(fileName string) string {
	for _, ext := range []string{".d.ts", ".d.mts", ".d.cts"} {
		if strings.HasSuffix(fileName, ext) {
			return strings.TrimSuffix(fileName, ext)
		}
	}
	if ext := path.Ext(fileName); ext != "" && !strings.Contains(ext, "/") {
		return strings.TrimSuffix(fileName, ext)
	}
	return fileName
}

// DefaultLibFileName returns the bundled library declaration file TypeScript
// loads for a target.
func DefaultLibFileName(target ScriptTarget) string {
	switch target {
	case ES3, ES5:
		return "lib.d.ts"
	case ES2015:
		return "lib.es6.d.ts"
	case ESNext:
		return "lib.esnext.full.d.ts"
	}
	if target > ES2015 && target <= ES2024 {
		return "lib." + strings.ToLower(target.String()) + ".full.d.ts"
	}
	return "lib.d.ts"
}
