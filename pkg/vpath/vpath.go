// Package vpath turns caller supplied keys into virtual paths the compiler
// accepts as module specifiers, and maps emitted output paths back to the
// virtual path of the source that produced them.
package vpath

import "regexp"

// DefaultExtension is appended to keys that lack a compilable extension.
const DefaultExtension = ".ts"

var (
	backslashesRe  = regexp.MustCompile(`\\+`)
	compilableRe   = regexp.MustCompile(`\.ts$`)
	jsOutputRe     = regexp.MustCompile(`\.js$`)
	declarationsRe = regexp.MustCompile(`\.d\.ts$`)
)

// OutputKind classifies an emitted file by its name.
type OutputKind int

const (
	// OutputOther is anything that is neither code nor declarations, such as
	// source maps and build info.
	OutputOther OutputKind = iota
	OutputJS
	OutputDeclaration
)

func (k OutputKind) String() string {
	switch k {
	case OutputJS:
		return "js"
	case OutputDeclaration:
		return "declaration"
	default:
		return "other"
	}
}

// ToSlash replaces every run of backslashes with a single forward slash.
func ToSlash(key string) string {
	return backslashesRe.ReplaceAllString(key, "/")
}

// IsCompilable reports whether p ends in the compilable source extension.
func IsCompilable(p string) bool {
	return compilableRe.MatchString(p)
}

// Normalize returns the virtual path for key: slash separated and ending in
// a compilable extension.
func Normalize(key string) string {
	p := ToSlash(key)
	if !IsCompilable(p) {
		p += DefaultExtension
	}
	return p
}

// ClassifyOutput reports what kind of output fileName is.
func ClassifyOutput(fileName string) OutputKind {
	switch {
	case jsOutputRe.MatchString(fileName):
		return OutputJS
	case declarationsRe.MatchString(fileName):
		return OutputDeclaration
	default:
		return OutputOther
	}
}

// SourceKeyForOutput returns the virtual path of the source an output was
// emitted from, by swapping the output suffix for the compilable one. The
// second result is false for outputs that are neither code nor declarations.
func SourceKeyForOutput(fileName string) (string, OutputKind, bool) {
	switch kind := ClassifyOutput(fileName); kind {
	case OutputJS:
		return jsOutputRe.ReplaceAllString(fileName, DefaultExtension), kind, true
	case OutputDeclaration:
		return declarationsRe.ReplaceAllString(fileName, DefaultExtension), kind, true
	default:
		return "", kind, false
	}
}
