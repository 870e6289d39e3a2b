package tsc

import (
	"fmt"
	"strings"
)

// DiagnosticCategory is the severity of a Diagnostic.
type DiagnosticCategory int

const (
	CategoryWarning DiagnosticCategory = iota
	CategoryError
	CategorySuggestion
	CategoryMessage
)

func (c DiagnosticCategory) String() string {
	switch c {
	case CategoryWarning:
		return "warning"
	case CategoryError:
		return "error"
	case CategorySuggestion:
		return "suggestion"
	default:
		return "message"
	}
}

// Well-known diagnostic codes produced by the bindings in this module.
const (
	CodeCannotFindModule = 2307
	CodeCouldNotWrite    = 5033
	CodeFileNotFound     = 6053
)

// DiagnosticMessageChain is a message with nested elaborations.
type DiagnosticMessageChain struct {
	MessageText string
	Category    DiagnosticCategory
	Code        int
	Next        []*DiagnosticMessageChain
}

// Diagnostic is a problem reported by the compiler. File is nil for global
// diagnostics (option errors, missing root files).
type Diagnostic struct {
	File     *SourceFile
	Start    int
	Length   int
	Category DiagnosticCategory
	Code     int
	// Source names the component that produced the diagnostic, e.g. "esbuild".
	Source string
	// MessageText is used when MessageChain is nil.
	MessageText  string
	MessageChain *DiagnosticMessageChain
}

// NewGlobalDiagnostic creates a diagnostic with no file.
func NewGlobalDiagnostic(category DiagnosticCategory, code int, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Category:    category,
		Code:        code,
		MessageText: fmt.Sprintf(format, args...),
	}
}

// Message returns the flattened message text using "\n" as separator.
func (d *Diagnostic) Message() string {
	if d.MessageChain != nil {
		return FlattenDiagnosticMessageText(d.MessageChain, "\n")
	}
	return d.MessageText
}

func (d *Diagnostic) String() string {
	if d.File == nil {
		return fmt.Sprintf("%s: %s", d.label(), d.Message())
	}
	line, char := d.File.LineAndCharacterOfPosition(d.Start)
	return fmt.Sprintf("%s(%d,%d): %s: %s", d.File.FileName, line+1, char+1, d.label(), d.Message())
}

// label is "error TS2307", or "error esbuild" for uncoded diagnostics that
// name their source.
func (d *Diagnostic) label() string {
	if d.Code == 0 && d.Source != "" {
		return fmt.Sprintf("%s %s", d.Category, d.Source)
	}
	return fmt.Sprintf("%s TS%d", d.Category, d.Code)
}

// FlattenDiagnosticMessageText renders a message chain as plain text. Each
// nested entry starts on a new line, indented by two spaces per level.
func FlattenDiagnosticMessageText(chain *DiagnosticMessageChain, newLine string) string {
	var b strings.Builder
	flattenChain(&b, chain, newLine, 0)
	return b.String()
}

func flattenChain(b *strings.Builder, chain *DiagnosticMessageChain, newLine string, indent int) {
	if chain == nil {
		return
	}
	if indent > 0 {
		b.WriteString(newLine)
		b.WriteString(strings.Repeat("  ", indent))
	}
	b.WriteString(chain.MessageText)
	for _, next := range chain.Next {
		flattenChain(b, next, newLine, indent+1)
	}
}

// HasErrors reports whether any diagnostic is an error.
func HasErrors(diagnostics []*Diagnostic) bool {
	for _, d := range diagnostics {
		if d.Category == CategoryError {
			return true
		}
	}
	return false
}
