package memcompile

import (
	"fmt"
	"strings"

	"github.com/stackb/memcompile/pkg/tsc"
	"github.com/stackb/memcompile/pkg/vstore"
)

// DiagnosticsError carries the formatted diagnostics of a compilation.
type DiagnosticsError struct {
	Messages []string
}

func newDiagnosticsError(store *vstore.Store, diagnostics []*tsc.Diagnostic) *DiagnosticsError {
	messages := make([]string, len(diagnostics))
	for i, d := range diagnostics {
		messages[i] = formatDiagnostic(store, d)
	}
	return &DiagnosticsError{Messages: messages}
}

// Error implements the error interface.
func (e *DiagnosticsError) Error() string {
	return strings.Join(e.Messages, "\n")
}

// formatDiagnostic renders d as "<key> (<line>,<col>): <message>" with the
// caller's original key and 1-based positions, or as the bare message when d
// has no file.
func formatDiagnostic(store *vstore.Store, d *tsc.Diagnostic) string {
	message := d.Message()
	if d.File == nil {
		return message
	}
	line, character := d.File.LineAndCharacterOfPosition(d.Start)
	return fmt.Sprintf("%s (%d,%d): %s", store.DisplayName(d.File.FileName), line+1, character+1, message)
}
