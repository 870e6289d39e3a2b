package esbuildc

import (
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/stackb/memcompile/pkg/tsc"
)

const diagnosticSource = "esbuild"

func isResolutionMessage(msg api.Message) bool {
	return strings.HasPrefix(msg.Text, "Cannot find module")
}

// diagnosticFromMessage converts an esbuild message. Locations in the plugin
// namespace are mapped back onto the program's source files; notes become
// the message chain.
func (p *program) diagnosticFromMessage(msg api.Message, category tsc.DiagnosticCategory) *tsc.Diagnostic {
	d := &tsc.Diagnostic{
		Category:    category,
		Source:      diagnosticSource,
		MessageText: msg.Text,
	}
	if isResolutionMessage(msg) {
		d.Code = tsc.CodeCannotFindModule
		d.Source = ""
	}

	if len(msg.Notes) > 0 {
		chain := &tsc.DiagnosticMessageChain{
			MessageText: msg.Text,
			Category:    category,
			Code:        d.Code,
		}
		for _, note := range msg.Notes {
			chain.Next = append(chain.Next, &tsc.DiagnosticMessageChain{
				MessageText: note.Text,
				Category:    tsc.CategoryMessage,
			})
		}
		d.MessageChain = chain
	}

	if loc := msg.Location; loc != nil {
		if u, ok := p.byName[locationFileName(loc)]; ok {
			d.File = u.file
			d.Start = u.file.PositionOfLineAndCharacter(loc.Line-1, loc.Column)
			d.Length = loc.Length
		}
	}

	return d
}

func locationFileName(loc *api.Location) string {
	return strings.TrimPrefix(loc.File, namespace+":")
}
