package tscnode

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/stackb/memcompile/pkg/procutil"
	"github.com/stackb/memcompile/pkg/tsc"
)

// compileRequest is the first line sent to the driver.
type compileRequest struct {
	RootNames                 []string       `json:"rootNames"`
	Options                   map[string]any `json:"options"`
	CurrentDirectory          string         `json:"currentDirectory"`
	NewLine                   string         `json:"newLine"`
	UseCaseSensitiveFileNames bool           `json:"useCaseSensitiveFileNames"`
}

// message is a line from the driver: a host call, or the final "done" or
// "fail".
type message struct {
	Method          string          `json:"method"`
	FileName        string          `json:"fileName"`
	LanguageVersion int             `json:"languageVersion"`
	Version         string          `json:"version"`
	Error           string          `json:"error"`
	Result          json.RawMessage `json:"result"`
}

// reply answers a host call. A nil Result is sent as null.
type reply struct {
	Result any    `json:"result"`
	Error  string `json:"error,omitempty"`
}

type compileResult struct {
	SourceFileNames      []string          `json:"sourceFileNames"`
	OptionsDiagnostics   []*wireDiagnostic `json:"optionsDiagnostics"`
	GlobalDiagnostics    []*wireDiagnostic `json:"globalDiagnostics"`
	SyntacticDiagnostics []*wireDiagnostic `json:"syntacticDiagnostics"`
	SemanticDiagnostics  []*wireDiagnostic `json:"semanticDiagnostics"`
	EmitSkipped          bool              `json:"emitSkipped"`
	EmitDiagnostics      []*wireDiagnostic `json:"emitDiagnostics"`
	Outputs              []*output         `json:"outputs"`
}

// wireDiagnostic positions are byte offsets into the file text. FileText is
// only set for files the driver read itself.
type wireDiagnostic struct {
	FileName    string  `json:"fileName"`
	FileText    *string `json:"fileText"`
	Start       int     `json:"start"`
	Length      int     `json:"length"`
	Category    int     `json:"category"`
	Code        int     `json:"code"`
	MessageText string  `json:"messageText"`
}

type output struct {
	FileName           string `json:"fileName"`
	Text               string `json:"text"`
	WriteByteOrderMark bool   `json:"writeByteOrderMark"`
}

// program implements tsc.Program.
type program struct {
	logger   zerolog.Logger
	roots    []string
	options  tsc.CompilerOptions
	host     tsc.CompilerHost
	compiler tsc.Compiler

	files  []*tsc.SourceFile
	byName map[string]*tsc.SourceFile

	optionsDiagnostics []*tsc.Diagnostic
	global             []*tsc.Diagnostic
	syntactic          []*tsc.Diagnostic
	semantic           []*tsc.Diagnostic

	emitSkipped      bool
	emitDiagnostics  []*tsc.Diagnostic
	outputs          []*output
	listEmittedFiles bool
}

func newProgram(roots []string, options tsc.CompilerOptions, host tsc.CompilerHost, compiler tsc.Compiler, logger zerolog.Logger) *program {
	return &program{
		logger:   logger,
		roots:    roots,
		options:  options,
		host:     host,
		compiler: compiler,
		byName:   make(map[string]*tsc.SourceFile),
	}
}

// run starts the driver, serves its host calls and records the result.
func (p *program) run(cmd *exec.Cmd, req *compileRequest, timeout time.Duration) error {
	t1 := time.Now()

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return status.Errorf(codes.FailedPrecondition, "starting typescript driver: %v", err)
	}
	if timeout > 0 {
		timer := time.AfterFunc(timeout, func() {
			cmd.Process.Kill()
		})
		defer timer.Stop()
	}

	result, serveErr := p.session(stdin, stdout, req)
	stdin.Close()
	if serveErr != nil {
		cmd.Process.Kill()
	}
	waitErr := cmd.Wait()

	if serveErr != nil {
		return status.Errorf(codes.Internal, "typescript driver: %v%s", serveErr, stderrSuffix(&stderr))
	}
	if waitErr != nil {
		return status.Errorf(codes.Internal, "typescript driver exited with code %d%s", procutil.ExitCode(waitErr), stderrSuffix(&stderr))
	}

	p.apply(result)

	p.logger.Debug().
		Int("roots", len(p.roots)).
		Int("files", len(p.files)).
		Int("outputs", len(p.outputs)).
		Dur("elapsed", time.Since(t1)).
		Msg("program created")

	return nil
}

func stderrSuffix(stderr *bytes.Buffer) string {
	if s := strings.TrimSpace(stderr.String()); s != "" {
		return ": " + s
	}
	return ""
}

// session sends req and serves host calls until the driver reports a result.
func (p *program) session(w io.Writer, r io.Reader, req *compileRequest) (*compileResult, error) {
	enc := json.NewEncoder(w)
	if err := enc.Encode(req); err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	in := bufio.NewReader(r)
	for {
		line, err := in.ReadBytes('\n')
		if err != nil && len(line) == 0 {
			return nil, fmt.Errorf("reading driver output: %w", err)
		}

		var msg message
		if err := json.Unmarshal(line, &msg); err != nil {
			return nil, fmt.Errorf("decoding driver message %q: %w", line, err)
		}

		switch msg.Method {
		case "done":
			var result compileResult
			if err := json.Unmarshal(msg.Result, &result); err != nil {
				return nil, fmt.Errorf("decoding result: %w", err)
			}
			p.logger.Debug().Str("typescript", msg.Version).Msg("driver done")
			return &result, nil
		case "fail":
			return nil, fmt.Errorf("%s", msg.Error)
		}

		if err := enc.Encode(p.answer(&msg)); err != nil {
			return nil, fmt.Errorf("sending reply: %w", err)
		}
	}
}

// answer performs a host call on behalf of the driver.
func (p *program) answer(msg *message) reply {
	switch msg.Method {
	case "fileExists":
		return reply{Result: p.host.FileExists(msg.FileName)}
	case "readFile":
		if text, ok := p.host.ReadFile(msg.FileName); ok {
			return reply{Result: text}
		}
		return reply{}
	case "getSourceFile":
		file := p.host.GetSourceFile(msg.FileName, tsc.ScriptTarget(msg.LanguageVersion))
		if file == nil {
			return reply{}
		}
		p.byName[msg.FileName] = file
		return reply{Result: file.Text}
	case "directoryExists":
		return reply{Result: p.host.DirectoryExists(msg.FileName)}
	case "getDirectories":
		dirs := p.host.GetDirectories(msg.FileName)
		if dirs == nil {
			dirs = []string{}
		}
		return reply{Result: dirs}
	default:
		return reply{Error: fmt.Sprintf("unknown host call %q", msg.Method)}
	}
}

func (p *program) apply(result *compileResult) {
	for _, name := range result.SourceFileNames {
		if file, ok := p.byName[name]; ok {
			p.files = append(p.files, file)
		}
	}
	p.optionsDiagnostics = p.diagnostics(result.OptionsDiagnostics)
	p.global = p.diagnostics(result.GlobalDiagnostics)
	p.syntactic = p.diagnostics(result.SyntacticDiagnostics)
	p.semantic = p.diagnostics(result.SemanticDiagnostics)
	p.emitSkipped = result.EmitSkipped
	p.emitDiagnostics = p.diagnostics(result.EmitDiagnostics)
	p.outputs = result.Outputs
}

func (p *program) diagnostics(wire []*wireDiagnostic) []*tsc.Diagnostic {
	if len(wire) == 0 {
		return nil
	}
	diagnostics := make([]*tsc.Diagnostic, len(wire))
	for i, d := range wire {
		diagnostics[i] = &tsc.Diagnostic{
			File:        p.diagnosticFile(d),
			Start:       d.Start,
			Length:      d.Length,
			Category:    tsc.DiagnosticCategory(d.Category),
			Code:        d.Code,
			MessageText: d.MessageText,
		}
	}
	return diagnostics
}

// diagnosticFile returns the file a diagnostic points into, nil when it has
// none.
func (p *program) diagnosticFile(d *wireDiagnostic) *tsc.SourceFile {
	if d.FileName == "" {
		return nil
	}
	if file, ok := p.byName[d.FileName]; ok {
		return file
	}
	target, _ := p.options.Target()
	var file *tsc.SourceFile
	if d.FileText != nil {
		file = p.compiler.CreateSourceFile(d.FileName, *d.FileText, target)
	} else {
		file = p.host.GetSourceFile(d.FileName, target)
	}
	if file != nil {
		p.byName[d.FileName] = file
	}
	return file
}

// Emit implements part of the tsc.Program interface. Outputs are written in
// the order the compiler produced them.
func (p *program) Emit() *tsc.EmitResult {
	result := &tsc.EmitResult{
		EmitSkipped: p.emitSkipped,
		Diagnostics: append([]*tsc.Diagnostic(nil), p.emitDiagnostics...),
	}
	for _, out := range p.outputs {
		if err := p.host.WriteFile(out.FileName, out.Text, out.WriteByteOrderMark); err != nil {
			result.Diagnostics = append(result.Diagnostics, tsc.NewGlobalDiagnostic(tsc.CategoryError, tsc.CodeCouldNotWrite,
				"Could not write file '%s': %s.", out.FileName, err))
			continue
		}
		if p.listEmittedFiles {
			result.EmittedFiles = append(result.EmittedFiles, out.FileName)
		}
	}
	return result
}

// RootFileNames implements part of the tsc.Program interface.
func (p *program) RootFileNames() []string {
	return p.roots
}

// SourceFiles implements part of the tsc.Program interface. Files of the
// bundled TypeScript library are not included.
func (p *program) SourceFiles() []*tsc.SourceFile {
	return p.files
}

// SourceFile implements part of the tsc.Program interface.
func (p *program) SourceFile(fileName string) *tsc.SourceFile {
	return p.byName[fileName]
}

// Options implements part of the tsc.Program interface.
func (p *program) Options() tsc.CompilerOptions {
	return p.options
}

// OptionsDiagnostics implements part of the tsc.Program interface.
func (p *program) OptionsDiagnostics() []*tsc.Diagnostic {
	return p.optionsDiagnostics
}

// GlobalDiagnostics implements part of the tsc.Program interface.
func (p *program) GlobalDiagnostics() []*tsc.Diagnostic {
	return p.global
}

// SyntacticDiagnostics implements part of the tsc.Program interface.
func (p *program) SyntacticDiagnostics() []*tsc.Diagnostic {
	return p.syntactic
}

// SemanticDiagnostics implements part of the tsc.Program interface.
func (p *program) SemanticDiagnostics() []*tsc.Diagnostic {
	return p.semantic
}
