package tsc

import "sort"

// SourceFile is a source unit handed to the compiler. Positions are byte
// offsets into Text.
type SourceFile struct {
	FileName        string
	Text            string
	LanguageVersion ScriptTarget

	lineStarts []int
}

// NewSourceFile constructs a SourceFile and indexes its line starts.
func NewSourceFile(fileName, text string, languageVersion ScriptTarget) *SourceFile {
	return &SourceFile{
		FileName:        fileName,
		Text:            text,
		LanguageVersion: languageVersion,
		lineStarts:      computeLineStarts(text),
	}
}

// IsDeclarationFile reports whether the file is a .d.ts declaration file.
func (f *SourceFile) IsDeclarationFile() bool {
	return IsDeclarationFileName(f.FileName)
}

// LineStarts returns the byte offset at which every line begins.
func (f *SourceFile) LineStarts() []int {
	if f.lineStarts == nil {
		f.lineStarts = computeLineStarts(f.Text)
	}
	return f.lineStarts
}

// LineAndCharacterOfPosition converts a byte offset to a 0-based line and
// character. Offsets outside the text are clamped.
func (f *SourceFile) LineAndCharacterOfPosition(pos int) (line, character int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(f.Text) {
		pos = len(f.Text)
	}
	starts := f.LineStarts()
	line = sort.Search(len(starts), func(i int) bool { return starts[i] > pos }) - 1
	return line, pos - starts[line]
}

// PositionOfLineAndCharacter converts a 0-based line and character back to a
// byte offset.
func (f *SourceFile) PositionOfLineAndCharacter(line, character int) int {
	starts := f.LineStarts()
	if line < 0 {
		line = 0
	}
	if line >= len(starts) {
		return len(f.Text)
	}
	pos := starts[line] + character
	if pos > len(f.Text) {
		pos = len(f.Text)
	}
	return pos
}

func computeLineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			starts = append(starts, i+1)
		case '\n':
			starts = append(starts, i+1)
		}
	}
	return starts
}
