package position

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// SpanHighlighter renders spans of one source file with ASCII carets.
type SpanHighlighter struct {
	file *SourceFile
	// Context is the number of lines shown around a span.
	Context int
}

// NewSpanHighlighter creates a highlighter for file with no context lines.
func NewSpanHighlighter(file *SourceFile) *SpanHighlighter {
	return &SpanHighlighter{file: file}
}

// HighlightSpan returns the lines of span with every covered column marked.
func (sh *SpanHighlighter) HighlightSpan(span Span) string {
	if !span.IsValid() {
		return "Invalid span"
	}
	if sh.file == nil || (span.Start.Filename != "" && span.Start.Filename != sh.file.Filename) {
		return fmt.Sprintf("File not found: %s", span.Start.Filename)
	}

	var result strings.Builder

	startLine := max(1, span.Start.Line-sh.Context)
	endLine := min(len(sh.file.Lines), span.End.Line+sh.Context)

	for lineNum := startLine; lineNum <= endLine; lineNum++ {
		line := sh.file.GetLine(lineNum)
		fmt.Fprintf(&result, "%4d | %s\n", lineNum, line)

		if lineNum >= span.Start.Line && lineNum <= span.End.Line {
			sh.addHighlighting(&result, lineNum, line, span)
		}
	}

	return result.String()
}

func (sh *SpanHighlighter) addHighlighting(result *strings.Builder, lineNum int, line string, span Span) {
	lineEnd := utf8.RuneCountInString(line) + 1

	startCol, endCol := 1, lineEnd
	if lineNum == span.Start.Line {
		startCol = span.Start.Column
	}
	if lineNum == span.End.Line {
		endCol = span.End.Column
	}
	if endCol <= startCol {
		// a span ending at column 1 covers nothing on its last line
		return
	}

	result.WriteString("     | ")
	runes := []rune(line)
	for i := 1; i < startCol; i++ {
		if i <= len(runes) && runes[i-1] == '\t' {
			result.WriteByte('\t')
		} else {
			result.WriteByte(' ')
		}
	}
	result.WriteString(strings.Repeat("^", max(1, min(endCol, lineEnd)-startCol)))
	result.WriteByte('\n')
}

// HighlightFirstLine is HighlightSpan clipped to the first line of span.
func (sh *SpanHighlighter) HighlightFirstLine(span Span) string {
	if span.IsValid() && sh.file != nil && span.End.Line > span.Start.Line {
		line := sh.file.GetLine(span.Start.Line)
		span.End = Position{
			Filename: span.Start.Filename,
			Line:     span.Start.Line,
			Column:   utf8.RuneCountInString(line) + 1,
			Offset:   span.Start.Offset + len(line) - (span.Start.Column - 1),
		}
	}
	return sh.HighlightSpan(span)
}
