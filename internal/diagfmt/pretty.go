package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"glslcheck/internal/diag"
	"glslcheck/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	codeColor    = color.New(color.Bold)
	gutterColor  = color.New(color.FgHiBlack)
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
// Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writeHeader(w, fs, d.Severity, d.Code, d.Primary, d.Message, opts)
		writeContext(w, fs, d.Primary, opts)
		if opts.ShowNotes {
			for _, note := range d.Notes {
				fmt.Fprintf(w, "  note: %s\n", note.Msg)
				writeContext(w, fs, note.Span, opts)
			}
		}
	}
}

func writeHeader(w io.Writer, fs *source.FileSet, sev diag.Severity, code diag.Code, span source.Span, msg string, opts PrettyOpts) {
	sevText := sev.String()
	codeText := code.ID()
	if opts.Color {
		sevText = severityColor(sev).Sprint(sevText)
		codeText = codeColor.Sprint(codeText)
	}
	if loc, ok := formatLocation(fs, span, opts.PathMode); ok {
		fmt.Fprintf(w, "%s: %s %s: %s\n", loc, sevText, codeText, msg)
		return
	}
	// Диагностики окружения не привязаны к исходнику.
	fmt.Fprintf(w, "%s %s: %s\n", sevText, codeText, msg)
}

func writeContext(w io.Writer, fs *source.FileSet, span source.Span, opts PrettyOpts) {
	if opts.Context <= 0 || !hasLocation(fs, span) {
		return
	}
	file := fs.Get(span.File)
	if file == nil {
		return
	}
	start, _ := fs.Resolve(span)
	first := int(start.Line) - int(opts.Context) + 1
	if first < 1 {
		first = 1
	}
	for line := first; line <= int(start.Line); line++ {
		text := strings.TrimRight(file.GetLine(uint32(line)), "\n")
		gutter := fmt.Sprintf("%5d | ", line)
		if opts.Color {
			gutter = gutterColor.Sprint(gutter)
		}
		fmt.Fprintf(w, "%s%s\n", gutter, text)
	}
	writeUnderline(w, file, span, start, opts)
}

// writeUnderline рисует ^~~~ под первой строкой span.
func writeUnderline(w io.Writer, file *source.File, span source.Span, start source.LineCol, opts PrettyOpts) {
	lineText := strings.TrimRight(file.GetLine(start.Line), "\n")
	col := int(start.Col)
	if col < 1 {
		col = 1
	}
	if col > len(lineText)+1 {
		col = len(lineText) + 1
	}
	// Ширина префикса в экранных колонках, табы и широкие руны учтены.
	pad := runewidth.StringWidth(lineText[:col-1])

	length := int(span.Len())
	remain := len(lineText) - (col - 1)
	if length > remain {
		length = remain
	}
	if length < 1 {
		length = 1
	}
	marker := "^" + strings.Repeat("~", length-1)
	if opts.Color {
		marker = errorColor.Sprint(marker)
	}
	fmt.Fprintf(w, "%s%s%s\n", strings.Repeat(" ", 8), strings.Repeat(" ", pad), marker)
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	default:
		return infoColor
	}
}

func hasLocation(fs *source.FileSet, span source.Span) bool {
	if fs == nil || fs.Len() == 0 || int(span.File) >= fs.Len() {
		return false
	}
	if span.File == 0 && span.Empty() && span.Start == 0 {
		return false
	}
	return true
}

func formatLocation(fs *source.FileSet, span source.Span, mode PathMode) (string, bool) {
	if !hasLocation(fs, span) {
		return "", false
	}
	file := fs.Get(span.File)
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", formatPath(file, fs, mode), start.Line, start.Col), true
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", "")
	}
}
