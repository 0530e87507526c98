package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiBold   = "\x1b[1m"
	ansiReset  = "\x1b[0m"
)

// ColorEnabled reports whether the writer is a terminal that can take ANSI
// colors. Pass the result to Render.
func ColorEnabled(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Render writes diagnostics one per line as `module:line:col: severity: message`,
// coloring the severity when color is enabled. The input order is preserved.
func Render(w io.Writer, diags []Diagnostic, color bool) {
	for _, d := range diags {
		severity := d.Severity.String()
		if color {
			tint := ansiRed
			if d.Severity == SeverityWarning {
				tint = ansiYellow
			}
			severity = tint + ansiBold + severity + ansiReset
		}
		fmt.Fprintf(w, "%s:%s: %s: %s\n", d.Module, d.Span.Start, severity, d.Message())
	}
}
