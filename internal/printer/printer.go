// Package printer writes colored status lines for the chatreg CLI.
package printer

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer writes status lines to out and errors to errOut.
// Colors follow fatih/color, which honors NO_COLOR and non-TTY output.
type Printer struct {
	out    io.Writer
	errOut io.Writer

	green  *color.Color
	yellow *color.Color
	red    *color.Color
	cyan   *color.Color
}

// New returns a Printer writing to out and errOut.
func New(out, errOut io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Printer{
		out:    out,
		errOut: errOut,
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed, color.Bold),
		cyan:   color.New(color.FgCyan),
	}
}

// Success prints a green line prefixed with a checkmark.
func (p *Printer) Success(format string, a ...any) {
	p.green.Fprintf(p.errOut, "✓ %s\n", fmt.Sprintf(format, a...))
}

// Step prints a cyan progress line.
func (p *Printer) Step(format string, a ...any) {
	p.cyan.Fprintf(p.errOut, "→ %s\n", fmt.Sprintf(format, a...))
}

// Warning prints a yellow warning line.
func (p *Printer) Warning(format string, a ...any) {
	p.yellow.Fprintf(p.errOut, "⚠️  %s\n", fmt.Sprintf(format, a...))
}

// Error prints title, explanation and suggestions to the error output and
// returns an error carrying the title, for Cobra.
func (p *Printer) Error(title, explanation string, suggestions ...string) error {
	p.red.Fprintf(p.errOut, "%s\n", title)

	if explanation != "" {
		fmt.Fprintf(p.errOut, "\n%s\n", explanation)
	}

	switch len(suggestions) {
	case 0:
	case 1:
		fmt.Fprintf(p.errOut, "\n%s\n", suggestions[0])
	default:
		fmt.Fprintf(p.errOut, "\nEither:\n")
		for i, suggestion := range suggestions {
			fmt.Fprintf(p.errOut, "  %d. %s\n", i+1, suggestion)
		}
	}

	return fmt.Errorf("%s", title)
}

// Data writes command output, uncolored, to out.
func (p *Printer) Data(data []byte) {
	p.out.Write(data)
}
