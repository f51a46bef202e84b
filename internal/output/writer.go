package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Mode controls output formatting behavior.
type Mode int

const (
	ModeAuto    Mode = iota // Detect TTY: pretty if terminal, compact if piped
	ModePretty              // Force indented JSON
	ModeCompact             // Force single-line JSON
	ModeTable               // Aligned columns for people (--table flag)
)

const prefix = "abfallcli:"

// Printer manages output formatting.
type Printer struct {
	stdout io.Writer
	stderr io.Writer
	mode   Mode
	quiet  bool
}

// NewPrinter creates a Printer.
func NewPrinter(stdout, stderr io.Writer, mode Mode, quiet bool) *Printer {
	if quiet {
		color.NoColor = true
	}
	return &Printer{
		stdout: stdout,
		stderr: stderr,
		mode:   mode,
		quiet:  quiet,
	}
}

// JSON writes v as JSON to stdout.
func (p *Printer) JSON(v interface{}) error {
	var data []byte
	var err error

	switch p.effectiveMode() {
	case ModePretty:
		data, err = json.MarshalIndent(v, "", "  ")
	default:
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}

	data = append(data, '\n')
	_, err = p.stdout.Write(data)
	return err
}

// Table writes rows as tab-aligned columns to stdout. The header is bold when
// colors are enabled.
func (p *Printer) Table(header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(p.stdout, 0, 0, 2, ' ', 0)
	if len(header) > 0 {
		bold := color.New(color.Bold)
		cells := make([]string, len(header))
		for i, h := range header {
			cells[i] = bold.Sprint(h)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// Error writes an error message to stderr.
func (p *Printer) Error(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(p.stderr, "%s %s\n", color.RedString(prefix), msg)
}

// Warn writes a warning message to stderr.
func (p *Printer) Warn(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(p.stderr, "%s %s\n", color.YellowString(prefix), msg)
}

// Info writes an informational message to stderr.
func (p *Printer) Info(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(p.stderr, "%s %s\n", color.CyanString(prefix), msg)
}

// IsTable returns true if the output mode is table.
func (p *Printer) IsTable() bool {
	return p.mode == ModeTable
}

// Interactive reports whether stderr is a terminal, i.e. whether prompting makes sense.
func (p *Printer) Interactive() bool {
	f, ok := p.stderr.(*os.File)
	return ok && isTerminal(f)
}

func (p *Printer) effectiveMode() Mode {
	if p.mode != ModeAuto {
		return p.mode
	}
	if f, ok := p.stdout.(*os.File); ok && isTerminal(f) {
		return ModePretty
	}
	return ModeCompact
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ModeFromFlags converts CLI flag values to a Mode.
// Priority: table > compact > pretty > auto.
func ModeFromFlags(pretty, compact, table bool) Mode {
	switch {
	case table:
		return ModeTable
	case compact:
		return ModeCompact
	case pretty:
		return ModePretty
	default:
		return ModeAuto
	}
}
