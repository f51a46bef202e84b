package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nicolasacchi/abfallcli/internal/api"
	"github.com/nicolasacchi/abfallcli/internal/output"
)

// prompter asks the user to pick from option lists. Lists are printed to stderr
// through the printer; answers are read line by line from in.
type prompter struct {
	in      *bufio.Reader
	printer *output.Printer
}

func newPrompter(in io.Reader, printer *output.Printer) *prompter {
	return &prompter{in: bufio.NewReader(in), printer: printer}
}

// choose lets the user pick one option (or several when multi is set) by number or
// by name. Any other input narrows the list to names containing it.
func (p *prompter) choose(label string, options []api.Option, multi bool) ([]string, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("the vendor offered no %s", label)
	}

	shown := options
	for {
		p.printer.Info("Select %s:", label)
		for i, o := range shown {
			p.printer.Info("  [%d] %s", i+1, o.Name)
		}
		if multi {
			p.printer.Info("Numbers separated by commas, or \"all\":")
		}

		line, err := p.in.ReadString('\n')
		line = strings.TrimSpace(line)
		if err != nil && line == "" {
			if err == io.EOF {
				return nil, fmt.Errorf("no %s selected", label)
			}
			return nil, err
		}
		if line == "" {
			continue
		}

		if multi && strings.EqualFold(line, "all") {
			return names(shown), nil
		}
		if picked, ok := pickNumbers(line, shown, multi); ok {
			return picked, nil
		}
		for _, o := range shown {
			if strings.EqualFold(o.Name, line) {
				return []string{o.Name}, nil
			}
		}

		filtered := filterOptions(shown, line)
		switch len(filtered) {
		case 0:
			p.printer.Warn("nothing matches %q", line)
			shown = options
		case 1:
			return []string{filtered[0].Name}, nil
		default:
			shown = filtered
		}
	}
}

// pickNumbers resolves "2" or "1, 3" against the shown options.
func pickNumbers(line string, shown []api.Option, multi bool) ([]string, bool) {
	parts := strings.Split(line, ",")
	if len(parts) > 1 && !multi {
		return nil, false
	}
	var out []string
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > len(shown) {
			return nil, false
		}
		out = append(out, shown[n-1].Name)
	}
	return out, true
}

func filterOptions(options []api.Option, query string) []api.Option {
	q := strings.ToLower(query)
	var out []api.Option
	for _, o := range options {
		if strings.Contains(strings.ToLower(o.Name), q) {
			out = append(out, o)
		}
	}
	return out
}

func names(options []api.Option) []string {
	out := make([]string, 0, len(options))
	for _, o := range options {
		out = append(out, o.Name)
	}
	return out
}
