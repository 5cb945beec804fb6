package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
)

// Prompter asks questions on a line-oriented terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a Prompter reading answers from in and writing questions to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// readLine returns the next line without its newline. A final line without
// a newline is returned as-is; io.EOF is only returned when nothing was read.
func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. Only "y" or "yes" count as yes; end of
// input counts as no.
func (p *Prompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)

	answer, err := p.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return false, nil
		}
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Ask reads a single value. An empty answer keeps def.
func (p *Prompter) Ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	answer, err := p.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return def, nil
		}
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Choose lists items and returns the one picked by number or by name.
// def is pre-selected when it is one of items; otherwise the first item is.
func (p *Prompter) Choose(label string, items []string, def string) (string, error) {
	if len(items) == 0 {
		return "", errors.New("nothing to choose from")
	}

	defIdx := 0
	for i, item := range items {
		if item == def {
			defIdx = i
		}
	}

	for i, item := range items {
		marker := " "
		if i == defIdx {
			marker = "*"
		}
		fmt.Fprintf(p.out, " %s %d) %s\n", marker, i+1, item)
	}

	for {
		answer, err := p.Ask(label, strconv.Itoa(defIdx+1))
		if err != nil {
			return "", err
		}

		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(items) {
			return items[n-1], nil
		}
		for _, item := range items {
			if item == answer {
				return item, nil
			}
		}
		fmt.Fprintf(p.out, "Invalid choice %q\n", answer)
	}
}
