// Package prompt collects form fields from a line-oriented terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ErrAborted is returned when the input ends before a field is answered.
var ErrAborted = errors.New("input aborted")

// Option is one entry of a Choose list.
type Option struct {
	Value string
	Label string
}

// Prompter reads answers line by line. It is not safe for concurrent use.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	// fd is set when the input is a terminal, so passwords are read without echo.
	fd int
}

// New returns a Prompter reading from in and writing labels to out.
func New(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
	}
	return p
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Ask prints label and returns the answer, or def when the answer is blank.
func (p *Prompter) Ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Password reads a secret. Echo is disabled when the input is a terminal.
func (p *Prompter) Password(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	if p.fd < 0 {
		return p.readLine()
	}
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// Confirm asks a yes/no question. yes and no are the accepted localized
// answers in addition to y/n.
func (p *Prompter) Confirm(label, yes, no string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(p.out, "%s (%s): ", label, hint)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes", strings.ToLower(yes):
		return true, nil
	case "n", "no", strings.ToLower(no):
		return false, nil
	}
	return false, nil
}

// Choose lists options numbered from 1 and returns the chosen value. The
// answer may be a value, a label or a list number, matched in that order.
// Unknown answers are asked again.
func (p *Prompter) Choose(label string, options []Option, def string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("%s: no options", label)
	}
	for i, o := range options {
		marker := " "
		if o.Value == def {
			marker = "*"
		}
		fmt.Fprintf(p.out, "%s %d) %s\n", marker, i+1, o.Label)
	}
	for {
		answer, err := p.Ask(label, def)
		if err != nil {
			return "", err
		}
		if v, ok := match(options, answer); ok {
			return v, nil
		}
		fmt.Fprintf(p.out, "? %s\n", answer)
	}
}

func match(options []Option, answer string) (string, bool) {
	for _, o := range options {
		if o.Value == answer {
			return o.Value, true
		}
	}
	for _, o := range options {
		if strings.EqualFold(o.Label, answer) {
			return o.Value, true
		}
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return options[n-1].Value, true
	}
	return "", false
}
