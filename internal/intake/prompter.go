package intake

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"utitriage/domain/patient"
)

// MaxAttempts is how many times a prompt is asked before giving up
const MaxAttempts = 3

// Prompter asks questions on Out and reads answers line by line from In
type Prompter struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// NewPrompter creates a prompter over the given streams
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{In: in, Out: out}
}

func (p *Prompter) readLine() (string, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	line, err := p.reader.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	return strings.TrimRight(line, "\r\n"), err
}

// ChooseMode prints the mode menu and reads the choice
func (p *Prompter) ChooseMode() (Mode, error) {
	fmt.Fprintln(p.Out, "Select Input Mode:")
	fmt.Fprintln(p.Out, "1. Basic Symptom Assessment")
	fmt.Fprintln(p.Out, "2. Detailed Medical Evaluation")
	fmt.Fprint(p.Out, "Enter choice (1/2): ")
	choice, err := p.readLine()
	if err != nil {
		return "", fmt.Errorf("read mode choice: %w", err)
	}
	return ParseModeChoice(choice), nil
}

// Collect asks every question for mode and returns the completed record.
// Fields basic mode skips take BasicDefaults.
func (p *Prompter) Collect(mode Mode) (patient.Record, error) {
	rec := newRecord()
	for _, q := range Questions(mode) {
		if err := p.ask(&rec, q); err != nil {
			return patient.Record{}, err
		}
	}
	return rec, nil
}

func (p *Prompter) ask(rec *patient.Record, q Question) error {
	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		fmt.Fprint(p.Out, q.Prompt())
		answer, err := p.readLine()
		if err != nil {
			return fmt.Errorf("read %s: %w", q.Key, err)
		}
		if lastErr = apply(rec, q, answer); lastErr == nil {
			return nil
		}
		fmt.Fprintf(p.Out, "  %v\n", lastErr)
	}
	return fmt.Errorf("no valid answer for %s after %d attempts: %w", q.Key, MaxAttempts, lastErr)
}
