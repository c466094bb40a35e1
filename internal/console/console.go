package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Answer is the operator's reply to a yes/no question
type Answer int

const (
	No Answer = iota
	Yes
)

func (a Answer) String() string {
	if a == Yes {
		return "yes"
	}
	return "no"
}

// ParseAnswer treats anything starting with "y" or "j" (ja) as yes
func ParseAnswer(s string) Answer {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "y") || strings.HasPrefix(s, "j") {
		return Yes
	}
	return No
}

// Console talks to the operator: questions are read from in, everything is written to out
type Console struct {
	in  *bufio.Reader
	out io.Writer

	question *color.Color
	success  *color.Color
	failure  *color.Color
}

// New creates a console. Colour output follows fatih/color's terminal detection
// unless noColor is set.
func New(in io.Reader, out io.Writer, noColor bool) *Console {
	c := &Console{
		in:       bufio.NewReader(in),
		out:      out,
		question: color.New(color.FgCyan, color.Bold),
		success:  color.New(color.FgGreen),
		failure:  color.New(color.FgRed, color.Bold),
	}

	if noColor {
		c.question.DisableColor()
		c.success.DisableColor()
		c.failure.DisableColor()
	}

	return c
}

// Printf writes formatted text to the operator
func (c *Console) Printf(format string, a ...interface{}) {
	fmt.Fprintf(c.out, format, a...)
}

// Successf writes a highlighted success line
func (c *Console) Successf(format string, a ...interface{}) {
	c.success.Fprintf(c.out, format, a...)
}

// Failuref writes a highlighted failure line
func (c *Console) Failuref(format string, a ...interface{}) {
	c.failure.Fprintf(c.out, format, a...)
}

// Confirm asks a yes/no question and blocks until a line is read.
// EOF counts as no; a cancelled context aborts the wait.
func (c *Console) Confirm(ctx context.Context, question string) (Answer, error) {
	c.question.Fprintln(c.out, question)
	fmt.Fprint(c.out, "(y/n) ")

	type result struct {
		line string
		err  error
	}
	lines := make(chan result, 1)
	go func() {
		line, err := c.in.ReadString('\n')
		lines <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return No, ctx.Err()
	case r := <-lines:
		if r.err != nil && r.err != io.EOF {
			return No, fmt.Errorf("failed to read answer: %w", r.err)
		}
		if r.err == io.EOF && r.line == "" {
			fmt.Fprintln(c.out)
		}
		return ParseAnswer(r.line), nil
	}
}
