// Package notify reports command outcomes on a terminal and asks for confirmation.
package notify

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Level is the severity of a notification.
type Level string

const (
	Success Level = "success"
	Error   Level = "error"
	Info    Level = "info"
)

// Console writes styled one-line notifications to Out and reads yes/no answers from In.
type Console struct {
	out io.Writer
	in  *bufio.Reader
	// AssumeYes answers every confirmation with yes without reading In.
	AssumeYes bool

	mu     sync.Mutex
	styles map[Level]lipgloss.Style
}

// NewConsole renders through a lipgloss renderer bound to out, so colour is
// dropped automatically when out is not a terminal.
func NewConsole(out io.Writer, in io.Reader) *Console {
	r := lipgloss.NewRenderer(out)
	c := &Console{
		out: out,
		styles: map[Level]lipgloss.Style{
			Success: r.NewStyle().Foreground(lipgloss.Color("#2e9e5b")).Bold(true),
			Error:   r.NewStyle().Foreground(lipgloss.Color("#d16d7a")).Bold(true),
			Info:    r.NewStyle().Foreground(lipgloss.Color("#5f9fb0")),
		},
	}
	if in != nil {
		c.in = bufio.NewReader(in)
	}
	return c
}

var glyphs = map[Level]string{Success: "✓", Error: "✗", Info: "•"}

// Notify prints msg at level.
func (c *Console) Notify(level Level, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	style, ok := c.styles[level]
	if !ok {
		style = c.styles[Info]
	}
	fmt.Fprintln(c.out, style.Render(glyphs[level]+" "+msg))
}

// Confirm asks question and reports whether the answer was yes.
// Without an input stream every question is answered no.
func (c *Console) Confirm(question string) bool {
	if c.AssumeYes {
		return true
	}
	if c.in == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s [y/N] ", question)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
