// Package notify carries user-facing notifications out of the core. The core
// emits (message, severity) pairs; presentation is up to the sink.
package notify

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Severity classifies a notification for display.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier is the sink the core emits notifications to.
type Notifier interface {
	Notify(message string, severity Severity)
}

// Terminal prints notifications to a writer with a colored severity prefix.
type Terminal struct {
	out io.Writer
}

// NewTerminal creates a terminal notifier writing to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

func (t *Terminal) Notify(message string, severity Severity) {
	prefix := severityColor(severity).Sprintf("[%s]", severity)
	fmt.Fprintf(t.out, "%s %s\n", prefix, message)
}

func severityColor(severity Severity) *color.Color {
	switch severity {
	case SeveritySuccess:
		return color.New(color.FgGreen)
	case SeverityWarning:
		return color.New(color.FgYellow)
	case SeverityError:
		return color.New(color.FgRed)
	}
	return color.New(color.FgCyan)
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) Notify(string, Severity) {}
