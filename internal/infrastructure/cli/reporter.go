package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/opsbay/caretaker/internal/ports"
)

const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// ConsoleReporter mirrors every heal decision point on stdout in real time
// with a symbolic prefix. Nothing is silent.
type ConsoleReporter struct {
	out   io.Writer
	isTTY bool
}

// NewConsoleReporter builds a reporter; color and the wait spinner are only
// enabled when the writer is a terminal.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	r := &ConsoleReporter{out: out}
	if f, ok := out.(*os.File); ok {
		r.isTTY = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return r
}

// Banner implements ports.Reporter.
func (r *ConsoleReporter) Banner(title string) {
	fmt.Fprintf(r.out, "== %s ==\n", title)
}

// Check implements ports.Reporter.
func (r *ConsoleReporter) Check(format string, args ...interface{}) {
	r.line(colorCyan, "CHECK", format, args...)
}

// Warn implements ports.Reporter.
func (r *ConsoleReporter) Warn(format string, args ...interface{}) {
	r.line(colorYellow, "WARN", format, args...)
}

// Heal implements ports.Reporter.
func (r *ConsoleReporter) Heal(format string, args ...interface{}) {
	r.line(colorMagenta, "HEAL", format, args...)
}

// OK implements ports.Reporter.
func (r *ConsoleReporter) OK(format string, args ...interface{}) {
	r.line(colorGreen, "OK", format, args...)
}

// Fail implements ports.Reporter.
func (r *ConsoleReporter) Fail(format string, args ...interface{}) {
	r.line(colorRed, "FAIL", format, args...)
}

// Wait implements ports.Reporter: it announces the settle period, then blocks
// for the full duration (or until the context is cancelled), spinning on a TTY.
func (r *ConsoleReporter) Wait(ctx context.Context, d time.Duration, format string, args ...interface{}) {
	r.line(colorBlue, "WAIT", format, args...)
	if d <= 0 {
		return
	}

	var spinner *Spinner
	if r.isTTY {
		spinner = NewSpinner(r.out)
		spinner.Start()
		defer spinner.Stop()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (r *ConsoleReporter) line(color, prefix, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if r.isTTY {
		fmt.Fprintf(r.out, "%s[%s]%s %s\n", color, prefix, colorReset, msg)
		return
	}
	fmt.Fprintf(r.out, "[%s] %s\n", prefix, msg)
}

var _ ports.Reporter = (*ConsoleReporter)(nil)
