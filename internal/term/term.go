// Package term writes user-facing CLI output for shtack. Operational
// diagnostics go through internal/clog instead.
//
// Output kinds:
//   - Status: progress and confirmation messages, suppressed with --silent
//   - Result: the data a command exists to produce, never suppressed
//   - Error: failures reported to the user on stderr, never suppressed
package term

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu     sync.Mutex
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	silent bool
)

// SetSilent enables or disables silent mode.
func SetSilent(s bool) {
	mu.Lock()
	defer mu.Unlock()
	silent = s
}

// IsSilent returns whether silent mode is enabled.
func IsSilent() bool {
	mu.Lock()
	defer mu.Unlock()
	return silent
}

// SetOutput sets the stdout and stderr writers. A nil writer selects the
// corresponding process stream.
func SetOutput(out, errOut io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	stdout = out
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr = errOut
	if stderr == nil {
		stderr = os.Stderr
	}
}

// Status writes a formatted line to stdout unless silent.
func Status(format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	if silent {
		return
	}
	_, _ = fmt.Fprintf(stdout, format+"\n", a...)
}

// Result writes s and a newline to stdout.
func Result(s string) {
	mu.Lock()
	defer mu.Unlock()
	_, _ = fmt.Fprintln(stdout, s)
}

// Error writes a formatted line to stderr prefixed with "shtack: ".
func Error(format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	_, _ = fmt.Fprintf(stderr, "shtack: "+format+"\n", a...)
}

// Reset restores the process streams and clears silent mode.
// Primarily useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	stdout = os.Stdout
	stderr = os.Stderr
	silent = false
}
