// Package logger provides leveled logging for the CLI.
// Output goes to stderr so it never mixes with command output on stdout.
// Debug messages are only emitted when verbose mode is enabled.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

var std = newLogger(os.Stderr)

func newLogger(out io.Writer) *log.Logger {
	l := log.New()
	l.SetOutput(out)
	l.SetFormatter(&Formatter{})
	l.SetLevel(log.InfoLevel)
	return l
}

// Formatter renders entries as `[15:04:05] [debug] message key=value`.
type Formatter struct{}

// Format implements logrus.Formatter.
func (f *Formatter) Format(entry *log.Entry) ([]byte, error) {
	buffer := entry.Buffer
	if buffer == nil {
		buffer = &bytes.Buffer{}
	}

	level := entry.Level.String()
	if level == "warning" {
		level = "warn"
	}

	var fields string
	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, entry.Data[k]))
		}
		fields = " " + strings.Join(parts, " ")
	}

	fmt.Fprintf(buffer, "[%s] [%-5s] %s%s\n",
		entry.Time.Format("15:04:05"), level, strings.TrimRight(entry.Message, "\r\n"), fields)
	return buffer.Bytes(), nil
}

// SetVerbose toggles debug output.
func SetVerbose(verbose bool) {
	if verbose {
		std.SetLevel(log.DebugLevel)
		return
	}
	std.SetLevel(log.InfoLevel)
}

// IsVerbose reports whether debug output is enabled.
func IsVerbose() bool {
	return std.IsLevelEnabled(log.DebugLevel)
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// WithField returns an entry carrying a structured field.
func WithField(key string, value any) *log.Entry {
	return std.WithField(key, value)
}

// Debug logs a debug message.
func Debug(format string, args ...any) {
	std.Debugf(format, args...)
}

// Info logs an informational message.
func Info(format string, args ...any) {
	std.Infof(format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	std.Warnf(format, args...)
}

// Error logs an error.
func Error(format string, args ...any) {
	std.Errorf(format, args...)
}
