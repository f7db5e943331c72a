package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow)
	infoColor  = color.New(color.FgCyan)
)

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = errorColor.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = warnColor.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// logInfo prints a status line.
func logInfo(w io.Writer, format string, args ...any) {
	_, _ = infoColor.Fprintln(w, fmt.Sprintf(format, args...))
}
