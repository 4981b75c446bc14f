// Package logger prints the colored console lines the server uses for
// startup progress and notable events. Per-request chatter goes through the
// standard log package with a "[Tag]" prefix instead.
package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

// colorEnabled reports whether stdout is an interactive terminal.
// Evaluated per call so tests can swap os.Stdout.
func colorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func paint(color, s string) string {
	if !colorEnabled() {
		return s
	}
	return color + s + reset
}

func line(color, symbol, tag, msg string) {
	ts := time.Now().Format("15:04:05")
	fmt.Fprintf(os.Stdout, "%s %s %s %s\n",
		paint(dim, ts),
		paint(color, symbol),
		paint(bold, fmt.Sprintf("%-6s", tag)),
		msg)
}

func Info(tag, msg string)    { line(cyan, "•", tag, msg) }
func Success(tag, msg string) { line(green, "✓", tag, msg) }
func Warn(tag, msg string)    { line(yellow, "!", tag, msg) }
func Error(tag, msg string)   { line(red, "✗", tag, msg) }

// Banner prints the startup banner. An empty version is omitted.
func Banner(version string) {
	title := "Elite Trader"
	if version != "" {
		title += " " + version
	}
	bar := strings.Repeat("─", len(title)+4)
	fmt.Fprintln(os.Stdout, paint(cyan, "┌"+bar+"┐"))
	fmt.Fprintln(os.Stdout, paint(cyan, "│  ")+paint(bold, title)+paint(cyan, "  │"))
	fmt.Fprintln(os.Stdout, paint(cyan, "└"+bar+"┘"))
}

// Section starts a titled block of Stats lines.
func Section(title string) {
	fmt.Fprintf(os.Stdout, "\n%s\n", paint(bold, "── "+title+" ──"))
}

// Stats prints one aligned key/value line inside a Section.
func Stats(key string, value any) {
	fmt.Fprintf(os.Stdout, "   %-18s %v\n", paint(dim, key), value)
}

// Server announces the listen address.
func Server(addr string) {
	Success("HTTP", "Listening on "+paint(bold, "http://"+addr))
}
