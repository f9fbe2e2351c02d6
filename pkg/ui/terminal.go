package ui

import (
	"fmt"
	"io"
	"os"
)

// ASCIILogo is printed at the start of an interactive run
const ASCIILogo = `
    ╔══════════════════════════════════════════════════════╗
    ║   ___   _ _____ _   _    ___   ___                   ║
    ║  / __| /_\_   _/_\ | |  / _ \ / __|                  ║
    ║ | (__ / _ \| |/ _ \| |_| (_) | (_ |                  ║
    ║  \___/_/ \_\_/_/ \_\____\___/ \___|  SCRAPER         ║
    ║        INCREMENTAL CRAWL & ENRICH UTILITY            ║
    ╚══════════════════════════════════════════════════════╝
`

var (
	output       io.Writer = os.Stdout
	colorEnabled           = true
	quietMode    bool
)

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		if !colorEnabled {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

// SetOutput redirects terminal output, mainly for tests
func SetOutput(w io.Writer) {
	output = w
}

// Output returns the current terminal writer
func Output() io.Writer {
	return output
}

// SetColorEnabled turns ANSI colors on or off
func SetColorEnabled(enabled bool) {
	colorEnabled = enabled
}

// SetQuietMode suppresses progress and decoration output
func SetQuietMode(quiet bool) {
	quietMode = quiet
}

// IsQuietMode reports whether quiet mode is on
func IsQuietMode() bool {
	return quietMode
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	if quietMode {
		return
	}
	fmt.Fprint(output, Cyan(ASCIILogo))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(output, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(output, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Fprintln(output, Green(msg))
}

// PrintInfo prints an info message in cyan
func PrintInfo(label string, value string) {
	fmt.Fprintf(output, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(output, Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(output, Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	if quietMode {
		return
	}
	fmt.Fprintln(output, Magenta(msg))
}
