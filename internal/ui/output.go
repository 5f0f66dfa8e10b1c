package ui

import "fmt"

// Status symbols. Color is reserved for field names and values, so status
// lines carry meaning through these alone.
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolInfo    = "ℹ"
)

func status(symbol, msg string) string {
	return symbol + " " + msg
}

// Success prefixes msg with a checkmark.
func Success(msg string) string { return status(SymbolSuccess, msg) }

// Successf formats a success line.
func Successf(format string, args ...interface{}) string {
	return Success(fmt.Sprintf(format, args...))
}

// Error prefixes msg with a cross.
func Error(msg string) string { return status(SymbolError, msg) }

// Warning prefixes msg with a warning sign.
func Warning(msg string) string { return status(SymbolWarning, msg) }

// Infof formats an informational line.
func Infof(format string, args ...interface{}) string {
	return status(SymbolInfo, fmt.Sprintf(format, args...))
}

// FilePath styles a file or library path.
func FilePath(path string) string {
	return Accent.Render(path)
}

// Hint styles secondary text such as prompts and follow-up advice.
func Hint(msg string) string {
	return Muted.Render(msg)
}

// Count returns "1 item" or "3 items".
func Count(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
