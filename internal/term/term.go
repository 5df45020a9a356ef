// Package term reports whether output goes to a terminal.
package term

import "os"

// IsTerminal reports whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isTerminal(int(f.Fd()))
}

// ColorEnabled reports whether ANSI colour should be written to f. NO_COLOR
// turns it off everywhere.
func ColorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return IsTerminal(f)
}
