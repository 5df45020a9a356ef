//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package term

func isTerminal(int) bool { return false }
