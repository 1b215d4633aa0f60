// Package terminal probes the controlling terminal before the UI takes
// over the screen.
package terminal

import (
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// Minimum dimensions for the panel layout. Below this the shell refuses
// to start rather than rendering unreadable panels.
const (
	MinCols = 60
	MinRows = 12
)

// Size is the terminal dimension in character cells.
type Size struct {
	Cols int
	Rows int
}

// Fits reports whether the terminal is at least MinCols x MinRows.
func (s Size) Fits() bool {
	return s.Cols >= MinCols && s.Rows >= MinRows
}

// GetSize returns the current terminal dimensions. It tries multiple
// strategies in order:
//  1. TIOCGWINSZ ioctl on stdout
//  2. TIOCGWINSZ ioctl on stderr (in case stdout is redirected)
//  3. COLUMNS/LINES environment variables
//  4. Fallback to 80x24
func GetSize() Size {
	for _, fd := range []uintptr{os.Stdout.Fd(), os.Stderr.Fd()} {
		if s := getSizeFromIoctl(fd); s.Cols > 0 && s.Rows > 0 {
			return s
		}
	}
	return getSizeFromEnv()
}

// getSizeFromIoctl queries the terminal size via TIOCGWINSZ ioctl.
// Returns a zero-value Size on failure.
func getSizeFromIoctl(fd uintptr) Size {
	ws, err := unix.IoctlGetWinsize(int(fd), unix.TIOCGWINSZ)
	if err != nil {
		return Size{}
	}
	return Size{Cols: int(ws.Col), Rows: int(ws.Row)}
}

// getSizeFromEnv reads terminal dimensions from COLUMNS/LINES environment
// variables, falling back to 80x24 defaults.
func getSizeFromEnv() Size {
	return Size{
		Cols: envInt("COLUMNS", 80),
		Rows: envInt("LINES", 24),
	}
}

// envInt reads an integer from the named environment variable. Returns
// the fallback value if the variable is unset, empty, or not a valid
// positive integer.
func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
