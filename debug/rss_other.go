//go:build !windows

package debug

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

var errNoRSS = errors.New("debug: rss not available")

// processRSS reads the resident set from /proc on Linux and fails elsewhere.
func processRSS() (uint64, error) {
	b, err := os.ReadFile("/proc/self/statm")
	if err != nil {
		return 0, errNoRSS
	}
	fields := strings.Fields(string(b))
	if len(fields) < 2 {
		return 0, errNoRSS
	}
	pages, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0, errNoRSS
	}
	return pages * uint64(os.Getpagesize()), nil
}
