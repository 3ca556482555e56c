// Package peerhosts loads the list of peer authoritative servers that nodar
// advertises in NS answers for its zone.
package peerhosts

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/net/idna"

	logpkg "github.com/haukened/nodar/internal/dns/common/log"
)

// DefaultMaxHosts is the number of peers advertised when no limit is configured.
const DefaultMaxHosts = 6

// ParseHostList reads a newline delimited host list and returns at most max
// entries in source order.
//
// Behavior:
// - Trims surrounding whitespace and a leading BOM
// - Skips blank lines, whole-line comments and strips inline '#' comments
// - Converts internationalized names to their ASCII form; names that cannot be
//   converted are kept as written
// - Stops reading once max entries have been collected
func ParseHostList(r io.Reader, max int, logger logpkg.Logger) ([]string, error) {
	if max <= 0 {
		max = DefaultMaxHosts
	}
	if logger == nil {
		logger = logpkg.NewNoopLogger()
	}
	scanner := bufio.NewScanner(r)

	out := make([]string, 0, max)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimPrefix(scanner.Text(), "\uFEFF")

		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		host := strings.TrimSpace(line)
		if host == "" {
			logger.Debug(map[string]any{"line": lineNum}, "skip_empty")
			continue
		}

		ascii, err := idna.Punycode.ToASCII(host)
		if err != nil {
			logger.Debug(map[string]any{"line": lineNum, "host": host, "error": err.Error()}, "keep_unconverted_host")
		} else {
			host = ascii
		}

		out = append(out, host)
		if len(out) == max {
			logger.Debug(map[string]any{"line": lineNum, "max": max}, "host_limit_reached")
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return []string{}, err
	}
	return out, nil
}
