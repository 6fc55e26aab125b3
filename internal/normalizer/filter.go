package normalizer

import "strings"

// Sentinel literals emitted by the legacy logging subsystems. Matching is
// case-sensitive.
const (
	sentinelEmptyToken = `""`
	sentinelMalformed  = "MALFORMED_LOG"
	headerPrefix       = "raw_log"
)

// FilterLines splits a raw text blob into candidate lines: each line is
// trimmed, and empty lines, the quoted-empty token, the MALFORMED_LOG
// sentinel, and header lines are dropped. Pure function with no side
// effects; the returned order matches the input order.
func FilterLines(blob string) []string {
	rawLines := strings.Split(blob, "\n")
	lines := make([]string, 0, len(rawLines))

	for _, raw := range rawLines {
		line := strings.TrimSpace(raw)
		if line == "" || line == sentinelEmptyToken || line == sentinelMalformed {
			continue
		}
		if strings.HasPrefix(line, headerPrefix) {
			continue
		}
		lines = append(lines, line)
	}

	return lines
}
