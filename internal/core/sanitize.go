package core

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

// TrailerPrefix marks the trailer record that closes every PIP file.
const TrailerPrefix = "999999"

// eofMarker is the ASCII SUB byte some extracts end with.
const eofMarker = "\x1a"

// trailerPreviewLen bounds how much of a dropped trailer is logged.
const trailerPreviewLen = 50

// IsTrailer reports whether line is a trailer record.
func IsTrailer(line string) bool {
	return strings.HasPrefix(line, TrailerPrefix)
}

// CleanLine strips trailing newline, carriage return and EOF marker bytes.
func CleanLine(line string) string {
	return strings.TrimRight(line, "\n\r"+eofMarker)
}

// Sanitize returns the data records of a raw file in original order.
// Blank lines and trailer records are dropped; trailers are matched anywhere
// in the input, not only on the last line.
func Sanitize(rawLines []string) []string {
	lines := make([]string, 0, len(rawLines))
	for _, raw := range rawLines {
		line := CleanLine(raw)
		if line == "" {
			continue
		}
		if IsTrailer(line) {
			slog.Info("skipping trailer record", "preview", preview(line, trailerPreviewLen))
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// preview cuts s to at most n bytes without splitting a rune.
func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
