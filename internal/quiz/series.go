// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quiz

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var seriesKeywordPattern = regexp.MustCompile(`(?i)hoofdstuk|chapter|deel|part`)

const maxTitleLen = 50

// DetectSeriesName picks a series title from the text that precedes the
// first question: the first line naming a chapter or part, else the first
// short line starting with an uppercase letter, else the last line.
func DetectSeriesName(header string) string {
	var lines []string
	for _, line := range strings.Split(header, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	for _, line := range lines {
		if seriesKeywordPattern.MatchString(line) || looksLikeTitle(line) {
			return line
		}
	}
	return lines[len(lines)-1]
}

func looksLikeTitle(line string) bool {
	if utf8.RuneCountInString(line) >= maxTitleLen {
		return false
	}
	r, _ := utf8.DecodeRuneInString(line)
	return unicode.IsUpper(r)
}
