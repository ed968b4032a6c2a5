// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quiz

import (
	"regexp"
	"strings"
)

// blockPattern splits text into numbered question blocks. The number is
// captured; the block body starts right after the match.
var blockPattern = regexp.MustCompile(`(?:^|\n)[ \t]*(\d+)\.\s+`)

// answerWords are the markers that introduce a correct-answer line.
const answerWords = `juist\s+antwoord|correct(?:\s+answer)?|antwoord|answer`

// Option text capture stops at the first of these, in priority order:
// a later label anchor, an answer marker line, the next question number,
// end of block. The earliest match position wins; ties go to the
// terminator listed first.
var (
	answerTerminator       = regexp.MustCompile(`(?i)\n[ \t]*(?:` + answerWords + `)\s*[:=]`)
	nextQuestionTerminator = regexp.MustCompile(`\n[ \t]*\d+\.\s`)
)

// markers holds the patterns compiled for one label range.
type markers struct {
	labels string // uppercase, in range order

	optionLine *regexp.Regexp          // first option line of a block
	anchors    map[byte]*regexp.Regexp // line anchor per label
	later      map[byte]*regexp.Regexp // any later label starting a line
	scanLine   *regexp.Regexp          // a whole option line in scan mode
	answer     *regexp.Regexp          // answer marker line with captured letter
}

// labelClass returns a character class matching labels in either case.
func labelClass(labels string) string {
	return "[" + labels + strings.ToLower(labels) + "]"
}

func compileMarkers(labels string) *markers {
	class := labelClass(labels)
	m := &markers{
		labels:     labels,
		optionLine: regexp.MustCompile(`(?m)^[ \t]*` + class + `[.)]`),
		anchors:    make(map[byte]*regexp.Regexp, len(labels)),
		later:      make(map[byte]*regexp.Regexp, len(labels)),
		scanLine:   regexp.MustCompile(`^(` + class + `)[.)]\s+(.+)$`),
		answer:     regexp.MustCompile(`(?im)^[ \t]*(?:` + answerWords + `)[ \t]*[:=][ \t]*(` + class + `)\b`),
	}
	for i := 0; i < len(labels); i++ {
		l := labels[i]
		m.anchors[l] = regexp.MustCompile(`(?m)^[ \t]*` + labelClass(string(l)) + `[.)][ \t]*`)
		if rest := labels[i+1:]; rest != "" {
			m.later[l] = regexp.MustCompile(`\n[ \t]*` + labelClass(rest) + `[.)]`)
		}
	}
	return m
}

// terminatorsFor returns the ordered terminator list for label.
func (m *markers) terminatorsFor(label byte) []*regexp.Regexp {
	terms := make([]*regexp.Regexp, 0, 3)
	if t, ok := m.later[label]; ok {
		terms = append(terms, t)
	}
	return append(terms, answerTerminator, nextQuestionTerminator)
}

// captureUntil returns s up to the earliest terminator match. With no match
// the whole string is returned.
func captureUntil(s string, terms []*regexp.Regexp) string {
	end := len(s)
	for _, t := range terms {
		if loc := t.FindStringIndex(s); loc != nil && loc[0] < end {
			end = loc[0]
		}
	}
	return s[:end]
}
