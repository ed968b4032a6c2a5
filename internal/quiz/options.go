// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quiz

import (
	"fmt"
	"strings"

	"github.com/pdiddy/quizpdf/pkg/types"
)

// fixedOptions locates every label of the range by its line anchor and
// captures the text up to the first terminator.
func (p *Parser) fixedOptions(section string) (types.Options, string) {
	opts := make(types.Options, 0, len(p.m.labels))
	for i := 0; i < len(p.m.labels); i++ {
		label := p.m.labels[i]
		loc := p.m.anchors[label].FindStringIndex(section)
		if loc == nil {
			return nil, fmt.Sprintf("missing option %c", label)
		}
		text := strings.TrimSpace(captureUntil(section[loc[1]:], p.m.terminatorsFor(label)))
		if text == "" {
			return nil, fmt.Sprintf("empty option %c", label)
		}
		opts = append(opts, types.Option{Label: string(label), Text: text})
	}
	return opts, ""
}

// scanOptions matches each line on its own. Appearance order defines option
// order and a repeated label keeps its first text.
func (p *Parser) scanOptions(section string) (types.Options, string) {
	var opts types.Options
	for _, line := range strings.Split(section, "\n") {
		m := p.m.scanLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		label := strings.ToUpper(m[1])
		if opts.Has(label) {
			continue
		}
		opts = append(opts, types.Option{Label: label, Text: strings.TrimSpace(m[2])})
	}
	if len(opts) < p.cfg.MinOptions {
		return nil, fmt.Sprintf("found %d option(s), need %d", len(opts), p.cfg.MinOptions)
	}
	return opts, ""
}
