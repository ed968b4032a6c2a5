// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package quiz parses numbered multiple-choice questions out of extracted
// PDF text and pages them into named question sets.
package quiz

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/quizpdf/pkg/types"
)

// Dropped records a question block that did not yield a Question.
type Dropped struct {
	ID     int    `json:"id"`
	Reason string `json:"reason"`
}

// Result holds the outcome of one parse pass.
type Result struct {
	// Questions are the valid questions in source order.
	Questions []types.Question

	// Dropped lists the blocks that were skipped, in source order.
	Dropped []Dropped

	// SeriesName is the title found in the text before the first question.
	SeriesName string
}

// IDs returns the question ids in order.
func (r Result) IDs() []int {
	ids := make([]int, len(r.Questions))
	for i, q := range r.Questions {
		ids[i] = q.ID
	}
	return ids
}

// Parser turns extracted text into questions. A Parser is immutable and
// safe for concurrent use.
type Parser struct {
	cfg types.ParserConfig
	m   *markers
	log *zap.Logger
}

// New builds a parser for cfg. A nil logger discards diagnostics.
func New(cfg types.ParserConfig, log *zap.Logger) (*Parser, error) {
	cfg, err := normalize(cfg)
	if err != nil {
		return nil, fmt.Errorf("parser config: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{cfg: cfg, m: compileMarkers(cfg.Labels), log: log}, nil
}

// Config returns the normalized configuration the parser runs with.
func (p *Parser) Config() types.ParserConfig {
	return p.cfg
}

// Parse extracts questions from text. Malformed blocks never fail the parse;
// they are left out of Questions and reported in Dropped.
func (p *Parser) Parse(text string) Result {
	return p.ParseWithBold(text, nil)
}

// ParseWithBold is Parse with the lines the extractor reported as bold.
// When bold inference is enabled, a block without an answer marker takes
// the label of its single bold option line.
func (p *Parser) ParseWithBold(text string, bold []string) Result {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	boldLines := make(map[string]bool, len(bold))
	for _, b := range bold {
		if b = strings.TrimSpace(b); b != "" {
			boldLines[b] = true
		}
	}

	var res Result
	locs := blockPattern.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		res.SeriesName = DetectSeriesName(text)
		p.log.Info("no numbered questions found", zap.Int("chars", len(text)))
		return res
	}
	res.SeriesName = DetectSeriesName(text[:locs[0][0]])

	seen := make(map[int]bool, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		id, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			res.drop(p.log, 0, fmt.Sprintf("invalid question number %q", text[loc[2]:loc[3]]))
			continue
		}
		q, reason := p.parseBlock(id, text[loc[1]:end], boldLines)
		if reason != "" {
			res.drop(p.log, id, reason)
			continue
		}
		if seen[id] {
			res.drop(p.log, id, "duplicate question id")
			continue
		}
		if err := q.Validate(); err != nil {
			res.drop(p.log, id, err.Error())
			continue
		}
		seen[id] = true
		res.Questions = append(res.Questions, q)
	}

	p.log.Info("parsed questions",
		zap.String("mode", string(p.cfg.Mode)),
		zap.Int("blocks", len(locs)),
		zap.Int("questions", len(res.Questions)),
		zap.Int("dropped", len(res.Dropped)),
	)
	return res
}

func (r *Result) drop(log *zap.Logger, id int, reason string) {
	log.Debug("dropped question block", zap.Int("id", id), zap.String("reason", reason))
	r.Dropped = append(r.Dropped, Dropped{ID: id, Reason: reason})
}

// parseBlock builds one question from a block body. A non-empty reason means
// the block is dropped.
func (p *Parser) parseBlock(id int, body string, bold map[string]bool) (types.Question, string) {
	q := types.Question{ID: id}

	first := p.m.optionLine.FindStringIndex(body)
	if first == nil {
		return q, "no option lines"
	}
	stem := strings.TrimSpace(body[:first[0]])
	section := body[first[0]:]

	if clean, desc, ok := stemImage(stem); ok {
		stem = clean
		q.NeedsImage = true
		q.ImageDescription = desc
	}
	if stem == "" {
		return q, "empty question text"
	}
	q.Text = stem

	var reason string
	if p.cfg.Mode == types.ModeScan {
		q.Options, reason = p.scanOptions(section)
	} else {
		q.Options, reason = p.fixedOptions(section)
	}
	if reason != "" {
		return q, reason
	}

	for i, opt := range q.Options {
		if display, desc, ok := optionImage(opt.Label, opt.Text); ok {
			q.Options[i].Text = display
			if q.OptionImages == nil {
				q.OptionImages = make(map[string]string)
			}
			q.OptionImages[opt.Label] = desc
		}
	}

	if p.cfg.DetectCorrectAnswer {
		q.CorrectAnswer = p.detectAnswer(body, q.Options)
	}
	if q.CorrectAnswer == "" && p.cfg.InferBoldAnswers {
		q.CorrectAnswer = p.boldAnswer(section, q.Options, bold)
	}
	if p.cfg.RequireCorrectAnswer && q.CorrectAnswer == "" {
		return q, "no correct answer"
	}
	return q, ""
}

// detectAnswer returns the uppercase label named by the first line that
// starts with an answer marker, or empty when there is none or it names a label that is not an option.
func (p *Parser) detectAnswer(body string, opts types.Options) types.Answer {
	m := p.m.answer.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	label := strings.ToUpper(m[1])
	if !opts.Has(label) {
		p.log.Debug("answer marker names a missing option", zap.String("label", label))
		return ""
	}
	return types.Answer(label)
}

// boldAnswer returns the label of the only option line found in bold.
func (p *Parser) boldAnswer(section string, opts types.Options, bold map[string]bool) types.Answer {
	if len(bold) == 0 {
		return ""
	}
	var found string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if !bold[line] {
			continue
		}
		m := p.m.scanLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		label := strings.ToUpper(m[1])
		if !opts.Has(label) || label == found {
			continue
		}
		if found != "" {
			return ""
		}
		found = label
	}
	return types.Answer(found)
}
