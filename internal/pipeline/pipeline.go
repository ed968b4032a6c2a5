// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs inputs through extraction, parsing and set
// splitting, writing one parsed file per input.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pdiddy/quizpdf/internal/pdftext"
	"github.com/pdiddy/quizpdf/internal/quiz"
	"github.com/pdiddy/quizpdf/internal/report"
	"github.com/pdiddy/quizpdf/pkg/types"
)

// Status is the outcome of one input.
type Status string

const (
	StatusParsed  Status = "parsed"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Options configures a pipeline run.
type Options struct {
	Parser    *quiz.Parser
	Extractor pdftext.Extractor

	// PerSet and Prefix control set splitting.
	PerSet int
	Prefix string

	// Format selects the encoding of written files.
	Format types.OutputFormat

	// Save writes each parsed file next to its input (or to OutPath).
	Save bool

	// OutPath overrides the derived output path. Only valid for a single
	// input.
	OutPath string

	// Force re-parses inputs whose output already exists.
	Force bool

	Log *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Log == nil {
		return zap.NewNop()
	}
	return o.Log
}

// Outcome holds the result for one input.
type Outcome struct {
	Input  string
	Output string
	Status Status
	Result quiz.Result
	File   types.ParsedFile
	Err    error
}

// FileResult converts the outcome to its report form.
func (o Outcome) FileResult() report.FileResult {
	fr := report.FileResult{
		Input:     o.Input,
		Status:    string(o.Status),
		Questions: len(o.Result.Questions),
		Dropped:   len(o.Result.Dropped),
	}
	if o.Status != StatusFailed {
		fr.Output = o.Output
	}
	if o.Err != nil {
		fr.Error = o.Err.Error()
	}
	return fr
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Parsed   int
	Skipped  int
	Failed   int
	Outcomes []Outcome
}

// Total returns the number of inputs processed.
func (r BatchResult) Total() int {
	return r.Parsed + r.Skipped + r.Failed
}

// HasFailures reports whether any input failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Response converts the batch to its report form.
func (r BatchResult) Response() report.BatchResponse {
	files := make([]report.FileResult, len(r.Outcomes))
	for i, o := range r.Outcomes {
		files[i] = o.FileResult()
	}
	return report.BatchResponse{
		Success: !r.HasFailures(),
		Files:   files,
		Parsed:  r.Parsed,
		Skipped: r.Skipped,
		Failed:  r.Failed,
	}
}

// ParseSource extracts (for PDFs) and parses one decoded source, and pages
// the questions into sets.
func ParseSource(ctx context.Context, src *pdftext.Source, opts Options) (quiz.Result, types.ParsedFile, error) {
	if opts.Parser == nil {
		return quiz.Result{}, types.ParsedFile{}, errors.New("pipeline: no parser configured")
	}
	if src.Kind == pdftext.KindPDF && opts.Extractor == nil {
		return quiz.Result{}, types.ParsedFile{}, errors.New("pipeline: no PDF extractor configured")
	}
	content, err := src.Content(ctx, opts.Extractor)
	if err != nil {
		return quiz.Result{}, types.ParsedFile{}, err
	}

	res := opts.Parser.ParseWithBold(content.Text, content.Bold)
	pf, err := quiz.BuildParsedFile(res, opts.PerSet, opts.Prefix)
	if err != nil {
		return res, types.ParsedFile{}, err
	}
	pf.Metadata.Pages = content.Pages
	pf.Metadata.Source = filepath.Base(src.Name)
	opts.logger().Debug("parsed source",
		zap.String("source", src.Name),
		zap.Int("questions", len(res.Questions)),
		zap.Int("dropped", len(res.Dropped)),
		zap.Int("sets", len(pf.QuestionSets)),
	)
	return res, pf, nil
}

// ParseFile parses the input at path, writing the parsed file when
// opts.Save is set. An existing output is skipped unless opts.Force is set.
// Status lines are printed to w.
func ParseFile(ctx context.Context, path string, opts Options, w io.Writer) Outcome {
	out := Outcome{Input: path, Output: opts.OutPath}
	if out.Output == "" {
		out.Output = report.OutputPath(path, opts.Format)
	}
	name := filepath.Base(path)

	if opts.Save && !opts.Force {
		if _, err := os.Stat(out.Output); err == nil {
			fmt.Fprintf(w, "skipped: %s (%s exists)\n", name, filepath.Base(out.Output))
			out.Status = StatusSkipped
			return out
		}
	}

	fail := func(err error) Outcome {
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
		opts.logger().Warn("parse failed", zap.String("input", path), zap.Error(err))
		out.Status, out.Err = StatusFailed, err
		return out
	}

	src, err := pdftext.Open(path)
	if err != nil {
		return fail(err)
	}
	out.Result, out.File, err = ParseSource(ctx, src, opts)
	if err != nil {
		return fail(err)
	}

	if opts.Save {
		if err := report.WriteFile(out.Output, opts.Format, out.File); err != nil {
			return fail(err)
		}
	}

	fmt.Fprintf(w, "parsed:  %s (%d questions, %d dropped)\n", name, len(out.Result.Questions), len(out.Result.Dropped))
	out.Status = StatusParsed
	return out
}

// ParseBatch processes inputs in order, printing per-file status to w and
// a summary at the end. progress, when set, is called after each input.
// A cancelled context stops the batch before the next input.
func ParseBatch(ctx context.Context, inputs []string, opts Options, w io.Writer, progress func(Outcome)) BatchResult {
	opts.OutPath = ""
	var result BatchResult
	for _, path := range inputs {
		if ctx.Err() != nil {
			break
		}
		o := ParseFile(ctx, path, opts, w)
		switch o.Status {
		case StatusParsed:
			result.Parsed++
		case StatusSkipped:
			result.Skipped++
		case StatusFailed:
			result.Failed++
		}
		result.Outcomes = append(result.Outcomes, o)
		if progress != nil {
			progress(o)
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d parsed, %d skipped, %d failed (total: %d)\n",
		result.Parsed, result.Skipped, result.Failed, result.Total())
	return result
}
