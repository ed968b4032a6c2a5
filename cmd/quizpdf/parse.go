// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/quizpdf/internal/config"
	"github.com/pdiddy/quizpdf/internal/logger"
	"github.com/pdiddy/quizpdf/internal/pdftext"
	"github.com/pdiddy/quizpdf/internal/pipeline"
	"github.com/pdiddy/quizpdf/internal/quiz"
	"github.com/pdiddy/quizpdf/internal/report"
)

var parseCmd = &cobra.Command{
	Use:   "parse INPUT...",
	Short: "Parse numbered multiple-choice questions from PDFs or text files",
	Long: `Parse extracts the text of each input (PDF or UTF-8 text), splits it into
numbered question blocks and pages the questions into sets of --per-set.

Two modes are available:

  fixed  options A, B and C are required, as is a "Correct: X" or
         "Antwoord: X" line; incomplete blocks are dropped.
  scan   every lettered option A-F found is kept and the correct answer is
         left null for manual entry.

With one input the questions are printed to stdout. With --save the parsed
file is written next to each input as <name>_parsed.json; several inputs
require --save and existing outputs are skipped unless --force is given.`,
	Args: minArgs(1),
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	save, _ := cmd.Flags().GetBool("save")
	outPath, _ := cmd.Flags().GetString("out")
	force, _ := cmd.Flags().GetBool("force")
	summary, _ := cmd.Flags().GetBool("summary")

	if outPath != "" {
		save = true
	}
	if len(args) > 1 && !save {
		return inputError(fmt.Errorf("parsing %d inputs requires --save", len(args)))
	}
	if len(args) > 1 && outPath != "" {
		return inputError(fmt.Errorf("--out takes a single input"))
	}

	log := logger.Get()
	parser, err := quiz.New(cfg.Parser, log)
	if err != nil {
		return inputError(err)
	}
	ex, err := pdftext.New(cfg.Extract, log)
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		Parser:    parser,
		Extractor: ex,
		PerSet:    cfg.Sets.PerSet,
		Prefix:    cfg.Sets.Prefix,
		Format:    cfg.Output.Format,
		Save:      save,
		OutPath:   outPath,
		Force:     force,
		Log:       log,
	}
	colorize := report.IsTerminal(os.Stderr)

	if len(args) == 1 {
		return parseOne(cmd, args[0], opts, summary, colorize)
	}
	return parseMany(cmd, args, opts, summary, colorize)
}

func parseOne(cmd *cobra.Command, input string, opts pipeline.Options, summary, colorize bool) error {
	out := pipeline.ParseFile(cmd.Context(), input, opts, os.Stderr)
	if out.Err != nil {
		return out.Err
	}

	file := out.File
	if out.Status == pipeline.StatusSkipped {
		existing, err := report.ReadParsedFile(out.Output)
		if err != nil {
			return err
		}
		file = existing
	}

	resp := report.ParseResponse{
		Success:        true,
		Questions:      file.Questions,
		TotalQuestions: file.Metadata.TotalQuestions,
		DroppedBlocks:  file.Metadata.DroppedBlocks,
		SeriesName:     file.Metadata.SeriesName,
	}
	if opts.Save {
		resp.OutputFile = out.Output
	}
	if summary {
		report.NewSummary(colorize).Parse(os.Stderr, resp)
	}
	return report.WriteJSON(os.Stdout, resp)
}

func parseMany(cmd *cobra.Command, inputs []string, opts pipeline.Options, summary, colorize bool) error {
	var (
		status   io.Writer = os.Stderr
		progress func(pipeline.Outcome)
	)
	if colorize {
		bar := pb.New(len(inputs)).SetWriter(os.Stderr).Start()
		defer bar.Finish()
		status = io.Discard
		progress = func(pipeline.Outcome) { bar.Increment() }
	}

	result := pipeline.ParseBatch(cmd.Context(), inputs, opts, status, progress)
	resp := result.Response()
	if summary {
		report.NewSummary(colorize).Batch(os.Stderr, resp)
	}
	if err := report.WriteJSON(os.Stdout, resp); err != nil {
		return err
	}
	if err := cmd.Context().Err(); err != nil {
		return &reportedError{err: fmt.Errorf("batch interrupted: %w", err)}
	}
	if result.HasFailures() {
		return &reportedError{err: fmt.Errorf("%d of %d input(s) failed", result.Failed, result.Total())}
	}
	return nil
}

func init() {
	f := parseCmd.Flags()
	f.String("mode", "", "parse mode: fixed or scan")
	f.String("labels", "", "option labels in order, e.g. ABC or ABCDEF")
	f.Bool("require-answer", false, "drop blocks without a correct-answer line")
	f.Bool("detect-answer", false, "read correct-answer lines")
	f.Int("min-options", 0, "minimum number of options in scan mode")
	f.Bool("infer-bold", false, "take a single bold option line as the correct answer")
	f.Int("per-set", quiz.DefaultPerSet, "questions per set")
	f.String("set-prefix", quiz.DefaultSetPrefix, "set name prefix")
	f.String("format", "", "output file format: json or yaml")
	f.Bool("save", false, "write the parsed file next to each input")
	f.String("out", "", "output file for a single input (implies --save)")
	f.Bool("force", false, "re-parse inputs whose output already exists")
	f.Bool("summary", false, "print a human-readable summary to stderr")

	viper.BindPFlag(config.KeyParserMode, f.Lookup("mode"))
	viper.BindPFlag(config.KeyParserLabels, f.Lookup("labels"))
	viper.BindPFlag(config.KeyParserRequire, f.Lookup("require-answer"))
	viper.BindPFlag(config.KeyParserDetect, f.Lookup("detect-answer"))
	viper.BindPFlag(config.KeyParserMinOpts, f.Lookup("min-options"))
	viper.BindPFlag(config.KeyParserInferBold, f.Lookup("infer-bold"))
	viper.BindPFlag(config.KeySetsPerSet, f.Lookup("per-set"))
	viper.BindPFlag(config.KeySetsPrefix, f.Lookup("set-prefix"))
	viper.BindPFlag(config.KeyOutputFormat, f.Lookup("format"))

	rootCmd.AddCommand(parseCmd)
}
