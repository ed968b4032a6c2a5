// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/quizpdf/internal/bank"
	"github.com/pdiddy/quizpdf/internal/logger"
	"github.com/pdiddy/quizpdf/internal/report"
	"github.com/pdiddy/quizpdf/pkg/types"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Manage the question bank (import, list, search, answer, status, export)",
	Long: `Bank manages a local SQLite question bank built from parsed files. Each
imported file becomes a category; questions left without an answer by the
scan mode can be answered by hand and the category exported again.`,
}

func openBank() (*bank.Store, error) {
	store, err := bank.Open(cfg.Bank.Path)
	if err != nil {
		return nil, err
	}
	logger.Get().Debug("opened question bank", zap.String("path", store.Path()))
	return store, nil
}

// successResponse is printed by bank commands that return no data.
type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// --- import subcommand ---

var bankImportCmd = &cobra.Command{
	Use:   "import PARSED_FILE",
	Short: "Import a parsed file as a category",
	Long: `Import stores the questions and sets of a parsed file under --category,
replacing what the category held before. Its status is kept. A file that has
not changed since the last import of the category is skipped unless --force
is given.`,
	Args: exactArgs(1),
	RunE: runBankImport,
}

type importResponse struct {
	Success bool `json:"success"`
	bank.ImportResult
}

func runBankImport(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")
	name, _ := cmd.Flags().GetString("name")
	description, _ := cmd.Flags().GetString("description")
	force, _ := cmd.Flags().GetBool("force")

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	pf, err := report.ReadParsedFile(path)
	if err != nil {
		return err
	}

	store, err := openBank()
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := store.Import(cmd.Context(), bank.ImportOptions{
		Category:    category,
		Name:        name,
		Description: description,
		Source:      path,
		ModTime:     info.ModTime(),
		Force:       force,
	}, pf)
	if err != nil {
		return err
	}

	switch {
	case res.Skipped:
		fmt.Fprintf(os.Stderr, "skipped  %s (unchanged)\n", res.Category)
	case res.Updated:
		fmt.Fprintf(os.Stderr, "updated  %s (%d questions, %d sets)\n", res.Category, res.Questions, res.Sets)
	default:
		fmt.Fprintf(os.Stderr, "imported %s (%d questions, %d sets)\n", res.Category, res.Questions, res.Sets)
	}
	return report.WriteJSON(os.Stdout, importResponse{Success: true, ImportResult: res})
}

// --- list subcommand ---

var bankListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the categories in the bank",
	Args:  exactArgs(0),
	RunE:  runBankList,
}

func runBankList(cmd *cobra.Command, args []string) error {
	store, err := openBank()
	if err != nil {
		return err
	}
	defer store.Close()

	cats, err := store.Categories(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		if cats == nil {
			cats = []bank.Category{}
		}
		return report.WriteJSON(os.Stdout, cats)
	}

	if len(cats) == 0 {
		fmt.Println("No categories.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "%-20s  %-30s  %-10s  %9s  %10s\n",
		"Category", "Name", "Status", "Questions", "Unanswered")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 87))
	for _, c := range cats {
		fmt.Fprintf(os.Stdout, "%-20s  %-30s  %-10s  %9d  %10d\n",
			c.ID, truncate(c.Name, 30), c.Status, c.Questions, c.Unanswered)
	}
	return nil
}

// --- search subcommand ---

var bankSearchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search questions by text, category or missing answer",
	Long: `Search finds questions whose stem or options contain the given text
(case-insensitive). Filter with --category and --unanswered; the latter lists
the questions still waiting for a manual answer.`,
	Args: rangeArgs(0, 1),
	RunE: runBankSearch,
}

func runBankSearch(cmd *cobra.Command, args []string) error {
	opts := bank.SearchOptions{}
	if len(args) == 1 {
		opts.Text = args[0]
	}
	opts.Category, _ = cmd.Flags().GetString("category")
	opts.Unanswered, _ = cmd.Flags().GetBool("unanswered")
	opts.Limit, _ = cmd.Flags().GetInt("limit")
	if opts.Limit < 0 {
		return inputError(fmt.Errorf("--limit must be >= 0"))
	}

	store, err := openBank()
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		if results == nil {
			results = []bank.SearchResult{}
		}
		return report.WriteJSON(os.Stdout, results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "%-24s  %-6s  %s\n", "Key", "Answer", "Question")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, r := range results {
		answer := string(r.CorrectAnswer)
		if answer == "" {
			answer = "-"
		}
		fmt.Fprintf(os.Stdout, "%-24s  %-6s  %s\n", r.Key, answer, truncate(r.Text, 56))
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- answer subcommand ---

var bankAnswerCmd = &cobra.Command{
	Use:   "answer CATEGORY QUESTION_ID LETTER",
	Short: "Set the correct answer of a question",
	Long: `Answer records the correct option of a question. The letter must be
one of the question's option labels; an empty letter ("") clears the answer.`,
	Args: exactArgs(3),
	RunE: runBankAnswer,
}

func runBankAnswer(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[1])
	if err != nil {
		return inputError(fmt.Errorf("question id %q is not a number", args[1]))
	}

	store, err := openBank()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SetAnswer(cmd.Context(), args[0], id, args[2]); err != nil {
		return err
	}
	return report.WriteJSON(os.Stdout, successResponse{
		Success: true,
		Message: fmt.Sprintf("%s: answer set", bank.QuestionKey(args[0], id)),
	})
}

// --- status subcommand ---

var bankStatusCmd = &cobra.Command{
	Use:   "status CATEGORY actief|non-actief|binnenkort",
	Short: "Set the status of a category",
	Args:  exactArgs(2),
	RunE:  runBankStatus,
}

func runBankStatus(cmd *cobra.Command, args []string) error {
	status, err := bank.ParseStatus(args[1])
	if err != nil {
		return err
	}

	store, err := openBank()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SetStatus(cmd.Context(), args[0], status); err != nil {
		return err
	}
	return report.WriteJSON(os.Stdout, successResponse{
		Success: true,
		Message: fmt.Sprintf("%s: %s", args[0], status),
	})
}

// --- export subcommand ---

var bankExportCmd = &cobra.Command{
	Use:   "export CATEGORY",
	Short: "Export a category as a parsed file",
	Long: `Export writes a category back in the parsed-file format, including the
answers filled in since the import. Without --out the document is printed to
stdout.`,
	Args: exactArgs(1),
	RunE: runBankExport,
}

func runBankExport(cmd *cobra.Command, args []string) error {
	outPath, _ := cmd.Flags().GetString("out")
	format := cfg.Output.Format
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		format = types.OutputFormat(strings.ToLower(f))
	}
	switch format {
	case types.FormatJSON, types.FormatYAML:
	default:
		return inputError(fmt.Errorf("unsupported format %q (json, yaml)", format))
	}

	store, err := openBank()
	if err != nil {
		return err
	}
	defer store.Close()

	pf, err := store.Export(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if outPath == "" {
		return report.Write(os.Stdout, format, pf)
	}
	if err := report.WriteFile(outPath, format, pf); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "exported %s (%d questions) to %s\n", args[0], len(pf.Questions), outPath)
	return report.WriteJSON(os.Stdout, successResponse{Success: true, Message: outPath})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	bankImportCmd.Flags().String("category", "", "category id (lowercase letters and digits; '-' and '_' only inside)")
	bankImportCmd.Flags().String("name", "", "category name (default: the series name of the file)")
	bankImportCmd.Flags().String("description", "", "category description")
	bankImportCmd.Flags().Bool("force", false, "import even when the file is unchanged")

	bankListCmd.Flags().Bool("json", false, "output categories as JSON")

	bankSearchCmd.Flags().String("category", "", "restrict to one category")
	bankSearchCmd.Flags().Bool("unanswered", false, "only questions without a correct answer")
	bankSearchCmd.Flags().Int("limit", 0, "maximum number of results (0 = default of 50)")
	bankSearchCmd.Flags().Bool("json", false, "output results as JSON")

	bankExportCmd.Flags().String("format", "", "json or yaml (default: output.format)")
	bankExportCmd.Flags().String("out", "", "write to this file instead of stdout")

	bankCmd.AddCommand(bankImportCmd)
	bankCmd.AddCommand(bankListCmd)
	bankCmd.AddCommand(bankSearchCmd)
	bankCmd.AddCommand(bankAnswerCmd)
	bankCmd.AddCommand(bankStatusCmd)
	bankCmd.AddCommand(bankExportCmd)

	rootCmd.AddCommand(bankCmd)
}
