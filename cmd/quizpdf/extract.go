// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/quizpdf/internal/logger"
	"github.com/pdiddy/quizpdf/internal/pdftext"
	"github.com/pdiddy/quizpdf/internal/report"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file.pdf]",
	Short: "Extract the plain text of a PDF",
	Long: `Extract reads a PDF from a file or from a base64 payload (--base64, or
--base64 - to read the payload from stdin) and prints its text, page by page,
as {"success": true, "text": "...", "pages": N}.

Encrypted PDFs are opened with the pdf-password secret.`,
	Args: rangeArgs(0, 1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	payload, _ := cmd.Flags().GetString("base64")
	textOut, _ := cmd.Flags().GetString("text-out")

	var (
		src *pdftext.Source
		err error
	)
	switch {
	case payload != "" && len(args) > 0:
		return inputError(fmt.Errorf("give either a file or --base64, not both"))
	case payload != "":
		src, err = pdftext.FromPayload(payload, os.Stdin)
	case len(args) == 1:
		src, err = pdftext.Open(args[0])
	default:
		return inputError(fmt.Errorf("a PDF file or --base64 payload is required"))
	}
	if err != nil {
		return err
	}
	if src.Kind != pdftext.KindPDF {
		return fmt.Errorf("%w: %s", pdftext.ErrNotPDF, src.Name)
	}

	ex, err := pdftext.New(cfg.Extract, logger.Get())
	if err != nil {
		return err
	}
	content, err := src.Content(cmd.Context(), ex)
	if err != nil {
		return err
	}
	logger.Get().Info("extracted text",
		zap.String("source", src.Name),
		zap.String("backend", ex.Name()),
		zap.Int("pages", content.Pages),
	)

	if textOut != "" {
		if err := os.WriteFile(textOut, []byte(content.Text), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", textOut, err)
		}
	}

	return report.WriteJSON(os.Stdout, report.ExtractResponse{
		Success: true,
		Text:    content.Text,
		Pages:   content.Pages,
	})
}

func init() {
	extractCmd.Flags().String("base64", "", "base64-encoded PDF payload, or - to read it from stdin")
	extractCmd.Flags().String("text-out", "", "also write the extracted text to this file")

	rootCmd.AddCommand(extractCmd)
}
