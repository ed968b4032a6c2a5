// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report encodes command results as JSON or YAML, derives output
// paths and maps errors to process exit codes.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/quizpdf/internal/bank"
	"github.com/pdiddy/quizpdf/internal/pdftext"
	"github.com/pdiddy/quizpdf/pkg/types"
)

// ErrInput marks errors in the command input: bad flags, wrong arguments.
var ErrInput = errors.New("invalid input")

// Exit codes.
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitInput             = 2
	ExitDecode            = 3
	ExitMissingDependency = 4
)

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, pdftext.ErrBackendUnavailable):
		return ExitMissingDependency
	case errors.Is(err, pdftext.ErrDecode):
		return ExitDecode
	case errors.Is(err, ErrInput),
		errors.Is(err, pdftext.ErrInvalidBase64),
		errors.Is(err, pdftext.ErrNotPDF),
		errors.Is(err, pdftext.ErrInvalidText),
		errors.Is(err, bank.ErrNotFound),
		errors.Is(err, bank.ErrInvalidAnswer),
		errors.Is(err, bank.ErrInvalidStatus),
		errors.Is(err, bank.ErrInvalidCategory),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fs.ErrPermission):
		return ExitInput
	default:
		return ExitFailure
	}
}

// ExtractResponse is printed by the extract command.
type ExtractResponse struct {
	Success bool   `json:"success" yaml:"success"`
	Text    string `json:"text" yaml:"text"`
	Pages   int    `json:"pages" yaml:"pages"`
}

// ParseResponse is printed after parsing a single input.
type ParseResponse struct {
	Success        bool             `json:"success" yaml:"success"`
	Questions      []types.Question `json:"questions" yaml:"questions"`
	TotalQuestions int              `json:"totalQuestions" yaml:"totalQuestions"`
	DroppedBlocks  int              `json:"droppedBlocks" yaml:"droppedBlocks"`
	SeriesName     string           `json:"seriesName,omitempty" yaml:"seriesName,omitempty"`
	OutputFile     string           `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

// FileResult is the outcome for one input of a batch.
type FileResult struct {
	Input     string `json:"input" yaml:"input"`
	Output    string `json:"output,omitempty" yaml:"output,omitempty"`
	Status    string `json:"status" yaml:"status"`
	Questions int    `json:"questions" yaml:"questions"`
	Dropped   int    `json:"droppedBlocks" yaml:"droppedBlocks"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// BatchResponse is printed after parsing several inputs.
type BatchResponse struct {
	Success bool         `json:"success" yaml:"success"`
	Files   []FileResult `json:"files" yaml:"files"`
	Parsed  int          `json:"parsed" yaml:"parsed"`
	Skipped int          `json:"skipped" yaml:"skipped"`
	Failed  int          `json:"failed" yaml:"failed"`
}

// ErrorResponse is printed when a command fails.
type ErrorResponse struct {
	Success bool   `json:"success" yaml:"success"`
	Error   string `json:"error" yaml:"error"`
}

// NewError wraps err for printing.
func NewError(err error) ErrorResponse {
	return ErrorResponse{Success: false, Error: err.Error()}
}

// WriteJSON writes v as indented JSON followed by a newline. Non-ASCII and
// HTML characters are written as is.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// Encode serializes v in format.
func Encode(format types.OutputFormat, v any) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case types.FormatJSON, "":
		if err := WriteJSON(&buf, v); err != nil {
			return nil, err
		}
	case types.FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("encoding YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown output format %q", ErrInput, format)
	}
	return buf.Bytes(), nil
}

// Write serializes v in format to w.
func Write(w io.Writer, format types.OutputFormat, v any) error {
	data, err := Encode(format, v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteFile serializes v in format to path, creating parent directories.
func WriteFile(path string, format types.OutputFormat, v any) error {
	data, err := Encode(format, v)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadParsedFile loads a parsed-question document written by WriteFile,
// picking the decoder from the file extension.
func ReadParsedFile(path string) (types.ParsedFile, error) {
	var pf types.ParsedFile
	data, err := os.ReadFile(path)
	if err != nil {
		return pf, fmt.Errorf("reading %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &pf)
	default:
		err = json.Unmarshal(data, &pf)
	}
	if err != nil {
		return pf, fmt.Errorf("%w: decoding %s: %v", ErrInput, path, err)
	}
	if err := pf.Validate(); err != nil {
		return pf, fmt.Errorf("%w: %s: %v", ErrInput, path, err)
	}
	return pf, nil
}

// Extension returns the file extension for format.
func Extension(format types.OutputFormat) string {
	if format == types.FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// OutputPath derives the parsed file path for input: the final extension
// is replaced by "_parsed" and the format's extension.
func OutputPath(input string, format types.OutputFormat) string {
	dir, base := filepath.Split(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return dir + base + "_parsed" + Extension(format)
}
