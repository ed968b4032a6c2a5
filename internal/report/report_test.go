// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/quizpdf/internal/bank"
	"github.com/pdiddy/quizpdf/internal/pdftext"
	"github.com/pdiddy/quizpdf/pkg/types"
)

func sampleFile() types.ParsedFile {
	return types.ParsedFile{
		Questions: []types.Question{
			{ID: 1, Text: "What is 2+2?", Options: types.Options{{Label: "A", Text: "3"}, {Label: "B", Text: "4"}, {Label: "C", Text: "5"}}, CorrectAnswer: "B"},
			{ID: 2, Text: "Wat betekent dit bord?", Options: types.Options{{Label: "B", Text: "stop"}, {Label: "A", Text: "voorrang <geven>"}}},
		},
		QuestionSets: types.QuestionSets{{Name: "reeks-1", QuestionIDs: []int{1}}, {Name: "reeks-2", QuestionIDs: []int{2}}},
		Metadata:     types.Metadata{TotalQuestions: 2, QuestionsPerSet: 1, NumberOfSets: 2},
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{errors.New("boom"), ExitFailure},
		{fmt.Errorf("flag: %w", ErrInput), ExitInput},
		{fmt.Errorf("x: %w", pdftext.ErrInvalidBase64), ExitInput},
		{fmt.Errorf("x: %w", pdftext.ErrNotPDF), ExitInput},
		{fmt.Errorf("x: %w", pdftext.ErrInvalidText), ExitInput},
		{fmt.Errorf("open: %w", os.ErrNotExist), ExitInput},
		{fmt.Errorf("question 4: %w", bank.ErrNotFound), ExitInput},
		{fmt.Errorf("%w \"D\"", bank.ErrInvalidAnswer), ExitInput},
		{fmt.Errorf("extracting: %w", pdftext.ErrDecode), ExitDecode},
		{fmt.Errorf("backend: %w", pdftext.ErrBackendUnavailable), ExitMissingDependency},
	}
	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input  string
		format types.OutputFormat
		want   string
	}{
		{"vragen.txt", types.FormatJSON, "vragen_parsed.json"},
		{"dir/examen.pdf", types.FormatJSON, filepath.Join("dir", "examen_parsed.json")},
		{"dir/examen.v2.txt", types.FormatYAML, filepath.Join("dir", "examen.v2_parsed.yaml")},
		{"noext", types.FormatJSON, "noext_parsed.json"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputPath(tt.input, tt.format))
		})
	}
}

func TestWriteJSON_KeepsCharacters(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleFile()))

	out := buf.String()
	assert.Contains(t, out, "voorrang <geven>")
	assert.Contains(t, out, `"correctAnswer": null`)
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Less(t, strings.Index(out, `"B": "stop"`), strings.Index(out, `"A": "voorrang`), "options keep appearance order")
}

func TestWriteFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, format := range []types.OutputFormat{types.FormatJSON, types.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			path := OutputPath(filepath.Join(dir, "nested", "vragen.txt"), format)
			require.NoError(t, WriteFile(path, format, sampleFile()))

			got, err := ReadParsedFile(path)
			require.NoError(t, err)
			assert.Equal(t, sampleFile(), got)
		})
	}
}

func TestEncode_Deterministic(t *testing.T) {
	a, err := Encode(types.FormatJSON, sampleFile())
	require.NoError(t, err)
	b, err := Encode(types.FormatJSON, sampleFile())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = Encode("xml", sampleFile())
	assert.ErrorIs(t, err, ErrInput)
}

func TestReadParsedFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad_parsed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"questions":[{"id":1,"question":"Q","options":{"A":"a"},"correctAnswer":null}]}`), 0o644))

	_, err := ReadParsedFile(path)
	assert.ErrorIs(t, err, ErrInput)
}

func TestNewError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewError(errors.New("file not found"))))
	assert.JSONEq(t, `{"success":false,"error":"file not found"}`, buf.String())
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	s := NewSummary(false)
	s.Parse(&buf, ParseResponse{
		Questions:      sampleFile().Questions,
		TotalQuestions: 2,
		DroppedBlocks:  3,
		SeriesName:     "Hoofdstuk 1",
		OutputFile:     "vragen_parsed.json",
	})
	out := buf.String()
	assert.Contains(t, out, "Hoofdstuk 1\n")
	assert.Contains(t, out, "questions: 2")
	assert.Contains(t, out, "dropped:   3")
	assert.Contains(t, out, "no answer: 1")
	assert.Contains(t, out, "written:   vragen_parsed.json")
	assert.NotContains(t, out, "\x1b[")

	buf.Reset()
	NewSummary(true).Batch(&buf, BatchResponse{Parsed: 2, Skipped: 1, Failed: 1})
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "(total: 4)")
}
