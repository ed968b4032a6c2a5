// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bank

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/quizpdf/pkg/types"
)

func testSetup(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "bank", "quizpdf.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func opts(labels ...string) types.Options {
	var out types.Options
	for _, l := range labels {
		out = append(out, types.Option{Label: l, Text: "optie " + l})
	}
	return out
}

func sampleFile() types.ParsedFile {
	return types.ParsedFile{
		Questions: []types.Question{
			{ID: 3, Text: "Wat is de hoofdstad van Nederland?", Options: types.Options{
				{Label: "A", Text: "Amsterdam"}, {Label: "B", Text: "Utrecht"}, {Label: "C", Text: "Den Haag"},
			}, CorrectAnswer: "A"},
			{ID: 1, Text: "Welk bord ziet u?", Options: opts("A", "B"), NeedsImage: true,
				ImageDescription: "verkeersbord", OptionImages: map[string]string{"B": "stopbord"}},
			{ID: 7, Text: "Hoe snel mag u rijden?", Options: opts("A", "B", "C", "D")},
		},
		QuestionSets: types.QuestionSets{
			{Name: "reeks-1", QuestionIDs: []int{3, 1}},
			{Name: "reeks-2", QuestionIDs: []int{7}},
		},
		Metadata: types.Metadata{
			TotalQuestions:  3,
			QuestionsPerSet: 2,
			NumberOfSets:    2,
			DroppedBlocks:   1,
			SeriesName:      "Hoofdstuk 4",
			Source:          "hoofdstuk4.pdf",
		},
	}
}

func importSample(t *testing.T, s *Store, category string) ImportResult {
	t.Helper()
	res, err := s.Import(context.Background(), ImportOptions{
		Category: category,
		Source:   "hoofdstuk4_parsed.json",
		ModTime:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}, sampleFile())
	require.NoError(t, err)
	return res
}

func TestImport(t *testing.T) {
	s := testSetup(t)
	res := importSample(t, s, "verkeer")

	assert.Len(t, res.ID, 26)
	assert.Equal(t, 3, res.Questions)
	assert.Equal(t, 2, res.Sets)
	assert.Equal(t, 1, res.Dropped)
	assert.False(t, res.Updated)
	assert.False(t, res.Skipped)

	cats, err := s.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, Category{
		ID:         "verkeer",
		Name:       "Hoofdstuk 4",
		Status:     StatusActive,
		SeriesName: "Hoofdstuk 4",
		Source:     "hoofdstuk4_parsed.json",
		Questions:  3,
		Unanswered: 2,
	}, cats[0])
}

func TestOpen_AddsMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oud.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE questions (
		key TEXT PRIMARY KEY, category_id TEXT NOT NULL, position INTEGER NOT NULL,
		number INTEGER NOT NULL, text TEXT NOT NULL, options TEXT NOT NULL,
		correct_answer TEXT, needs_image INTEGER NOT NULL DEFAULT 0,
		image_description TEXT NOT NULL DEFAULT '', option_images TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE imports (
		id TEXT PRIMARY KEY, category_id TEXT NOT NULL, source TEXT NOT NULL,
		file_mod_time TEXT NOT NULL, questions INTEGER NOT NULL, dropped INTEGER NOT NULL)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	importSample(t, s, "verkeer")
	results, err := s.Search(context.Background(), SearchOptions{Text: "Den Haag"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestImport_UnchangedSourceSkipped(t *testing.T) {
	s := testSetup(t)
	first := importSample(t, s, "verkeer")

	again := importSample(t, s, "verkeer")
	assert.True(t, again.Skipped)
	assert.True(t, again.Updated)
	assert.Empty(t, again.ID)

	forced, err := s.Import(context.Background(), ImportOptions{
		Category: "verkeer",
		Source:   "hoofdstuk4_parsed.json",
		ModTime:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Force:    true,
	}, sampleFile())
	require.NoError(t, err)
	assert.False(t, forced.Skipped)
	assert.Greater(t, forced.ID, first.ID)
}

func TestImport_ReplacesQuestionsKeepsStatus(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()
	importSample(t, s, "verkeer")
	require.NoError(t, s.SetStatus(ctx, "verkeer", StatusUpcoming))

	pf := types.ParsedFile{
		Questions:    []types.Question{{ID: 1, Text: "Nieuw", Options: opts("A", "B"), CorrectAnswer: "B"}},
		QuestionSets: types.QuestionSets{{Name: "reeks-1", QuestionIDs: []int{1}}},
	}
	res, err := s.Import(ctx, ImportOptions{Category: "verkeer", Name: "Verkeer", Source: "nieuw.json"}, pf)
	require.NoError(t, err)
	assert.True(t, res.Updated)

	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Verkeer", cats[0].Name)
	assert.Equal(t, StatusUpcoming, cats[0].Status)
	assert.Equal(t, 1, cats[0].Questions)
	assert.Equal(t, 0, cats[0].Unanswered)
}

func TestImport_Invalid(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	_, err := s.Import(ctx, ImportOptions{Category: "Verkeer Regels"}, sampleFile())
	assert.ErrorIs(t, err, ErrInvalidCategory)

	bad := sampleFile()
	bad.QuestionSets = append(bad.QuestionSets, types.QuestionSet{Name: "reeks-3", QuestionIDs: []int{99}})
	_, err = s.Import(ctx, ImportOptions{Category: "verkeer"}, bad)
	assert.Error(t, err)

	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestSearch(t *testing.T) {
	s := testSetup(t)
	importSample(t, s, "verkeer")
	importSample(t, s, "aardrijkskunde")

	tests := []struct {
		name     string
		opts     SearchOptions
		wantKeys []string
	}{
		{
			name:     "all questions in category order",
			opts:     SearchOptions{Category: "verkeer"},
			wantKeys: []string{"verkeer-3", "verkeer-1", "verkeer-7"},
		},
		{
			name:     "stem substring, case-insensitive",
			opts:     SearchOptions{Text: "HOOFDSTAD"},
			wantKeys: []string{"aardrijkskunde-3", "verkeer-3"},
		},
		{
			name:     "option text",
			opts:     SearchOptions{Text: "Den Haag", Category: "verkeer"},
			wantKeys: []string{"verkeer-3"},
		},
		{
			name:     "unanswered only",
			opts:     SearchOptions{Category: "verkeer", Unanswered: true},
			wantKeys: []string{"verkeer-1", "verkeer-7"},
		},
		{
			name:     "like wildcards are literal",
			opts:     SearchOptions{Text: "%"},
			wantKeys: nil,
		},
		{
			name:     "limit",
			opts:     SearchOptions{Limit: 2},
			wantKeys: []string{"aardrijkskunde-3", "aardrijkskunde-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := s.Search(context.Background(), tt.opts)
			require.NoError(t, err)
			var keys []string
			for _, r := range results {
				keys = append(keys, r.Key)
			}
			assert.Equal(t, tt.wantKeys, keys)
		})
	}
}

func TestSearch_OptionText(t *testing.T) {
	s := testSetup(t)
	pf := types.ParsedFile{
		Questions: []types.Question{
			{ID: 1, Text: "Wie is de kat?", Options: types.Options{
				{Label: "A", Text: "Tom & Jerry"}, {Label: "B", Text: "Garfield"},
			}},
			{ID: 2, Text: "Wat zegt u?", Options: types.Options{
				{Label: "A", Text: `Zeg "hallo"`}, {Label: "B", Text: "Niets <stil>"},
			}},
		},
		QuestionSets: types.QuestionSets{{Name: "reeks-1", QuestionIDs: []int{1, 2}}},
	}
	_, err := s.Import(context.Background(), ImportOptions{Category: "tekst", Source: "tekst.json"}, pf)
	require.NoError(t, err)

	tests := []struct {
		name    string
		text    string
		wantIDs []int
	}{
		{name: "ampersand", text: "Tom & Jerry", wantIDs: []int{1}},
		{name: "quoted text", text: `"hallo"`, wantIDs: []int{2}},
		{name: "angle brackets", text: "<stil>", wantIDs: []int{2}},
		{name: "option prefix", text: "garf", wantIDs: []int{1}},
		{name: "single letter does not match labels", text: "b", wantIDs: nil},
		{name: "encoding syntax does not match", text: `":"`, wantIDs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := s.Search(context.Background(), SearchOptions{Text: tt.text})
			require.NoError(t, err)
			var ids []int
			for _, r := range results {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestSearch_RestoresQuestion(t *testing.T) {
	s := testSetup(t)
	importSample(t, s, "verkeer")

	results, err := s.Search(context.Background(), SearchOptions{Category: "verkeer", Text: "bord"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, sampleFile().Questions[1], results[0].Question)
}

func TestSetAnswer(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()
	importSample(t, s, "verkeer")

	tests := []struct {
		name    string
		id      int
		label   string
		wantErr error
		want    types.Answer
	}{
		{name: "lowercase label accepted", id: 7, label: "d", want: "D"},
		{name: "label not an option", id: 1, label: "C", wantErr: ErrInvalidAnswer},
		{name: "not a label", id: 1, label: "AB", wantErr: ErrInvalidAnswer},
		{name: "unknown question", id: 42, label: "A", wantErr: ErrNotFound},
		{name: "empty clears", id: 3, label: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.SetAnswer(ctx, "verkeer", tt.id, tt.label)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			pf, err := s.Export(ctx, "verkeer")
			require.NoError(t, err)
			for _, q := range pf.Questions {
				if q.ID == tt.id {
					assert.Equal(t, tt.want, q.CorrectAnswer)
				}
			}
		})
	}
}

func TestSetStatus(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()
	importSample(t, s, "verkeer")

	assert.ErrorIs(t, s.SetStatus(ctx, "verkeer", Status("gepubliceerd")), ErrInvalidStatus)
	assert.ErrorIs(t, s.SetStatus(ctx, "onbekend", StatusInactive), ErrNotFound)
	require.NoError(t, s.SetStatus(ctx, "verkeer", StatusInactive))

	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusInactive, cats[0].Status)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" Non-Actief ")
	require.NoError(t, err)
	assert.Equal(t, StatusInactive, st)

	_, err = ParseStatus("live")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestExport_RoundTrip(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()
	importSample(t, s, "verkeer")

	pf, err := s.Export(ctx, "verkeer")
	require.NoError(t, err)

	want := sampleFile()
	want.Metadata.Source = "hoofdstuk4_parsed.json"
	assert.Equal(t, want, pf)

	got, err := json.Marshal(pf)
	require.NoError(t, err)
	expected, err := json.Marshal(want)
	require.NoError(t, err)
	assert.JSONEq(t, string(expected), string(got))
}

func TestExport_KeepsImportedMetadata(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	pf := sampleFile()
	pf.QuestionSets = types.QuestionSets{{Name: "reeks-1", QuestionIDs: []int{3, 1, 7}}}
	pf.Metadata.QuestionsPerSet = 40
	pf.Metadata.NumberOfSets = 1
	pf.Metadata.Pages = 12
	_, err := s.Import(ctx, ImportOptions{Category: "verkeer", Source: "hoofdstuk4_parsed.json"}, pf)
	require.NoError(t, err)

	got, err := s.Export(ctx, "verkeer")
	require.NoError(t, err)
	assert.Equal(t, 40, got.Metadata.QuestionsPerSet)
	assert.Equal(t, 12, got.Metadata.Pages)
	assert.Equal(t, 3, got.Metadata.TotalQuestions)
}

func TestExport_UnknownCategory(t *testing.T) {
	s := testSetup(t)
	_, err := s.Export(context.Background(), "onbekend")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckCategory(t *testing.T) {
	for _, ok := range []string{"verkeer", "b2", "hoofdstuk-4", "deel_1"} {
		assert.NoError(t, CheckCategory(ok), ok)
	}
	for _, bad := range []string{"", "-x", "a-", "deel_", "Verkeer", "a b", "ö"} {
		assert.ErrorIs(t, CheckCategory(bad), ErrInvalidCategory, bad)
	}
}
