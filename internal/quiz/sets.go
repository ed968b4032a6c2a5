// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quiz

import (
	"fmt"

	"github.com/pdiddy/quizpdf/pkg/types"
)

// DefaultSetPrefix names the sets "reeks-1", "reeks-2", ...
const DefaultSetPrefix = "reeks"

// DefaultPerSet is the number of questions per set.
const DefaultPerSet = 40

// SplitIntoSets pages questions into contiguous sets of pageSize, the last
// possibly shorter, named reeks-1 through reeks-N.
func SplitIntoSets(questions []types.Question, pageSize int) (types.QuestionSets, error) {
	return SplitIntoNamedSets(questions, pageSize, DefaultSetPrefix)
}

// SplitIntoNamedSets is SplitIntoSets with a custom name prefix.
func SplitIntoNamedSets(questions []types.Question, pageSize int, prefix string) (types.QuestionSets, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", pageSize)
	}
	if prefix == "" {
		prefix = DefaultSetPrefix
	}
	sets := make(types.QuestionSets, 0, (len(questions)+pageSize-1)/pageSize)
	for start := 0; start < len(questions); start += pageSize {
		end := min(start+pageSize, len(questions))
		ids := make([]int, 0, end-start)
		for _, q := range questions[start:end] {
			ids = append(ids, q.ID)
		}
		sets = append(sets, types.QuestionSet{
			Name:        fmt.Sprintf("%s-%d", prefix, len(sets)+1),
			QuestionIDs: ids,
		})
	}
	return sets, nil
}

// BuildParsedFile assembles the output document for a parse result.
func BuildParsedFile(res Result, pageSize int, prefix string) (types.ParsedFile, error) {
	sets, err := SplitIntoNamedSets(res.Questions, pageSize, prefix)
	if err != nil {
		return types.ParsedFile{}, err
	}
	questions := res.Questions
	if questions == nil {
		questions = []types.Question{}
	}
	pf := types.ParsedFile{
		Questions:    questions,
		QuestionSets: sets,
		Metadata: types.Metadata{
			TotalQuestions:  len(questions),
			QuestionsPerSet: pageSize,
			NumberOfSets:    len(sets),
			DroppedBlocks:   len(res.Dropped),
			SeriesName:      res.SeriesName,
		},
	}
	if err := pf.Validate(); err != nil {
		return types.ParsedFile{}, fmt.Errorf("validating parsed file: %w", err)
	}
	return pf, nil
}
