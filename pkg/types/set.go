// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.yaml.in/yaml/v3"
)

// QuestionSet is a named batch of question IDs, used to page output.
type QuestionSet struct {
	Name        string `json:"name" yaml:"name"`
	QuestionIDs []int  `json:"questionIds" yaml:"questionIds"`
}

// QuestionSets is an ordered list of sets. It serializes as an object keyed
// by set name that keeps chunk order ("reeks-2" before "reeks-10").
type QuestionSets []QuestionSet

// IDs returns the concatenated question IDs of all sets in order.
func (s QuestionSets) IDs() []int {
	var ids []int
	for _, set := range s {
		ids = append(ids, set.QuestionIDs...)
	}
	return ids
}

// MarshalJSON writes the sets as an ordered JSON object.
func (s QuestionSets) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, set := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(set.Name)
		if err != nil {
			return nil, err
		}
		ids := set.QuestionIDs
		if ids == nil {
			ids = []int{}
		}
		val, err := json.Marshal(ids)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an ordered JSON object of set name to ID list.
func (s *QuestionSets) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}
	var out QuestionSets
	err := decodeOrderedObject(data, func(key string, dec *json.Decoder) error {
		var ids []int
		if err := dec.Decode(&ids); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		out = append(out, QuestionSet{Name: key, QuestionIDs: ids})
		return nil
	})
	if err != nil {
		return fmt.Errorf("decoding question sets: %w", err)
	}
	*s = out
	return nil
}

// MarshalYAML writes the sets as an ordered YAML mapping with flow-style
// ID lists.
func (s QuestionSets) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, set := range s {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, id := range set.QuestionIDs {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(id)})
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: set.Name},
			seq,
		)
	}
	return node, nil
}

// UnmarshalYAML reads an ordered YAML mapping of set name to ID list.
func (s *QuestionSets) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("question sets: expected mapping, got kind %d", value.Kind)
	}
	out := make(QuestionSets, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var ids []int
		if err := value.Content[i+1].Decode(&ids); err != nil {
			return fmt.Errorf("set %s: %w", value.Content[i].Value, err)
		}
		out = append(out, QuestionSet{Name: value.Content[i].Value, QuestionIDs: ids})
	}
	*s = out
	return nil
}

// Metadata summarizes a parse run.
type Metadata struct {
	TotalQuestions  int    `json:"totalQuestions" yaml:"totalQuestions"`
	QuestionsPerSet int    `json:"questionsPerSet" yaml:"questionsPerSet"`
	NumberOfSets    int    `json:"numberOfSets" yaml:"numberOfSets"`
	DroppedBlocks   int    `json:"droppedBlocks" yaml:"droppedBlocks"`
	SeriesName      string `json:"seriesName,omitempty" yaml:"seriesName,omitempty"`
	Source          string `json:"source,omitempty" yaml:"source,omitempty"`
	Pages           int    `json:"pages,omitempty" yaml:"pages,omitempty"`
}

// ParsedFile is the document written next to a parsed input and read back
// by the question bank.
type ParsedFile struct {
	Questions    []Question   `json:"questions" yaml:"questions"`
	QuestionSets QuestionSets `json:"questionSets" yaml:"questionSets"`
	Metadata     Metadata     `json:"metadata" yaml:"metadata"`
}

// Validate checks every question and that each set only references
// questions present in the file.
func (f ParsedFile) Validate() error {
	ids := make(map[int]bool, len(f.Questions))
	for _, q := range f.Questions {
		if err := q.Validate(); err != nil {
			return err
		}
		if ids[q.ID] {
			return fmt.Errorf("duplicate question id %d", q.ID)
		}
		ids[q.ID] = true
	}
	for _, set := range f.QuestionSets {
		for _, id := range set.QuestionIDs {
			if !ids[id] {
				return fmt.Errorf("set %s references unknown question %d", set.Name, id)
			}
		}
	}
	return nil
}
