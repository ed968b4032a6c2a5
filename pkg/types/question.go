// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// MaxLabel is the highest option label a question may carry.
const MaxLabel = 'F'

// Option is one answer choice of a multiple-choice question.
type Option struct {
	// Label is a single uppercase letter A-F.
	Label string `json:"label" yaml:"label"`

	// Text is the option text, trimmed but otherwise verbatim.
	Text string `json:"text" yaml:"text"`
}

// Options is an ordered list of answer choices. It serializes as an object
// keyed by label, in appearance order: {"A": "...", "B": "..."}.
type Options []Option

// Labels returns the option labels in order.
func (o Options) Labels() []string {
	labels := make([]string, len(o))
	for i, opt := range o {
		labels[i] = opt.Label
	}
	return labels
}

// Get returns the text for label and whether it exists.
func (o Options) Get(label string) (string, bool) {
	for _, opt := range o {
		if opt.Label == label {
			return opt.Text, true
		}
	}
	return "", false
}

// Has reports whether an option with label exists.
func (o Options) Has(label string) bool {
	_, ok := o.Get(label)
	return ok
}

// MarshalJSON writes the options as an ordered JSON object.
func (o Options) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, opt := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(opt.Label)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(opt.Text)
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

// UnmarshalJSON reads an ordered JSON object, keeping key order.
func (o *Options) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = nil
		return nil
	}
	var out Options
	err := decodeOrderedObject(data, func(key string, dec *json.Decoder) error {
		var text string
		if err := dec.Decode(&text); err != nil {
			return fmt.Errorf("option %s: %w", key, err)
		}
		out = append(out, Option{Label: key, Text: text})
		return nil
	})
	if err != nil {
		return fmt.Errorf("decoding options: %w", err)
	}
	*o = out
	return nil
}

// MarshalYAML writes the options as an ordered YAML mapping.
func (o Options) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, opt := range o {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: opt.Label},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: opt.Text},
		)
	}
	return node, nil
}

// UnmarshalYAML reads an ordered YAML mapping.
func (o *Options) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("options: expected mapping, got kind %d", value.Kind)
	}
	out := make(Options, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		out = append(out, Option{Label: value.Content[i].Value, Text: value.Content[i+1].Value})
	}
	*o = out
	return nil
}

// Answer is the label of the correct option. The empty Answer means the
// answer is unknown and serializes as JSON null.
type Answer string

// MarshalJSON writes null for an unknown answer.
func (a Answer) MarshalJSON() ([]byte, error) {
	if a == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(a))
}

// UnmarshalJSON accepts a string or null.
func (a *Answer) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding answer: %w", err)
	}
	*a = Answer(strings.ToUpper(s))
	return nil
}

// MarshalYAML writes null for an unknown answer.
func (a Answer) MarshalYAML() (any, error) {
	if a == "" {
		return nil, nil
	}
	return string(a), nil
}

// Question is a multiple-choice question parsed from extracted text.
type Question struct {
	// ID is the number the question carries in the source text.
	ID int `json:"id" yaml:"id"`

	// Text is the question stem.
	Text string `json:"question" yaml:"question"`

	// Options are the answer choices in appearance order.
	Options Options `json:"options" yaml:"options"`

	// CorrectAnswer is the label of the correct option, or empty when it
	// still has to be filled in by hand.
	CorrectAnswer Answer `json:"correctAnswer" yaml:"correctAnswer"`

	// NeedsImage is set when the stem carried an image placeholder.
	NeedsImage bool `json:"needsImage,omitempty" yaml:"needsImage,omitempty"`

	// ImageDescription describes the image the stem refers to.
	ImageDescription string `json:"imageDescription,omitempty" yaml:"imageDescription,omitempty"`

	// OptionImages maps option labels to image descriptions.
	OptionImages map[string]string `json:"optionImages,omitempty" yaml:"optionImages,omitempty"`
}

// Validate checks the question invariants: non-empty stem, at least two
// options with unique single-letter labels A-F, and a correct answer (when
// set) that names one of the options.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question %d: empty question text", q.ID)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("question %d: %d option(s), need at least 2", q.ID, len(q.Options))
	}
	seen := make(map[string]bool, len(q.Options))
	for _, opt := range q.Options {
		if !IsLabel(opt.Label) {
			return fmt.Errorf("question %d: invalid option label %q", q.ID, opt.Label)
		}
		if seen[opt.Label] {
			return fmt.Errorf("question %d: duplicate option label %q", q.ID, opt.Label)
		}
		seen[opt.Label] = true
	}
	if q.CorrectAnswer != "" && !seen[string(q.CorrectAnswer)] {
		return fmt.Errorf("question %d: correct answer %q is not an option", q.ID, q.CorrectAnswer)
	}
	return nil
}

// IsLabel reports whether s is a single uppercase option letter A-F.
func IsLabel(s string) bool {
	return len(s) == 1 && s[0] >= 'A' && s[0] <= MaxLabel
}

// decodeOrderedObject walks the keys of a JSON object in document order,
// calling fn with the decoder positioned at each value.
func decodeOrderedObject(data []byte, fn func(key string, dec *json.Decoder) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected string key, got %v", tok)
		}
		if err := fn(key, dec); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
