// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/quizpdf/pkg/types"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	if yaml != "" {
		path := filepath.Join(t.TempDir(), "quizpdf.yaml")
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
		v.SetConfigFile(path)
		require.NoError(t, v.ReadInConfig())
	}
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, types.Config{
		Parser: types.ParserConfig{
			Mode:                 types.ModeFixed,
			Labels:               "ABC",
			RequireCorrectAnswer: true,
			DetectCorrectAnswer:  true,
			MinOptions:           3,
		},
		Sets:    types.SetConfig{PerSet: 40, Prefix: "reeks"},
		Extract: types.ExtractionConfig{Backend: types.BackendNative, Validate: true},
		Output:  types.OutputConfig{Format: types.FormatJSON},
		Bank:    types.BankConfig{Path: "bank/quizpdf.db"},
		Log:     types.LogConfig{Level: "info", Format: "console"},
	}, cfg)
}

func TestLoad_ScanPresetAndOverrides(t *testing.T) {
	cfg, err := Load(newViper(t, `
parser:
  mode: Scan
  detect_answer: true
sets:
  per_set: 25
  prefix: set
output:
  format: YAML
`))
	require.NoError(t, err)

	assert.Equal(t, types.ParserConfig{
		Mode:                types.ModeScan,
		Labels:              "ABCDEF",
		DetectCorrectAnswer: true,
		MinOptions:          2,
	}, cfg.Parser)
	assert.Equal(t, types.SetConfig{PerSet: 25, Prefix: "set"}, cfg.Sets)
	assert.Equal(t, types.FormatYAML, cfg.Output.Format)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("QUIZPDF_SETS_PER_SET", "10")
	t.Setenv("QUIZPDF_PARSER_LABELS", "ABCD")

	cfg, err := Load(newViper(t, ""))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Sets.PerSet)
	assert.Equal(t, "ABCD", cfg.Parser.Labels)
}

func TestLoad_ValidationListsEveryIssue(t *testing.T) {
	_, err := Load(newViper(t, `
parser:
  mode: guess
sets:
  per_set: 0
extract:
  backend: ocr
  max_pages: -1
output:
  format: xml
log:
  level: loud
  format: pretty
`))
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	fields := make([]string, 0, len(verr.Issues))
	for _, issue := range verr.Issues {
		fields = append(fields, issue.Field)
	}
	assert.Equal(t, []string{
		KeyParserMode, KeySetsPerSet, KeyExtractBackend, KeyExtractMaxPages,
		KeyOutputFormat, KeyLogLevel, KeyLogFormat,
	}, fields)
	assert.Contains(t, err.Error(), "sets.per_set: must be > 0")
}

func TestValidate_ParserLabels(t *testing.T) {
	cfg, err := Load(newViper(t, ""))
	require.NoError(t, err)

	cfg.Parser.Labels = "AXZ"
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parser:")
}

func TestValidationError_Empty(t *testing.T) {
	var err *ValidationError
	assert.Equal(t, "config validation failed", err.Error())
}
