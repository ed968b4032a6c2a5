// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads quizpdf settings from viper (config file, QUIZPDF_
// environment variables and bound flags) into types.Config.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/quizpdf/internal/quiz"
	"github.com/pdiddy/quizpdf/pkg/types"
)

// EnvPrefix is the prefix of environment overrides, e.g. QUIZPDF_SETS_PER_SET.
const EnvPrefix = "QUIZPDF"

// Keys.
const (
	KeyParserMode      = "parser.mode"
	KeyParserLabels    = "parser.labels"
	KeyParserRequire   = "parser.require_answer"
	KeyParserDetect    = "parser.detect_answer"
	KeyParserMinOpts   = "parser.min_options"
	KeyParserInferBold = "parser.infer_bold"
	KeySetsPerSet      = "sets.per_set"
	KeySetsPrefix      = "sets.prefix"
	KeyExtractBackend  = "extract.backend"
	KeyExtractMaxPages = "extract.max_pages"
	KeyExtractValidate = "extract.validate"
	KeyOutputFormat    = "output.format"
	KeyBankPath        = "bank.path"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
)

// Defaults for keys that do not depend on the parse mode.
const (
	DefaultBankPath  = "bank/quizpdf.db"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

// SetDefaults registers defaults on v and enables environment overrides.
// The mode-dependent parser keys (labels, require_answer, detect_answer,
// min_options) get no default so that Load can tell whether they were set.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyParserMode, string(types.ModeFixed))
	v.SetDefault(KeyParserInferBold, false)
	v.SetDefault(KeySetsPerSet, quiz.DefaultPerSet)
	v.SetDefault(KeySetsPrefix, quiz.DefaultSetPrefix)
	v.SetDefault(KeyExtractBackend, string(types.BackendNative))
	v.SetDefault(KeyExtractMaxPages, 0)
	v.SetDefault(KeyExtractValidate, true)
	v.SetDefault(KeyOutputFormat, string(types.FormatJSON))
	v.SetDefault(KeyBankPath, DefaultBankPath)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the settings from v, fills unset parser keys from the mode
// preset and validates the result.
func Load(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Parser.Mode = types.ParseMode(strings.ToLower(string(cfg.Parser.Mode)))
	cfg.Output.Format = types.OutputFormat(strings.ToLower(string(cfg.Output.Format)))
	cfg.Extract.Backend = types.ExtractionBackend(strings.ToLower(string(cfg.Extract.Backend)))

	// Keys without defaults are invisible to Unmarshal when they only come
	// from the environment, so they are read one by one.
	if preset, err := quiz.ConfigForMode(cfg.Parser.Mode); err == nil {
		cfg.Parser.Labels = preset.Labels
		if s := v.GetString(KeyParserLabels); v.IsSet(KeyParserLabels) && s != "" {
			cfg.Parser.Labels = s
		}
		cfg.Parser.RequireCorrectAnswer = preset.RequireCorrectAnswer
		if v.IsSet(KeyParserRequire) {
			cfg.Parser.RequireCorrectAnswer = v.GetBool(KeyParserRequire)
		}
		cfg.Parser.DetectCorrectAnswer = preset.DetectCorrectAnswer
		if v.IsSet(KeyParserDetect) {
			cfg.Parser.DetectCorrectAnswer = v.GetBool(KeyParserDetect)
		}
		cfg.Parser.MinOptions = preset.MinOptions
		if v.IsSet(KeyParserMinOpts) {
			cfg.Parser.MinOptions = v.GetInt(KeyParserMinOpts)
		}
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

// Validate checks every setting and reports all problems at once.
func Validate(cfg types.Config) error {
	var issues []Issue
	add := func(field, message string) {
		issues = append(issues, Issue{Field: field, Message: message})
	}

	switch cfg.Parser.Mode {
	case types.ModeFixed, types.ModeScan:
		if _, err := quiz.New(cfg.Parser, nil); err != nil {
			add("parser", err.Error())
		}
	default:
		add(KeyParserMode, fmt.Sprintf("unsupported mode %q (fixed, scan)", cfg.Parser.Mode))
	}
	if cfg.Parser.MinOptions < 0 {
		add(KeyParserMinOpts, "must be >= 0")
	}

	if cfg.Sets.PerSet <= 0 {
		add(KeySetsPerSet, "must be > 0")
	}
	if strings.TrimSpace(cfg.Sets.Prefix) == "" {
		add(KeySetsPrefix, "is required")
	} else if strings.ContainsAny(cfg.Sets.Prefix, " \t\n/") {
		add(KeySetsPrefix, "must not contain whitespace or slashes")
	}

	switch cfg.Extract.Backend {
	case types.BackendNative, types.BackendPdftotext:
	default:
		add(KeyExtractBackend, fmt.Sprintf("unsupported backend %q (native, pdftotext)", cfg.Extract.Backend))
	}
	if cfg.Extract.MaxPages < 0 {
		add(KeyExtractMaxPages, "must be >= 0")
	}

	switch cfg.Output.Format {
	case types.FormatJSON, types.FormatYAML:
	default:
		add(KeyOutputFormat, fmt.Sprintf("unsupported format %q (json, yaml)", cfg.Output.Format))
	}

	if strings.TrimSpace(cfg.Bank.Path) == "" {
		add(KeyBankPath, "is required")
	}

	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		add(KeyLogLevel, fmt.Sprintf("unsupported level %q", cfg.Log.Level))
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		add(KeyLogFormat, fmt.Sprintf("unsupported format %q (console, json)", cfg.Log.Format))
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
