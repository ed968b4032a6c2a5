// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quiz

import (
	"fmt"
	"strings"

	"github.com/pdiddy/quizpdf/pkg/types"
)

const (
	fixedLabels       = "ABC"
	scanLabels        = "ABCDEF"
	defaultMinOptions = 2
)

// FixedConfig returns the fixed-label preset: options A, B and C must all be
// present and a correct-answer marker is required.
func FixedConfig() types.ParserConfig {
	return types.ParserConfig{
		Mode:                 types.ModeFixed,
		Labels:               fixedLabels,
		RequireCorrectAnswer: true,
		DetectCorrectAnswer:  true,
		MinOptions:           len(fixedLabels),
	}
}

// ScanConfig returns the line-scan preset: any of options A-F, at least two,
// and no answer detection. Answers are filled in by hand afterwards.
func ScanConfig() types.ParserConfig {
	return types.ParserConfig{
		Mode:       types.ModeScan,
		Labels:     scanLabels,
		MinOptions: defaultMinOptions,
	}
}

// ConfigForMode returns the preset for mode.
func ConfigForMode(mode types.ParseMode) (types.ParserConfig, error) {
	switch mode {
	case types.ModeFixed, "":
		return FixedConfig(), nil
	case types.ModeScan:
		return ScanConfig(), nil
	default:
		return types.ParserConfig{}, fmt.Errorf("unknown parse mode %q: use fixed or scan", mode)
	}
}

// normalize fills defaults and checks the label range. Labels are upper-cased
// and must be distinct letters A-F in ascending order.
func normalize(cfg types.ParserConfig) (types.ParserConfig, error) {
	if cfg.Mode == "" {
		cfg.Mode = types.ModeFixed
	}
	if cfg.Mode != types.ModeFixed && cfg.Mode != types.ModeScan {
		return cfg, fmt.Errorf("unknown parse mode %q: use fixed or scan", cfg.Mode)
	}
	if cfg.Labels == "" {
		preset, _ := ConfigForMode(cfg.Mode)
		cfg.Labels = preset.Labels
	}
	cfg.Labels = strings.ToUpper(cfg.Labels)
	if err := checkLabels(cfg.Labels); err != nil {
		return cfg, err
	}
	if cfg.Mode == types.ModeFixed {
		cfg.DetectCorrectAnswer = true
		if len(cfg.Labels) < 2 {
			return cfg, fmt.Errorf("labels %q: fixed mode needs at least two labels", cfg.Labels)
		}
		cfg.MinOptions = len(cfg.Labels)
	}
	if cfg.RequireCorrectAnswer {
		cfg.DetectCorrectAnswer = true
	}
	if cfg.MinOptions < defaultMinOptions {
		cfg.MinOptions = defaultMinOptions
	}
	if cfg.MinOptions > len(cfg.Labels) {
		return cfg, fmt.Errorf("min options %d exceeds label range %q", cfg.MinOptions, cfg.Labels)
	}
	return cfg, nil
}

func checkLabels(labels string) error {
	for i := 0; i < len(labels); i++ {
		if !types.IsLabel(labels[i : i+1]) {
			return fmt.Errorf("labels %q: %q is not a letter A-F", labels, labels[i:i+1])
		}
		if i > 0 && labels[i] <= labels[i-1] {
			return fmt.Errorf("labels %q: letters must be distinct and ascending", labels)
		}
	}
	return nil
}
