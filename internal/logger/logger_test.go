// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/quizpdf/pkg/types"
)

func TestGet_BeforeInitialize(t *testing.T) {
	log = nil
	assert.NotNil(t, Get())
	assert.NoError(t, Sync())
}

func TestInitializeWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitializeWriter(types.LogConfig{Level: "debug", Format: "json"}, &buf))
	t.Cleanup(func() { log = nil })

	Get().Debug("dropped question block")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "dropped question block", entry["msg"])
}

func TestInitializeWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitializeWriter(types.LogConfig{Level: "warn", Format: "console"}, &buf))
	t.Cleanup(func() { log = nil })

	Get().Info("hidden")
	Get().Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestInitializeWriter_Invalid(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, InitializeWriter(types.LogConfig{Level: "loud"}, &buf))
	assert.Error(t, InitializeWriter(types.LogConfig{Level: "info", Format: "xml"}, &buf))
}
