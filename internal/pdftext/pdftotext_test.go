// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool
	gotArgs       []string
	gotStdin      []byte
	runPipedFunc  func(stdout, stderr io.Writer) error
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunPiped(_ context.Context, _ string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	m.gotArgs = args
	m.gotStdin, _ = io.ReadAll(stdin)
	if m.runPipedFunc != nil {
		return m.runPipedFunc(stdout, stderr)
	}
	return nil
}

// extractorFunc adapts a function to Extractor.
type extractorFunc func(ctx context.Context, data []byte) (*Document, error)

func (f extractorFunc) Name() string { return "func" }

func (f extractorFunc) Extract(ctx context.Context, data []byte) (*Document, error) {
	return f(ctx, data)
}

func nopLogger() *zap.Logger { return zap.NewNop() }

func TestNewPdftotextExtractor_Missing(t *testing.T) {
	_, err := newPdftotextExtractor(&mockExecutor{}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestPdftotextExtractor_Extract(t *testing.T) {
	exec := &mockExecutor{
		availableBins: map[string]bool{"pdftotext": true},
		runPipedFunc: func(stdout, _ io.Writer) error {
			_, err := io.WriteString(stdout, "1. Q?\nA. a\n\fB. b\nC. c\n\f")
			return err
		},
	}
	p, err := newPdftotextExtractor(exec, 5)
	require.NoError(t, err)
	assert.Equal(t, "pdftotext", p.Name())

	doc, err := p.Extract(context.Background(), []byte("%PDF-1.4 data"))
	require.NoError(t, err)

	assert.Equal(t, []string{"-enc", "UTF-8", "-l", "5", "-", "-"}, exec.gotArgs)
	assert.Equal(t, []byte("%PDF-1.4 data"), exec.gotStdin)
	require.Equal(t, 2, doc.PageCount())
	assert.Equal(t, "1. Q?\nA. a", doc.Pages[0].Text)
	assert.Equal(t, "B. b\nC. c", doc.Pages[1].Text)
	assert.Equal(t, 2, doc.Pages[1].Number)
}

func TestPdftotextExtractor_Failure(t *testing.T) {
	exec := &mockExecutor{
		availableBins: map[string]bool{"pdftotext": true},
		runPipedFunc: func(_, stderr io.Writer) error {
			_, _ = io.WriteString(stderr, "Syntax Error: Couldn't find trailer dictionary\n")
			return errors.New("exit status 1")
		},
	}
	p, err := newPdftotextExtractor(exec, 0)
	require.NoError(t, err)

	_, err = p.Extract(context.Background(), []byte("junk"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
	assert.Contains(t, err.Error(), "trailer dictionary")
	assert.NotContains(t, exec.gotArgs, "-l")
}

func TestSplitPages(t *testing.T) {
	assert.Equal(t, 1, splitPages("no form feed").PageCount())
	assert.Equal(t, 1, splitPages("page one\n\f").PageCount())
	assert.Equal(t, 3, splitPages("a\fb\fc").PageCount())
}
