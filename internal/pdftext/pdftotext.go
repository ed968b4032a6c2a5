// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const binPdftotext = "pdftotext"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

var defaultExec = &osExecutor{}

// PdftotextExtractor pipes PDFs through poppler's pdftotext binary.
type PdftotextExtractor struct {
	bin      string
	maxPages int
	exec     executor
}

// NewPdftotextExtractor locates pdftotext on PATH. A missing binary is
// reported as ErrBackendUnavailable before any input is read.
func NewPdftotextExtractor(maxPages int) (*PdftotextExtractor, error) {
	return newPdftotextExtractor(defaultExec, maxPages)
}

func newPdftotextExtractor(exec executor, maxPages int) (*PdftotextExtractor, error) {
	path, err := exec.LookPath(binPdftotext)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found on PATH (install poppler-utils or use the native backend): %v",
			ErrBackendUnavailable, binPdftotext, err)
	}
	return &PdftotextExtractor{bin: path, maxPages: maxPages, exec: exec}, nil
}

func (p *PdftotextExtractor) Name() string { return binPdftotext }

// Extract runs pdftotext with the PDF on stdin and splits its output into
// pages on form feeds.
func (p *PdftotextExtractor) Extract(ctx context.Context, data []byte) (*Document, error) {
	args := []string{"-enc", "UTF-8"}
	if p.maxPages > 0 {
		args = append(args, "-l", fmt.Sprint(p.maxPages))
	}
	args = append(args, "-", "-")

	var out, stderr bytes.Buffer
	if err := p.exec.RunPiped(ctx, p.bin, args, bytes.NewReader(data), &out, &stderr); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("%w: pdftotext: %s", ErrDecode, msg)
	}
	return splitPages(out.String()), nil
}

// splitPages cuts pdftotext output on form feeds. pdftotext ends every page
// with one, so a trailing empty segment is not a page.
func splitPages(out string) *Document {
	parts := strings.Split(out, "\f")
	if n := len(parts); n > 1 && strings.TrimSpace(parts[n-1]) == "" {
		parts = parts[:n-1]
	}
	doc := &Document{Pages: make([]Page, 0, len(parts))}
	for i, text := range parts {
		doc.Pages = append(doc.Pages, Page{Number: i + 1, Text: strings.TrimRight(text, "\n")})
	}
	return doc
}
