// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext extracts plain text from PDF documents with pluggable
// backends, and decodes the inputs (files, base64 payloads, stdin) that
// carry them.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/quizpdf/pkg/types"
)

var (
	// ErrDecode reports a PDF the backend could not read.
	ErrDecode = errors.New("pdf decode failed")

	// ErrBackendUnavailable reports a missing external extraction tool.
	ErrBackendUnavailable = errors.New("pdf backend unavailable")
)

// Page is the text of one PDF page.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`

	// Bold lists the lines the backend rendered entirely in a bold font.
	Bold []string `json:"bold,omitempty"`
}

// Document is the extracted text of a PDF, page by page.
type Document struct {
	Pages []Page `json:"pages"`
}

// PageCount returns the number of extracted pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Text concatenates the page texts, each followed by a newline.
func (d *Document) Text() string {
	var b strings.Builder
	for _, p := range d.Pages {
		b.WriteString(p.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// BoldLines returns the bold lines of all pages in order.
func (d *Document) BoldLines() []string {
	var lines []string
	for _, p := range d.Pages {
		lines = append(lines, p.Bold...)
	}
	return lines
}

// Extractor turns PDF bytes into a Document. The native and pdftotext
// backends implement this interface.
type Extractor interface {
	// Name returns the backend name.
	Name() string

	// Extract reads data, which must hold a complete PDF file.
	Extract(ctx context.Context, data []byte) (*Document, error)
}

// New builds the extractor selected by cfg. The pdftotext backend fails
// with ErrBackendUnavailable when its binary is not installed.
func New(cfg types.ExtractionConfig, log *zap.Logger) (Extractor, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var ex Extractor
	switch cfg.Backend {
	case types.BackendNative, "":
		ex = NewNativeExtractor(cfg.Password, cfg.MaxPages)
	case types.BackendPdftotext:
		p, err := NewPdftotextExtractor(cfg.MaxPages)
		if err != nil {
			return nil, err
		}
		ex = p
	default:
		return nil, fmt.Errorf("unknown extraction backend %q: use native or pdftotext", cfg.Backend)
	}
	if cfg.Validate {
		ex = &validatingExtractor{next: ex, password: cfg.Password, log: log}
	}
	log.Debug("pdf extractor ready", zap.String("backend", ex.Name()), zap.Bool("validate", cfg.Validate))
	return ex, nil
}

// validatingExtractor runs the structural check before handing the bytes to
// the wrapped backend.
type validatingExtractor struct {
	next     Extractor
	password string
	log      *zap.Logger
}

func (v *validatingExtractor) Name() string { return v.next.Name() }

func (v *validatingExtractor) Extract(ctx context.Context, data []byte) (*Document, error) {
	pages, err := Validate(data, v.password)
	if err != nil {
		return nil, err
	}
	v.log.Debug("pdf validated", zap.Int("pages", pages))
	return v.next.Extract(ctx, data)
}
