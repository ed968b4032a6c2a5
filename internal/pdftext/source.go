// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// ErrInvalidBase64 reports a payload that is not valid base64.
	ErrInvalidBase64 = errors.New("invalid base64 payload")

	// ErrNotPDF reports input that lacks the %PDF- header.
	ErrNotPDF = errors.New("input is not a PDF")

	// ErrInvalidText reports a text input that is not valid UTF-8.
	ErrInvalidText = errors.New("text input is not valid UTF-8")
)

var (
	pdfMagic  = []byte("%PDF-")
	utf8BOM   = []byte{0xEF, 0xBB, 0xBF}
	base64Enc = []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
)

// StdinName is the path that reads a payload from standard input.
const StdinName = "-"

// Kind tells PDF sources from pre-extracted text.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindText Kind = "text"
)

// Source is one decoded input.
type Source struct {
	// Name is the file path, or a label for payloads.
	Name    string
	Kind    Kind
	Data    []byte
	ModTime time.Time
}

// Content is the text of a source together with the extraction details.
type Content struct {
	Text  string
	Bold  []string
	Pages int
}

// IsPDF reports whether data starts with the PDF header, ignoring leading
// whitespace.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), pdfMagic)
}

// DecodeBase64 decodes a PDF payload. Whitespace and a data URL prefix
// (data:application/pdf;base64,) are tolerated, as are the standard and URL
// alphabets with or without padding.
func DecodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		i := strings.Index(payload, ",")
		if i < 0 || !strings.HasSuffix(payload[:i], ";base64") {
			return nil, fmt.Errorf("%w: malformed data URL", ErrInvalidBase64)
		}
		payload = payload[i+1:]
	}
	payload = strings.Join(strings.Fields(payload), "")
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidBase64)
	}
	var lastErr error
	for _, enc := range base64Enc {
		data, err := enc.DecodeString(payload)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, lastErr)
}

// FromPayload decodes a base64 PDF payload. The payload StdinName is read
// from stdin.
func FromPayload(payload string, stdin io.Reader) (*Source, error) {
	name := "payload"
	if payload == StdinName {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading payload from stdin: %w", err)
		}
		payload, name = string(raw), "stdin"
	}
	data, err := DecodeBase64(payload)
	if err != nil {
		return nil, err
	}
	if !IsPDF(data) {
		return nil, fmt.Errorf("%w: decoded payload has no %%PDF- header", ErrNotPDF)
	}
	return &Source{Name: name, Kind: KindPDF, Data: data}, nil
}

// Open reads the file at path and classifies it as PDF or UTF-8 text.
func Open(path string) (*Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening input %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("opening input %s: is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input %s: %w", path, err)
	}
	src := &Source{Name: path, Data: data, ModTime: info.ModTime()}
	switch {
	case IsPDF(data):
		src.Kind = KindPDF
	case strings.EqualFold(filepath.Ext(path), ".pdf"):
		return nil, fmt.Errorf("%w: %s has no %%PDF- header", ErrNotPDF, path)
	default:
		src.Kind = KindText
		src.Data = bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(src.Data) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidText, path)
		}
	}
	return src, nil
}

// Content returns the source text, running ex for PDF sources.
func (s *Source) Content(ctx context.Context, ex Extractor) (Content, error) {
	if s.Kind == KindText {
		return Content{Text: string(s.Data)}, nil
	}
	doc, err := ex.Extract(ctx, s.Data)
	if err != nil {
		return Content{}, fmt.Errorf("extracting %s: %w", s.Name, err)
	}
	return Content{Text: doc.Text(), Bold: doc.BoldLines(), Pages: doc.PageCount()}, nil
}
