// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	backendNative = "native"

	// gapFactor is the share of the font size that counts as a word gap
	// between two text runs on the same row.
	gapFactor       = 0.2
	defaultFontSize = 12
)

var boldFontMarkers = []string{"bold", "heavy", "black", "demi"}

// NativeExtractor reads PDFs in-process with github.com/ledongthuc/pdf.
type NativeExtractor struct {
	password string
	maxPages int
}

// NewNativeExtractor creates the in-process extractor. password opens
// encrypted documents; maxPages caps the pages read (0 reads all).
func NewNativeExtractor(password string, maxPages int) *NativeExtractor {
	return &NativeExtractor{password: password, maxPages: maxPages}
}

func (n *NativeExtractor) Name() string { return backendNative }

// Extract walks the pages in order, rebuilding each line from the
// positioned glyphs. Library panics on malformed input are reported as
// ErrDecode.
func (n *NativeExtractor) Extract(ctx context.Context, data []byte) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("%w: %v", ErrDecode, r)
		}
	}()

	r, err := n.open(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	total := r.NumPage()
	if n.maxPages > 0 && total > n.maxPages {
		total = n.maxPages
	}

	doc = &Document{Pages: make([]Page, 0, total)}
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			doc.Pages = append(doc.Pages, Page{Number: i})
			continue
		}
		page, err := readPage(p)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrDecode, i, err)
		}
		page.Number = i
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}

func (n *NativeExtractor) open(data []byte) (*pdf.Reader, error) {
	ra := bytes.NewReader(data)
	if n.password == "" {
		return pdf.NewReader(ra, int64(len(data)))
	}
	// The reader asks until it gets an empty string, so offer the
	// password once.
	offered := false
	return pdf.NewReaderEncrypted(ra, int64(len(data)), func() string {
		if offered {
			return ""
		}
		offered = true
		return n.password
	})
}

// readPage rebuilds the page text row by row from the positioned glyphs,
// falling back to the plain text stream when the page has none.
func readPage(p pdf.Page) (Page, error) {
	if page, ok := pageFromGlyphs(p.Content().Text); ok {
		return page, nil
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return Page{}, err
	}
	return Page{Text: strings.TrimRight(text, "\n")}, nil
}

// pageFromGlyphs groups glyphs into rows by baseline.
func pageFromGlyphs(glyphs []pdf.Text) (Page, bool) {
	rows := make(map[int64][]pdf.Text)
	for _, g := range glyphs {
		y := int64(math.Round(g.Y))
		rows[y] = append(rows[y], g)
	}
	if len(rows) == 0 {
		return Page{}, false
	}
	ys := make([]int64, 0, len(rows))
	for y := range rows {
		ys = append(ys, y)
	}
	// PDF y grows upwards: top of the page first.
	sort.Slice(ys, func(i, j int) bool { return ys[i] > ys[j] })

	var page Page
	lines := make([]string, 0, len(ys))
	for _, y := range ys {
		line := rowText(rows[y])
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if rowIsBold(rows[y]) {
			page.Bold = append(page.Bold, line)
		}
	}
	if len(lines) == 0 {
		return Page{}, false
	}
	page.Text = strings.Join(lines, "\n")
	return page, true
}

// rowText joins the glyphs of one row left to right, inserting a space
// where the gap to the next glyph exceeds gapFactor of the font size.
func rowText(runs []pdf.Text) string {
	sorted := make([]pdf.Text, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var b strings.Builder
	for i, t := range sorted {
		b.WriteString(t.S)
		if i == len(sorted)-1 {
			break
		}
		size := t.FontSize
		if size <= 0 {
			size = defaultFontSize
		}
		if gap := sorted[i+1].X - (t.X + t.W); gap > size*gapFactor {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// rowIsBold reports whether every visible run of the row uses a bold font.
func rowIsBold(runs []pdf.Text) bool {
	visible := 0
	for _, t := range runs {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		visible++
		if !isBoldFont(t.Font) {
			return false
		}
	}
	return visible > 0
}

func isBoldFont(name string) bool {
	name = strings.ToLower(name)
	for _, m := range boldFontMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}
