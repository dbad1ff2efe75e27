package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/phpdave11/gofpdf"

	"github.com/diewo77/invoicedesk/internal/models"
)

// Page geometry in millimetres (A4 portrait).
const (
	marginLeft   = 20.0
	marginRight  = 190.0
	logoTextX    = 60.0
	pageTop      = 20.0
	pageBottom   = 250.0
	rowHeight    = 10.0
	maxNameRunes = 35

	// blank templates print fewer empty rows than the spreadsheet so the
	// totals stay on the first page
	pdfBlankRows = 5
)

type rgb struct{ r, g, b int }

var (
	colorAccent = rgb{102, 126, 234}
	colorText   = rgb{40, 40, 40}
	colorBody   = rgb{60, 60, 60}
	colorMuted  = rgb{100, 100, 100}
	colorShade  = rgb{248, 250, 252}
	colorRule   = rgb{200, 200, 200}
	colorWhite  = rgb{255, 255, 255}
)

// StatusColor is the colour the status line is printed in.
func StatusColor(s models.InvoiceStatus) (r, g, b int) {
	switch s {
	case models.StatusPaid:
		return 34, 139, 34
	case models.StatusPending:
		return 255, 165, 0
	}
	return 220, 53, 69
}

// RenderPDF draws doc on A4 pages. A logo that cannot be decoded or embedded
// is skipped with a warning; the text then starts at the left margin.
func RenderPDF(doc Document, logger *slog.Logger) ([]byte, error) {
	w := newPDFWriter(doc, logger)
	w.render()
	if err := w.pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := w.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type pdfWriter struct {
	pdf   *gofpdf.Fpdf
	tr    func(string) string
	doc   Document
	log   *slog.Logger
	textX float64
	y     float64
}

func newPDFWriter(doc Document, logger *slog.Logger) *pdfWriter {
	if logger == nil {
		logger = slog.Default()
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(doc.Name, true)
	pdf.SetCreator("invoicedesk", true)
	return &pdfWriter{
		pdf:   pdf,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		doc:   doc,
		log:   logger,
		textX: marginLeft,
	}
}

func (w *pdfWriter) render() {
	w.pdf.AddPage()
	for _, b := range w.doc.Blocks {
		if !b.Target.pdf() {
			continue
		}
		switch b.Kind {
		case KindLogo:
			w.logo(b)
		case KindCompany:
			w.company(b)
		case KindTitle:
			w.font("B", 28, colorAccent)
			w.textRight(b.Title, 25)
		case KindMeta:
			w.meta(b)
		case KindBillTo:
			w.billTo(b)
		case KindItems:
			w.items(b)
		case KindTotals:
			w.totals(b)
		case KindNotes:
			w.notes(b)
		case KindTerms:
			w.terms(b)
		case KindBank:
			w.bank(b)
		case KindThanks:
			w.font("I", 9, colorMuted)
			for _, line := range b.Text {
				w.textCenter(line, 293)
			}
		}
	}
}

func (w *pdfWriter) font(style string, size float64, c rgb) {
	w.pdf.SetFont("Helvetica", style, size)
	w.pdf.SetTextColor(c.r, c.g, c.b)
}

func (w *pdfWriter) text(s string, x, y float64) {
	w.pdf.Text(x, y, w.tr(s))
}

func (w *pdfWriter) textRight(s string, y float64) {
	s = w.tr(s)
	w.pdf.Text(marginRight-w.pdf.GetStringWidth(s), y, s)
}

func (w *pdfWriter) textCenter(s string, y float64) {
	s = w.tr(s)
	w.pdf.Text((210-w.pdf.GetStringWidth(s))/2, y, s)
}

func (w *pdfWriter) logo(b Block) {
	logo, err := DecodeLogo(b.Image)
	var kind string
	if err == nil {
		kind, err = logo.pdfType()
	}
	if err == nil {
		err = probeImage(logo.Data, kind)
	}
	if err != nil {
		w.log.Warn("skipping logo", "document", w.doc.Name, "err", err)
		return
	}
	opts := gofpdf.ImageOptions{ImageType: kind}
	w.pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(logo.Data))
	w.pdf.ImageOptions("logo", marginLeft, 15, 35, 25, false, opts, 0, "")
	w.textX = logoTextX
}

// probeImage registers the image in a scratch document. gofpdf errors are
// sticky, so a bad image must not touch the real one.
func probeImage(data []byte, kind string) error {
	p := gofpdf.New("P", "mm", "A4", "")
	p.RegisterImageOptionsReader("probe", gofpdf.ImageOptions{ImageType: kind}, bytes.NewReader(data))
	return p.Error()
}

func (w *pdfWriter) company(b Block) {
	y := 25.0
	for i, f := range b.Fields {
		if i == 0 {
			w.font("B", 16, colorText)
			w.text(f.Value, w.textX, y)
			y += 6
			w.font("", 9, colorMuted)
			continue
		}
		if f.Value == "" || !f.Target.pdf() {
			continue
		}
		w.text(fieldText(f), w.textX, y)
		y += 4
	}
}

func (w *pdfWriter) meta(b Block) {
	y := 35.0
	for _, f := range b.Fields {
		if !f.Target.pdf() {
			continue
		}
		w.font("", 10, colorBody)
		if f.Status != "" {
			r, g, bl := StatusColor(f.Status)
			w.pdf.SetTextColor(r, g, bl)
		}
		w.textRight(fieldText(f), y)
		y += 7
	}
}

func (w *pdfWriter) billTo(b Block) {
	y := 70.0
	if w.doc.Blank {
		y = 85
	}
	w.font("B", 11, colorAccent)
	w.text(b.Title+":", marginLeft, y)
	w.font("", 11, colorText)
	for _, f := range b.Fields {
		if !f.Target.pdf() {
			continue
		}
		if w.doc.Blank {
			y += 10
			w.text(LinePlaceholder, marginLeft, y)
			continue
		}
		y += 7
		w.text(f.Value, marginLeft, y)
	}
	w.y = y
}

// columnX returns the left edge of each printed column.
func (w *pdfWriter) columnX() []float64 {
	if w.doc.Blank {
		return []float64{25, 100, 120, 160}
	}
	return []float64{25, 105, 125, 160}
}

func (w *pdfWriter) items(b Block) {
	top := 95.0
	if w.doc.Blank {
		top = 135
	}
	keep := make([]int, 0, len(b.Columns))
	for i, c := range b.Columns {
		if c.Target.pdf() {
			keep = append(keep, i)
		}
	}
	xs := w.columnX()

	w.pdf.SetFillColor(colorAccent.r, colorAccent.g, colorAccent.b)
	w.pdf.Rect(marginLeft, top, marginRight-marginLeft, rowHeight, "F")
	w.font("B", 9, colorWhite)
	for i, idx := range keep {
		if i < len(xs) {
			w.text(b.Columns[idx].Title, xs[i], top+7)
		}
	}

	w.pdf.SetDrawColor(colorRule.r, colorRule.g, colorRule.b)
	if w.doc.Blank {
		rows := min(b.BlankRows, pdfBlankRows)
		for i := range rows {
			y := top + 15 + float64(i)*12
			w.pdf.Line(marginLeft, y+8, marginRight, y+8)
		}
		w.y = top + 90
		return
	}

	w.font("", 9, colorBody)
	y := top + 18
	for n, row := range b.Rows {
		if y > pageBottom {
			w.pdf.AddPage()
			y = pageTop
		}
		if n%2 == 0 {
			w.pdf.SetFillColor(colorShade.r, colorShade.g, colorShade.b)
			w.pdf.Rect(marginLeft, y-5, marginRight-marginLeft, rowHeight, "F")
		}
		for i, idx := range keep {
			if i >= len(xs) || idx >= len(row) {
				continue
			}
			cell := row[idx]
			if idx == 0 {
				cell = truncate(cell, maxNameRunes)
			}
			w.text(cell, xs[i], y)
		}
		y += rowHeight
	}
	y += 5
	w.pdf.Line(marginLeft, y, marginRight, y)
	w.y = y + 15
}

func (w *pdfWriter) totals(b Block) {
	labelX := 130.0
	if w.doc.Blank {
		labelX = 120
	}
	y := w.y
	if y > pageBottom {
		w.pdf.AddPage()
		y = pageTop + 10
	}
	for _, f := range b.Fields {
		if !f.Target.pdf() {
			continue
		}
		value := f.Value
		if w.doc.Blank && value == "" {
			value = AmountPlaceholder
		}
		if f.Emphasis {
			y += 4
			w.font("B", 14, colorAccent)
		} else {
			w.font("", 10, rgb{80, 80, 80})
		}
		w.text(f.Label+":", labelX, y)
		w.textRight(value, y)
		y += 8
	}
	w.y = y
}

func (w *pdfWriter) notes(b Block) {
	y := 258.0
	if w.doc.Blank {
		y = w.y + 12
	}
	if w.y > y {
		y = w.y + 5
	}
	w.font("", 8, colorMuted)
	for _, line := range b.Text {
		if line == "" {
			continue
		}
		w.text(line, marginLeft, y)
		y += 4
	}
	w.y = y
}

func (w *pdfWriter) terms(b Block) {
	w.font("", 8, colorMuted)
	for _, line := range b.Text {
		if line == "" {
			continue
		}
		w.y += 6
		w.text(b.Title+": "+line, marginLeft, w.y)
	}
}

func (w *pdfWriter) bank(b Block) {
	y := 270.0
	if w.doc.Blank {
		y = 278
	}
	if w.y > y-4 {
		w.pdf.AddPage()
		y = pageTop
	}
	w.font("", 8, rgb{120, 120, 120})
	w.text(b.Title+":", marginLeft, y)
	for _, line := range b.Text {
		y += 4
		w.text(line, marginLeft, y)
	}
	w.y = y
}

func fieldText(f Field) string {
	if f.Inline {
		return f.Label + ": " + f.Value
	}
	return f.Value
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
