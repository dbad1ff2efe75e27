// Package export turns an invoice or the company settings into a printable
// document. Layouts are built once as an ordered list of blocks and handed to
// the PDF and spreadsheet renderers, so both formats share the same content.
package export

import (
	"fmt"
	"strconv"

	"github.com/diewo77/invoicedesk/i18n"
	"github.com/diewo77/invoicedesk/internal/models"
)

// Kind identifies what a block holds and how renderers lay it out.
type Kind string

const (
	KindLogo    Kind = "logo"
	KindCompany Kind = "company"
	KindTitle   Kind = "title"
	KindMeta    Kind = "meta"
	KindBillTo  Kind = "bill_to"
	KindItems   Kind = "items"
	KindTotals  Kind = "totals"
	KindNotes   Kind = "notes"
	KindTerms   Kind = "terms"
	KindBank    Kind = "bank"
	KindThanks  Kind = "thanks"
)

// Target restricts a block, field or column to one output format.
type Target uint8

const (
	Both Target = iota
	PDFOnly
	SheetOnly
)

func (t Target) pdf() bool   { return t != SheetOnly }
func (t Target) sheet() bool { return t != PDFOnly }

// Field is a labelled value. Inline fields print as "Label: Value" in the
// PDF; the spreadsheet always uses one cell per part.
type Field struct {
	Label    string
	Value    string
	Inline   bool
	Emphasis bool
	Status   models.InvoiceStatus
	Target   Target
}

type Column struct {
	Title  string
	Target Target
}

type Block struct {
	Kind   Kind
	Target Target
	Title  string
	Fields []Field
	Text   []string

	Columns   []Column
	Rows      [][]string
	BlankRows int

	// Image is the logo as a data URI.
	Image string
}

// Document is a rendered-to-be invoice or blank template.
type Document struct {
	Lang     string
	Currency models.Currency
	Blank    bool
	Name     string // file name without extension
	Sheet    string
	Blocks   []Block
}

// FileName returns Name with the given extension.
func (d Document) FileName(ext string) string { return d.Name + "." + ext }

// Placeholders printed in blank templates.
const (
	LinePlaceholder   = "_________________________________"
	AmountPlaceholder = "____________"
	DatePlaceholder   = "____/____/________"
)

const blankItemRows = 10

// InvoiceLayout lays out an invoice. cs may be nil, in which case the company
// block, bank footer and notes are left out and amounts use euros.
func InvoiceLayout(inv *models.Invoice, cs *models.CompanySettings, lang string) Document {
	lang = i18n.Normalize(lang)
	cur := models.CurrencyEUR
	if cs != nil && cs.Currency != "" {
		cur = cs.Currency
	}
	doc := Document{
		Lang:     lang,
		Currency: cur,
		Name:     i18n.T(lang, "doc.file") + "_" + invoiceRef(inv),
		Sheet:    i18n.T(lang, "doc.sheet"),
	}
	if cs != nil {
		if cs.Logo != "" {
			doc.Blocks = append(doc.Blocks, Block{Kind: KindLogo, Target: PDFOnly, Image: cs.Logo})
		}
		doc.Blocks = append(doc.Blocks, Block{Kind: KindCompany, Fields: []Field{
			{Label: i18n.T(lang, "label.company_name"), Value: cs.CompanyName, Emphasis: true},
			{Label: i18n.T(lang, "label.address"), Value: cs.Address},
			{Label: i18n.T(lang, "label.city"), Value: cs.CityLine(), Target: PDFOnly},
			{Label: i18n.T(lang, "label.phone"), Value: cs.Phone, Inline: true},
			{Label: i18n.T(lang, "label.email"), Value: cs.Email, Inline: true},
			{Label: i18n.T(lang, "label.vat"), Value: cs.TaxNumber, Inline: true, Target: PDFOnly},
		}})
	}
	doc.Blocks = append(doc.Blocks,
		Block{Kind: KindTitle, Target: PDFOnly, Title: i18n.T(lang, "doc.title")},
		Block{Kind: KindMeta, Fields: []Field{
			{Label: i18n.T(lang, "label.invoice_number"), Value: inv.DisplayNumber(), Inline: true},
			{Label: i18n.T(lang, "label.customer"), Value: inv.CustomerName, Inline: true, Target: SheetOnly},
			{Label: i18n.T(lang, "label.date"), Value: FormatDate(lang, inv.InvoiceDate), Inline: true},
			{Label: i18n.T(lang, "label.status"), Value: i18n.T(lang, "status."+string(inv.Status)), Inline: true, Status: inv.Status},
		}},
		Block{Kind: KindBillTo, Target: PDFOnly, Title: i18n.T(lang, "label.bill_to"), Fields: []Field{
			{Label: i18n.T(lang, "label.customer"), Value: inv.CustomerName},
		}},
		itemsBlock(inv, lang, cur),
		Block{Kind: KindTotals, Fields: []Field{
			{Label: i18n.T(lang, "total.subtotal"), Value: FormatMoney(cur, inv.Subtotal)},
			{Label: taxLabel(lang, "total.tax", inv.TaxRate.String()), Value: FormatMoney(cur, inv.TaxAmount)},
			{Label: i18n.T(lang, "total.total"), Value: FormatMoney(cur, inv.TotalAmount), Emphasis: true},
		}},
	)
	if cs == nil {
		return doc
	}
	notes := inv.Notes
	if notes == "" {
		notes = cs.InvoiceNotes
	}
	if notes != "" {
		doc.Blocks = append(doc.Blocks, Block{Kind: KindNotes, Target: PDFOnly, Title: i18n.T(lang, "label.notes"), Text: []string{notes}})
	}
	if cs.HasBankDetails() {
		doc.Blocks = append(doc.Blocks, bankBlock(cs, lang, PDFOnly))
	}
	return doc
}

func itemsBlock(inv *models.Invoice, lang string, cur models.Currency) Block {
	b := Block{Kind: KindItems, Columns: []Column{
		{Title: i18n.T(lang, "col.product")},
		{Title: i18n.T(lang, "col.quantity")},
		{Title: i18n.T(lang, "col.unit_price")},
		{Title: i18n.T(lang, "col.subtotal")},
	}}
	for i := range inv.Items {
		it := &inv.Items[i]
		b.Rows = append(b.Rows, []string{
			it.ProductName(),
			strconv.Itoa(it.Quantity),
			FormatMoney(cur, it.UnitPrice),
			FormatMoney(cur, it.Subtotal),
		})
	}
	return b
}

// BlankLayout lays out an empty invoice form from the company settings. The
// number shown is the preview of the next invoice number.
func BlankLayout(cs *models.CompanySettings, lang string) Document {
	lang = i18n.Normalize(lang)
	if cs == nil {
		cs = models.NewCompanySettings()
	}
	cur := cs.Currency
	if cur == "" {
		cur = models.CurrencyEUR
	}
	number := cs.InvoiceNumberPreview(0)
	rate := cs.DefaultTaxRate

	doc := Document{
		Lang:     lang,
		Currency: cur,
		Blank:    true,
		Name:     i18n.T(lang, "doc.blank_file") + "_" + number,
		Sheet:    i18n.T(lang, "doc.sheet"),
	}
	if cs.Logo != "" {
		doc.Blocks = append(doc.Blocks, Block{Kind: KindLogo, Target: PDFOnly, Image: cs.Logo})
	}
	doc.Blocks = append(doc.Blocks,
		Block{Kind: KindCompany, Fields: []Field{
			{Label: i18n.T(lang, "label.company_name"), Value: cs.CompanyName, Emphasis: true},
			{Label: i18n.T(lang, "label.address"), Value: cs.Address},
			{Label: i18n.T(lang, "label.city"), Value: cs.CityLine()},
			{Label: i18n.T(lang, "label.phone"), Value: cs.Phone, Inline: true},
			{Label: i18n.T(lang, "label.email"), Value: cs.Email, Inline: true},
			{Label: i18n.T(lang, "label.vat_number"), Value: cs.TaxNumber, Inline: true},
		}},
		Block{Kind: KindTitle, Title: i18n.T(lang, "doc.title")},
		Block{Kind: KindMeta, Fields: []Field{
			{Label: i18n.T(lang, "label.invoice_number"), Value: number, Inline: true},
			{Label: i18n.T(lang, "label.date"), Value: DatePlaceholder, Inline: true},
			{Label: i18n.T(lang, "label.due_date"), Value: DatePlaceholder, Inline: true},
		}},
		Block{Kind: KindBillTo, Title: i18n.T(lang, "label.bill_to"), Fields: []Field{
			{Label: i18n.T(lang, "label.client_name")},
			{Label: i18n.T(lang, "label.address")},
			{Label: i18n.T(lang, "label.city_postal")},
			{Label: i18n.T(lang, "label.country"), Target: SheetOnly},
		}},
		Block{Kind: KindItems, BlankRows: blankItemRows, Columns: []Column{
			{Title: i18n.T(lang, "col.description")},
			{Title: i18n.T(lang, "col.qty")},
			{Title: i18n.T(lang, "col.unit_price")},
			{Title: i18n.T(lang, "col.tax_percent"), Target: SheetOnly},
			{Title: i18n.T(lang, "col.amount")},
		}},
		Block{Kind: KindTotals, Fields: []Field{
			{Label: i18n.T(lang, "total.subtotal_ht")},
			{Label: taxLabel(lang, "total.tax", rate.String())},
			{Label: i18n.T(lang, "total.discount"), Target: SheetOnly},
			{Label: i18n.T(lang, "total.total_ttc"), Emphasis: true},
		}},
		Block{Kind: KindNotes, Title: i18n.T(lang, "label.notes"), Text: []string{cs.InvoiceNotes}},
		Block{Kind: KindTerms, Title: i18n.T(lang, "label.terms"), Text: []string{cs.TermsAndConditions}},
		bankBlock(cs, lang, Both),
		Block{Kind: KindThanks, Text: []string{i18n.T(lang, "label.thanks")}},
	)
	return doc
}

func bankBlock(cs *models.CompanySettings, lang string, target Target) Block {
	lines := []string{fmt.Sprintf("%s - IBAN: %s", cs.BankName, cs.BankAccount)}
	if cs.SwiftCode != "" || target == Both {
		lines = append(lines, "BIC: "+cs.SwiftCode)
	}
	return Block{Kind: KindBank, Target: target, Title: i18n.T(lang, "label.bank_details"), Text: lines}
}

func taxLabel(lang, code, rate string) string {
	return fmt.Sprintf("%s (%s%%)", i18n.T(lang, code), rate)
}

// invoiceRef is the number used in file names: the invoice number, or the id
// while the backend has not assigned one.
func invoiceRef(inv *models.Invoice) string {
	if inv.InvoiceNumber != "" {
		return inv.InvoiceNumber
	}
	return strconv.FormatUint(uint64(inv.ID), 10)
}

// columnCount is the widest row of the document in the spreadsheet.
func (d Document) columnCount() int {
	n := 2
	for _, b := range d.Blocks {
		if b.Kind != KindItems {
			continue
		}
		c := 0
		for _, col := range b.Columns {
			if col.Target.sheet() {
				c++
			}
		}
		if c > n {
			n = c
		}
	}
	return n
}
