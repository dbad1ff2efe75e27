// Package view renders HTML documents from the embedded templates. Pages
// are parsed once per language with the shared func map.
package view

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diewo77/invoicedesk/i18n"
	"github.com/diewo77/invoicedesk/internal/models"
	"github.com/diewo77/invoicedesk/internal/services"
)

//go:embed templates/*.html
var files embed.FS

var tplCache = struct {
	sync.RWMutex
	m map[string]*template.Template
}{m: map[string]*template.Template{}}

// Funcs returns the func map for lang: translation plus money and date
// formatting.
func Funcs(lang string) template.FuncMap {
	return template.FuncMap{
		"t":    func(code string) string { return i18n.T(lang, code) },
		"lang": func() string { return lang },
		"money": func(d decimal.Decimal, currency models.Currency) string {
			if currency == "" {
				currency = models.CurrencyEUR
			}
			return d.StringFixed(2) + " " + string(currency)
		},
		"date": func(d models.Date) string {
			if d.IsZero() {
				return ""
			}
			if lang == i18n.LangEN {
				return d.Format("01/02/2006")
			}
			return d.Format("02/01/2006")
		},
		// logo admits the data URIs stored by the settings page.
		"logo": func(uri string) template.URL {
			if !strings.HasPrefix(uri, "data:image/") {
				return ""
			}
			return template.URL(uri)
		},
		"year": func() int { return time.Now().Year() },
	}
}

func lookup(name, lang string) (*template.Template, error) {
	key := lang + "/" + name
	tplCache.RLock()
	t, ok := tplCache.m[key]
	tplCache.RUnlock()
	if ok {
		return t, nil
	}
	t, err := template.New(name).Funcs(Funcs(lang)).ParseFS(files, "templates/"+name)
	if err != nil {
		return nil, err
	}
	tplCache.Lock()
	tplCache.m[key] = t
	tplCache.Unlock()
	return t, nil
}

// Execute renders template name in lang into w. Output is buffered so a
// failing template leaves w untouched.
func Execute(w io.Writer, lang, name string, data any) error {
	t, err := lookup(name, i18n.Normalize(lang))
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

// Render executes template name into w in the request's language.
func Render(w http.ResponseWriter, r *http.Request, name string, data any) error {
	var buf bytes.Buffer
	if err := Execute(&buf, i18n.LangFromContext(r.Context()), name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}

// InvoicePage is the data of invoice.html.
type InvoicePage struct {
	Company *models.CompanySettings
	Invoice *models.Invoice
}

// QuotePage is the data of quote.html, the settings page preview.
type QuotePage struct {
	Company *models.CompanySettings
	Quote   services.Quote
	Numbers []string
}

// NewQuotePage computes the sample quote and numbering preview of cs.
func NewQuotePage(cs *models.CompanySettings, lang string) QuotePage {
	return QuotePage{
		Company: cs,
		Quote:   services.PreviewQuote(cs, lang),
		Numbers: services.NumberingPreview(cs),
	}
}
