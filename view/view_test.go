package view

import (
	"html/template"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/invoicedesk/i18n"
	"github.com/diewo77/invoicedesk/internal/models"
)

func sampleInvoice() InvoicePage {
	cs := models.NewCompanySettings()
	cs.CompanyName = "Acme <SARL>"
	cs.BankName = "BNP"
	inv := &models.Invoice{
		ID:            3,
		InvoiceNumber: "FACT-0003",
		CustomerName:  "Alice",
		InvoiceDate:   models.Date{Time: mustDate("2024-03-05")},
		Status:        models.StatusPaid,
		Items: []models.InvoiceItem{{
			Product:   &models.Product{ID: 1, Name: "Widget"},
			Quantity:  2,
			UnitPrice: decimal.RequireFromString("10.5"),
			Subtotal:  decimal.RequireFromString("21"),
		}},
		Subtotal:    decimal.RequireFromString("21"),
		TaxRate:     decimal.NewFromInt(20),
		TaxAmount:   decimal.RequireFromString("4.2"),
		TotalAmount: decimal.RequireFromString("25.2"),
	}
	return InvoicePage{Company: cs, Invoice: inv}
}

func TestRender_Invoice(t *testing.T) {
	tests := []struct {
		lang string
		want []string
	}{
		{i18n.LangFR, []string{"FACTURE", "05/03/2024", "Payé", "25.20 EUR", "Acme &lt;SARL&gt;", "Coordonnées Bancaires"}},
		{i18n.LangEN, []string{"INVOICE", "03/05/2024", "Paid", "10.50 EUR", "Thank you for your business!"}},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r = r.WithContext(i18n.WithLang(r.Context(), tt.lang))
			w := httptest.NewRecorder()

			require.NoError(t, Render(w, r, "invoice.html", sampleInvoice()))
			body := w.Body.String()
			assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
			for _, s := range tt.want {
				assert.Contains(t, body, s)
			}
		})
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	assert.Error(t, Render(w, r, "missing.html", nil))
	assert.Zero(t, w.Body.Len())
}

func TestFuncs_Money(t *testing.T) {
	money := Funcs(i18n.LangFR)["money"].(func(decimal.Decimal, models.Currency) string)
	assert.Equal(t, "3.00 EUR", money(decimal.NewFromInt(3), ""))
	assert.True(t, strings.HasSuffix(money(decimal.NewFromInt(3), models.CurrencyUSD), "USD"))
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestFuncs_Logo(t *testing.T) {
	logo := Funcs(i18n.LangEN)["logo"].(func(string) template.URL)
	assert.Equal(t, template.URL("data:image/png;base64,AAAA"), logo("data:image/png;base64,AAAA"))
	assert.Empty(t, logo("javascript:alert(1)"))
}

func TestExecute_Quote(t *testing.T) {
	cs := models.NewCompanySettings()
	cs.InvoicePrefix = "INV"
	cs.NextInvoiceNumber = 9

	var buf strings.Builder
	require.NoError(t, Execute(&buf, "en-GB", "quote.html", NewQuotePage(cs, i18n.LangEN)))
	body := buf.String()
	for _, s := range []string{"Sample Product 1", "250.00 EUR", "50.00 EUR", "300.00 EUR", "INV-0009", "INV-0011"} {
		assert.Contains(t, body, s)
	}
}
