package export

import (
	"github.com/shopspring/decimal"

	"github.com/diewo77/invoicedesk/i18n"
	"github.com/diewo77/invoicedesk/internal/models"
)

// CurrencySymbol returns the prefix printed before amounts. Unknown
// currencies fall back to the euro sign.
func CurrencySymbol(c models.Currency) string {
	switch c {
	case models.CurrencyTND:
		return "TND "
	case models.CurrencyUSD:
		return "$"
	case models.CurrencyGBP:
		return "£"
	}
	return "€"
}

// FormatMoney prints d with two decimals behind the currency symbol.
func FormatMoney(c models.Currency, d decimal.Decimal) string {
	return CurrencySymbol(c) + d.StringFixed(2)
}

// FormatDate prints d the way the language writes short dates.
func FormatDate(lang string, d models.Date) string {
	if d.IsZero() {
		return ""
	}
	if i18n.Normalize(lang) == i18n.LangEN {
		return d.Format("1/2/2006")
	}
	return d.Format("02/01/2006")
}
