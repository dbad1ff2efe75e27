package models

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/invoicedesk/validation"
)

// Currency is an ISO code supported by the settings page.
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
	CurrencyTND Currency = "TND"
	CurrencyMAD Currency = "MAD"
)

// Currencies lists the supported currencies in display order.
var Currencies = []Currency{CurrencyEUR, CurrencyUSD, CurrencyGBP, CurrencyTND, CurrencyMAD}

// Defaults applied when the backend has no settings yet.
const (
	DefaultInvoicePrefix = "FACT"
	DefaultCompanyName   = "My Company"
)

var DefaultTaxRate = decimal.NewFromInt(20)

// CompanySettings is the tenant singleton. It is always saved whole.
type CompanySettings struct {
	ID                 uint            `gorm:"primaryKey" json:"id,omitempty"`
	CompanyName        string          `gorm:"size:255;not null" json:"companyName" validate:"notblank"`
	Address            string          `gorm:"type:text" json:"address,omitempty"`
	City               string          `gorm:"size:100" json:"city,omitempty"`
	PostalCode         string          `gorm:"size:20" json:"postalCode,omitempty"`
	Country            string          `gorm:"size:100" json:"country,omitempty"`
	Phone              string          `gorm:"size:50" json:"phone,omitempty"`
	Email              string          `gorm:"size:255" json:"email,omitempty" validate:"omitempty,email"`
	Website            string          `gorm:"size:255" json:"website,omitempty"`
	TaxNumber          string          `gorm:"size:50" json:"taxNumber,omitempty"`
	RegistrationNumber string          `gorm:"size:50" json:"registrationNumber,omitempty"`
	BankName           string          `gorm:"size:255" json:"bankName,omitempty"`
	BankAccount        string          `gorm:"size:100" json:"bankAccount,omitempty"`
	SwiftCode          string          `gorm:"size:20" json:"swiftCode,omitempty"`
	Logo               string          `gorm:"type:text" json:"logo,omitempty"`
	TermsAndConditions string          `gorm:"type:text" json:"termsAndConditions,omitempty"`
	InvoiceNotes       string          `gorm:"type:text" json:"invoiceNotes,omitempty"`
	InvoicePrefix      string          `gorm:"size:20" json:"invoicePrefix"`
	NextInvoiceNumber  int             `json:"nextInvoiceNumber" validate:"gt=0"`
	DefaultTaxRate     decimal.Decimal `gorm:"type:decimal(5,2)" json:"defaultTaxRate"`
	Currency           Currency        `gorm:"size:3" json:"currency" validate:"omitempty,oneof=EUR USD GBP TND MAD"`
	CreatedAt          DateTime        `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt          DateTime        `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

func (c *CompanySettings) EntityID() uint { return c.ID }

// NewCompanySettings returns the settings the backend creates on first read.
func NewCompanySettings() *CompanySettings {
	return &CompanySettings{
		CompanyName:       DefaultCompanyName,
		InvoicePrefix:     DefaultInvoicePrefix,
		NextInvoiceNumber: 1,
		DefaultTaxRate:    DefaultTaxRate,
		Currency:          CurrencyEUR,
	}
}

// ApplyDefaults fills empty numbering, tax and currency fields.
func (c *CompanySettings) ApplyDefaults() {
	if c.InvoicePrefix == "" {
		c.InvoicePrefix = DefaultInvoicePrefix
	}
	if c.NextInvoiceNumber < 1 {
		c.NextInvoiceNumber = 1
	}
	if c.Currency == "" {
		c.Currency = CurrencyEUR
	}
}

// FormatInvoiceNumber renders prefix-NNNN. The number is zero-padded to four
// digits and grows past them.
func FormatInvoiceNumber(prefix string, n int) string {
	return fmt.Sprintf("%s-%04d", prefix, n)
}

// InvoiceNumberPreview returns the number offset invoices after the next one.
// It is a display value only: the backend assigns the real number. The
// prefix is rendered as typed, so an empty one yields "-NNNN".
func (c *CompanySettings) InvoiceNumberPreview(offset int) string {
	next := c.NextInvoiceNumber
	if next < 1 {
		next = 1
	}
	return FormatInvoiceNumber(c.InvoicePrefix, next+offset)
}

// CityLine formats "postalCode city, country" skipping empty parts.
func (c *CompanySettings) CityLine() string {
	line := c.PostalCode
	if c.City != "" {
		if line != "" {
			line += " "
		}
		line += c.City
	}
	if c.Country != "" {
		if line != "" {
			line += ", "
		}
		line += c.Country
	}
	return line
}

// HasBankDetails reports whether the bank footer should be printed.
func (c *CompanySettings) HasBankDetails() bool {
	return c.BankName != "" || c.BankAccount != ""
}

// Validate checks the default tax rate is a percentage.
func (c *CompanySettings) Validate(v validation.Violations) {
	rate, _ := c.DefaultTaxRate.Float64()
	validation.RangeFloat("defaultTaxRate", rate, 0, 100, v)
}

func (c *CompanySettings) BeforeSave(*gorm.DB) error {
	now := Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	return nil
}
