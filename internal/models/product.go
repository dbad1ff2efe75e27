package models

import (
	"github.com/shopspring/decimal"

	"github.com/diewo77/invoicedesk/validation"
)

// Product is a sellable item. Stock is decremented by the backend when an
// invoice references it.
type Product struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:255;not null" json:"name" validate:"notblank"`
	Description   string          `gorm:"type:text" json:"description,omitempty"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	StockQuantity int             `gorm:"not null;default:0" json:"stockQuantity" validate:"gte=0"`
	Category      string          `gorm:"size:100" json:"category,omitempty"`
}

func (p *Product) EntityID() uint { return p.ID }

// InStock reports whether qty units can be invoiced.
func (p *Product) InStock(qty int) bool {
	return qty <= p.StockQuantity
}

// Validate adds the checks struct tags cannot express on decimals.
func (p *Product) Validate(v validation.Violations) {
	price, _ := p.Price.Float64()
	validation.NonNegativeFloat("price", price, v)
}
