package models

import (
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	StatusPending   InvoiceStatus = "PENDING"
	StatusPaid      InvoiceStatus = "PAID"
	StatusCancelled InvoiceStatus = "CANCELLED"
	StatusOverdue   InvoiceStatus = "OVERDUE"
)

// Valid reports whether s is one of the known statuses.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled, StatusOverdue:
		return true
	}
	return false
}

// Invoice amounts are computed by the backend. Clients treat them as
// read-only.
type Invoice struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	InvoiceNumber string          `gorm:"size:50;uniqueIndex" json:"invoiceNumber,omitempty"`
	CustomerName  string          `gorm:"size:255;not null" json:"customerName"`
	InvoiceDate   Date            `gorm:"not null" json:"invoiceDate"`
	DueDate       Date            `json:"dueDate"`
	Status        InvoiceStatus   `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	Items         []InvoiceItem   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(5,2)" json:"taxRate"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"taxAmount"`
	Discount      decimal.Decimal `gorm:"type:decimal(10,2)" json:"discount"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"totalAmount"`
	Notes         string          `gorm:"type:text" json:"notes,omitempty"`
	PaymentTerms  string          `gorm:"type:text" json:"paymentTerms,omitempty"`
	CreatedAt     DateTime        `gorm:"autoCreateTime:false" json:"createdAt"`
}

func (i *Invoice) EntityID() uint { return i.ID }

// BeforeCreate fills the defaults the backend applies on insert.
func (i *Invoice) BeforeCreate(*gorm.DB) error {
	if i.CreatedAt.IsZero() {
		i.CreatedAt = Now()
	}
	if i.InvoiceDate.IsZero() {
		i.InvoiceDate = NewDate(i.CreatedAt.Time)
	}
	if i.DueDate.IsZero() {
		i.DueDate = Date{i.InvoiceDate.AddDate(0, 0, 30)}
	}
	if i.Status == "" {
		i.Status = StatusPending
	}
	return nil
}

// DisplayNumber returns the assigned number, or "#<id>" before assignment.
func (i *Invoice) DisplayNumber() string {
	if i.InvoiceNumber != "" {
		return i.InvoiceNumber
	}
	return "#" + strconv.FormatUint(uint64(i.ID), 10)
}

// InvoiceItem is one line of an invoice. Product is a snapshot returned by
// the backend; UnitPrice and Subtotal are fixed at invoicing time.
type InvoiceItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	InvoiceID uint            `gorm:"index;not null" json:"-"`
	ProductID uint            `gorm:"index;not null" json:"productId,omitempty"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unitPrice"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
}

// ProductRef returns the referenced product id, preferring the nested
// product snapshot.
func (it *InvoiceItem) ProductRef() uint {
	if it.Product != nil && it.Product.ID != 0 {
		return it.Product.ID
	}
	return it.ProductID
}

// ProductName returns the snapshot name, or "" when the product is unknown.
func (it *InvoiceItem) ProductName() string {
	if it.Product == nil {
		return ""
	}
	return it.Product.Name
}
