package models

// Client is a customer record.
type Client struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name" validate:"notblank"`
	CompanyName string `gorm:"size:255" json:"companyName,omitempty"`
	Email       string `gorm:"size:255" json:"email,omitempty" validate:"omitempty,email"`
	Phone       string `gorm:"size:50" json:"phone,omitempty"`
	Address     string `gorm:"size:500" json:"address,omitempty"`
	City        string `gorm:"size:100" json:"city,omitempty"`
	PostalCode  string `gorm:"size:20" json:"postalCode,omitempty"`
	Country     string `gorm:"size:100" json:"country,omitempty"`
	TaxNumber   string `gorm:"size:50" json:"taxNumber,omitempty"`
	Notes       string `gorm:"type:text" json:"notes,omitempty"`
}

func (c *Client) EntityID() uint { return c.ID }

// FullAddress returns the address on up to three lines.
func (c *Client) FullAddress() string {
	return joinAddress(c.Address, c.PostalCode, c.City, c.Country)
}

func joinAddress(street, postalCode, city, country string) string {
	addr := street
	if postalCode != "" || city != "" {
		if addr != "" {
			addr += "\n"
		}
		addr += postalCode
		if postalCode != "" && city != "" {
			addr += " "
		}
		addr += city
	}
	if country != "" {
		if addr != "" {
			addr += "\n"
		}
		addr += country
	}
	return addr
}
