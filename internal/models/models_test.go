package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diewo77/invoicedesk/validation"
)

func TestClient_FullAddress(t *testing.T) {
	tests := []struct {
		name   string
		client Client
		want   string
	}{
		{
			name:   "full address",
			client: Client{Address: "123 Main St", PostalCode: "75001", City: "Paris", Country: "France"},
			want:   "123 Main St\n75001 Paris\nFrance",
		},
		{name: "only city", client: Client{City: "Paris"}, want: "Paris"},
		{name: "address and city", client: Client{Address: "123 Main St", City: "Paris"}, want: "123 Main St\nParis"},
		{name: "empty", client: Client{}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.client.FullAddress(); got != tt.want {
				t.Errorf("FullAddress() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInvoiceNumberPreview(t *testing.T) {
	tests := []struct {
		prefix string
		next   int
		offset int
		want   string
	}{
		{"FACT", 7, 0, "FACT-0007"},
		{"FACT", 7, 2, "FACT-0009"},
		{"INV", 12345, 0, "INV-12345"},
		{"", 0, 0, "-0001"},
		{"", 3, 1, "-0004"},
	}
	for _, tt := range tests {
		cs := &CompanySettings{InvoicePrefix: tt.prefix, NextInvoiceNumber: tt.next}
		if got := cs.InvoiceNumberPreview(tt.offset); got != tt.want {
			t.Errorf("InvoiceNumberPreview(%d) = %q, want %q", tt.offset, got, tt.want)
		}
	}
}

func TestCompanySettings_CityLine(t *testing.T) {
	cs := &CompanySettings{PostalCode: "1000", City: "Tunis", Country: "Tunisie"}
	if got := cs.CityLine(); got != "1000 Tunis, Tunisie" {
		t.Errorf("CityLine() = %q", got)
	}
	cs = &CompanySettings{Country: "France"}
	if got := cs.CityLine(); got != "France" {
		t.Errorf("CityLine() = %q", got)
	}
}

func TestNewCompanySettings(t *testing.T) {
	cs := NewCompanySettings()
	if cs.InvoicePrefix != "FACT" || cs.NextInvoiceNumber != 1 || cs.Currency != CurrencyEUR {
		t.Errorf("unexpected defaults: %+v", cs)
	}
	if !cs.DefaultTaxRate.Equal(decimal.NewFromInt(20)) {
		t.Errorf("DefaultTaxRate = %s, want 20", cs.DefaultTaxRate)
	}
}

func TestInvoiceStatus_Valid(t *testing.T) {
	for _, s := range []InvoiceStatus{StatusPending, StatusPaid, StatusCancelled, StatusOverdue} {
		if !s.Valid() {
			t.Errorf("%s.Valid() = false", s)
		}
	}
	if InvoiceStatus("DRAFT").Valid() {
		t.Error("DRAFT should not be valid")
	}
}

func TestInvoice_DecodeBackendPayload(t *testing.T) {
	payload := `{
		"id": 3,
		"invoiceNumber": "FACT-0003",
		"customerName": "ACME",
		"invoiceDate": "2024-03-01",
		"dueDate": null,
		"status": "PAID",
		"subtotal": 250.00,
		"taxRate": 20,
		"taxAmount": 50.00,
		"discount": null,
		"totalAmount": 300.00,
		"createdAt": "2024-03-01T10:15:30.123456",
		"items": [
			{"id": 1, "product": {"id": 9, "name": "Widget", "price": 100, "stockQuantity": 3}, "quantity": 2, "unitPrice": 100, "subtotal": 200},
			{"id": 2, "product": {"id": 4, "name": "Bolt", "price": 50, "stockQuantity": 10}, "quantity": 1, "unitPrice": 50, "subtotal": 50}
		]
	}`
	var inv Invoice
	if err := json.Unmarshal([]byte(payload), &inv); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if inv.Status != StatusPaid || inv.DisplayNumber() != "FACT-0003" {
		t.Errorf("unexpected invoice %+v", inv)
	}
	if got := inv.InvoiceDate.String(); got != "2024-03-01" {
		t.Errorf("InvoiceDate = %q", got)
	}
	if !inv.DueDate.IsZero() {
		t.Errorf("DueDate = %v, want zero", inv.DueDate)
	}
	if inv.CreatedAt.Hour() != 10 || inv.CreatedAt.Minute() != 15 {
		t.Errorf("CreatedAt = %v", inv.CreatedAt)
	}
	if !inv.TotalAmount.Equal(decimal.NewFromInt(300)) {
		t.Errorf("TotalAmount = %s", inv.TotalAmount)
	}
	if got := inv.Items[0].ProductRef(); got != 9 {
		t.Errorf("ProductRef() = %d, want 9", got)
	}
	if got := inv.Items[1].ProductName(); got != "Bolt" {
		t.Errorf("ProductName() = %q", got)
	}
}

func TestDecimal_DefaultEncodingUntouched(t *testing.T) {
	b, err := json.Marshal(Product{Price: decimal.RequireFromString("9.5")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"price":"9.5"`) {
		t.Errorf("json %s: importing models must not change decimal encoding", b)
	}
}

func TestInvoice_EncodesNumbersAndDates(t *testing.T) {
	decimal.MarshalJSONWithoutQuotes = true
	t.Cleanup(func() { decimal.MarshalJSONWithoutQuotes = false })

	inv := Invoice{
		ID:          1,
		InvoiceDate: NewDate(time.Date(2024, 5, 6, 13, 0, 0, 0, time.UTC)),
		Subtotal:    decimal.RequireFromString("12.50"),
	}
	b, err := json.Marshal(inv)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"invoiceDate":"2024-05-06"`, `"subtotal":12.5`, `"createdAt":null`} {
		if !strings.Contains(s, want) {
			t.Errorf("json %s missing %s", s, want)
		}
	}
}

func TestInvoice_DisplayNumberFallback(t *testing.T) {
	inv := &Invoice{ID: 42}
	if got := inv.DisplayNumber(); got != "#42" {
		t.Errorf("DisplayNumber() = %q, want #42", got)
	}
}

func TestRoleSet_Decode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"strings", `["ROLE_ADMIN","ROLE_USER"]`, []string{"ROLE_ADMIN", "ROLE_USER"}},
		{"objects", `[{"id":1,"name":"ROLE_MANAGER"}]`, []string{"ROLE_MANAGER"}},
		{"empty", `[]`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r RoleSet
			if err := json.Unmarshal([]byte(tt.in), &r); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if strings.Join(r, ",") != strings.Join(tt.want, ",") {
				t.Errorf("RoleSet = %v, want %v", r, tt.want)
			}
		})
	}
}

func TestRoleSet_ScanValue(t *testing.T) {
	v, err := RoleSet{"ROLE_ADMIN", "ROLE_USER"}.Value()
	if err != nil || v != "ROLE_ADMIN,ROLE_USER" {
		t.Fatalf("Value() = %v, %v", v, err)
	}
	var r RoleSet
	if err := r.Scan([]byte("ROLE_ADMIN, ROLE_USER")); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !r.Has("ROLE_USER") || len(r) != 2 {
		t.Errorf("Scan() = %v", r)
	}
}

func TestNewPage(t *testing.T) {
	p := NewPage([]int{1, 2}, 0, 5, 7)
	if p.TotalPages != 2 || !p.First || p.Last {
		t.Errorf("page = %+v", p)
	}
	p = NewPage[int](nil, 1, 5, 7)
	if !p.Last || p.Content == nil {
		t.Errorf("page = %+v", p)
	}
}

func TestValidateMethods(t *testing.T) {
	v := validation.Violations{}
	(&Product{Price: decimal.NewFromInt(-1)}).Validate(v)
	(&Product{Price: decimal.Zero}).Validate(v)
	if v["price"] != "must_be_non_negative" || len(v) != 1 {
		t.Errorf("Product.Validate() = %v", v)
	}

	for _, rate := range []string{"-0.01", "100.5"} {
		v := validation.Violations{}
		(&CompanySettings{DefaultTaxRate: decimal.RequireFromString(rate)}).Validate(v)
		if v["defaultTaxRate"] != "out_of_range" {
			t.Errorf("rate %s: Validate() = %v, want out_of_range", rate, v)
		}
	}
	v = validation.Violations{}
	NewCompanySettings().Validate(v)
	if !v.Empty() {
		t.Errorf("defaults should validate, got %v", v)
	}
}
