package services

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/diewo77/invoicedesk/internal/models"
)

// RecentInvoices is the number of invoices listed on the dashboard.
const RecentInvoices = 5

// Stats are the dashboard figures.
type Stats struct {
	Clients  int
	Products int
	Invoices int
	Pending  int
	Paid     int
	Overdue  int
	Revenue  decimal.Decimal
	Recent   []models.Invoice
}

// Dashboard loads clients, products and invoices concurrently and summarises
// them.
type Dashboard struct {
	Clients  Lister[models.Client]
	Products Lister[models.Product]
	Invoices Lister[models.Invoice]
}

func (d Dashboard) Load(ctx context.Context) (Stats, error) {
	var (
		clients  []models.Client
		products []models.Product
		invoices []models.Invoice
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { clients, err = d.Clients.List(ctx); return err })
	g.Go(func() (err error) { products, err = d.Products.List(ctx); return err })
	g.Go(func() (err error) { invoices, err = d.Invoices.List(ctx); return err })
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	s := Summarize(invoices)
	s.Clients = len(clients)
	s.Products = len(products)
	return s, nil
}

// Summarize counts invoices per status, sums the revenue of paid ones and
// keeps the most recent by invoice date.
func Summarize(invoices []models.Invoice) Stats {
	s := Stats{Invoices: len(invoices)}
	for _, inv := range invoices {
		switch inv.Status {
		case models.StatusPending:
			s.Pending++
		case models.StatusPaid:
			s.Paid++
			s.Revenue = s.Revenue.Add(inv.TotalAmount)
		case models.StatusOverdue:
			s.Overdue++
		}
	}
	recent := append([]models.Invoice(nil), invoices...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].InvoiceDate.After(recent[j].InvoiceDate.Time)
	})
	if len(recent) > RecentInvoices {
		recent = recent[:RecentInvoices]
	}
	s.Recent = recent
	return s
}
