package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diewo77/invoicedesk/i18n"
	"github.com/diewo77/invoicedesk/internal/api"
	"github.com/diewo77/invoicedesk/internal/export"
	"github.com/diewo77/invoicedesk/internal/models"
	"github.com/diewo77/invoicedesk/internal/services"
	"github.com/diewo77/invoicedesk/internal/session"
	"github.com/diewo77/invoicedesk/validation"
	"github.com/diewo77/invoicedesk/view"
)

const usage = `usage: invoicedesk <command> [arguments]

  login [-p password] <username>     sign in
  logout                             sign out
  whoami                             show the signed-in user and capabilities
  lang fr|en                         switch the language
  compact on|off                     compact table output
  dashboard                          statistics and latest activity
  invoices list|show|search|create|edit|status|delete|export
  template [-format pdf|xlsx]        blank invoice template
  products list|add|edit|delete
  clients list|add|edit|delete
  company show|set|logo|reserve|preview
  users list|toggle|delete
  activity [-page n] [-size n] [-user u] [-entity e] [-action a] | activity options`

var errUsage = errors.New("invalid arguments, see invoicedesk help")

// Run dispatches args to a command.
func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(c.out, usage)
		return nil
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "help", "-h", "--help":
		fmt.Fprintln(c.out, usage)
		return nil
	case "login":
		return c.login(ctx, rest)
	case "logout":
		return c.logout(ctx)
	case "whoami":
		return c.whoami(ctx)
	case "lang":
		return c.language(ctx, rest)
	case "compact":
		return c.compact(ctx, rest)
	}

	run, ok := map[string]func(context.Context, *session.Session, []string) error{
		"dashboard": c.dashboard,
		"invoices":  c.invoices,
		"template":  c.template,
		"products":  c.products,
		"clients":   c.clients,
		"company":   c.company,
		"users":     c.users,
		"activity":  c.activity,
	}[cmd]
	if !ok {
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}

	sess, err := c.sessions.Get(ctx)
	if err != nil {
		return err
	}
	if sess == nil {
		return api.ErrUnauthorized
	}
	return run(ctx, sess, rest)
}

func (c *CLI) lang(ctx context.Context) string { return c.sessions.Language(ctx) }

func (c *CLI) t(ctx context.Context, code string, args ...any) string {
	if len(args) == 0 {
		return i18n.T(c.lang(ctx), code)
	}
	return i18n.Tf(c.lang(ctx), code, args...)
}

func (c *CLI) println(ctx context.Context, code string, args ...any) {
	fmt.Fprintln(c.out, c.t(ctx, code, args...))
}

// table writes rows aligned in columns. Compact mode uses single spaces.
func (c *CLI) table(ctx context.Context, header []string, rows [][]string) {
	pad := 2
	if c.sessions.SidebarCollapsed(ctx) {
		pad = 1
	}
	w := tabwriter.NewWriter(c.out, 0, 0, pad, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(w, strings.Join(r, "\t"))
	}
	_ = w.Flush()
}

// confirm asks a yes/no question on the input stream.
func (c *CLI) confirm(question string) bool {
	fmt.Fprint(c.out, question+" [y/N] ")
	line, _ := c.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "o", "oui":
		return true
	}
	return false
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q: %w", s, errUsage)
	}
	return uint(id), nil
}

// violationText translates validation violations, one field per line.
func violationText(lang string, err error) string {
	var v validation.Violations
	if !errors.As(err, &v) {
		return ""
	}
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	lines := make([]string, len(fields))
	for i, f := range fields {
		lines[i] = f + ": " + i18n.T(lang, v[f])
	}
	return strings.Join(lines, "\n")
}

func (c *CLI) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	password := fs.String("p", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}
	if *password == "" {
		fmt.Fprint(c.out, "Password: ")
		line, err := c.in.ReadString('\n')
		if err != nil && line == "" {
			return err
		}
		*password = strings.TrimSpace(line)
	}
	s, err := c.client.Auth.SignIn(ctx, fs.Arg(0), *password)
	if err != nil {
		return err
	}
	if err := c.sessions.Set(ctx, s); err != nil {
		return err
	}
	c.println(ctx, "msg.logged_in", s.Username)
	return nil
}

func (c *CLI) logout(ctx context.Context) error {
	if err := c.sessions.Clear(ctx); err != nil {
		return err
	}
	c.println(ctx, "msg.logged_out")
	return nil
}

func (c *CLI) whoami(ctx context.Context) error {
	s, err := c.sessions.Get(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		return api.ErrUnauthorized
	}
	roles := make([]string, len(s.Roles))
	for i, r := range s.Roles {
		roles[i] = c.t(ctx, "role."+r)
	}
	fmt.Fprintf(c.out, "%s <%s> %s\n", s.Username, s.Email, strings.Join(roles, ", "))
	caps := s.Capabilities()
	for _, cp := range []struct {
		name string
		ok   bool
	}{
		{"manage users", caps.CanManageUsers},
		{"view activity", caps.CanViewActivity},
		{"create invoices", caps.CanCreateInvoices},
		{"edit invoices", caps.CanEditInvoices},
		{"change invoice status", caps.CanChangeInvoiceStatus},
		{"delete invoices", caps.CanDeleteInvoices},
		{"export", caps.CanExport},
		{"manage products", caps.CanManageProducts},
		{"manage clients", caps.CanManageClients},
		{"edit company", caps.CanEditCompany},
	} {
		if cp.ok {
			fmt.Fprintln(c.out, "  +", cp.name)
		}
	}
	return nil
}

func (c *CLI) language(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := c.sessions.SetLanguage(ctx, args[0]); err != nil {
		return err
	}
	c.println(ctx, "msg.language_changed", c.lang(ctx))
	return nil
}

func (c *CLI) compact(ctx context.Context, args []string) error {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		return errUsage
	}
	return c.sessions.SetSidebarCollapsed(ctx, args[0] == "on")
}

func (c *CLI) dashboard(ctx context.Context, sess *session.Session, _ []string) error {
	c.println(ctx, "msg.loading")
	stats, err := services.Dashboard{
		Clients:  c.client.Clients,
		Products: c.client.Products,
		Invoices: c.client.Invoices,
	}.Load(ctx)
	if err != nil {
		return err
	}
	c.table(ctx, []string{"", ""}, [][]string{
		{"Clients", strconv.Itoa(stats.Clients)},
		{"Products", strconv.Itoa(stats.Products)},
		{"Invoices", strconv.Itoa(stats.Invoices)},
		{c.t(ctx, "status.PENDING"), strconv.Itoa(stats.Pending)},
		{c.t(ctx, "status.PAID"), strconv.Itoa(stats.Paid)},
		{c.t(ctx, "status.OVERDUE"), strconv.Itoa(stats.Overdue)},
		{"Revenue", stats.Revenue.StringFixed(2)},
	})
	if len(stats.Recent) > 0 {
		fmt.Fprintln(c.out)
		c.invoiceTable(ctx, stats.Recent)
	}

	feed := services.NewActivityFeed(c.client.Activity, sess.Capabilities())
	feed.Mount()
	defer feed.Unmount()
	if err := feed.Load(ctx); err != nil {
		c.log.Warn("activity feed", "error", err)
		return nil
	}
	entries := feed.Entries(c.lang(ctx), time.Now())
	if len(entries) == 0 {
		return nil
	}
	fmt.Fprintln(c.out)
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Ago, e.Log.Username, e.Log.Action, e.Log.Details}
	}
	c.table(ctx, []string{"", "", "", ""}, rows)
	return nil
}

func (c *CLI) invoiceTable(ctx context.Context, invoices []models.Invoice) {
	rows := make([][]string, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		rows[i] = []string{
			strconv.FormatUint(uint64(inv.ID), 10),
			inv.DisplayNumber(),
			inv.CustomerName,
			export.FormatDate(c.lang(ctx), inv.InvoiceDate),
			c.t(ctx, "status."+string(inv.Status)),
			inv.TotalAmount.StringFixed(2),
		}
	}
	c.table(ctx, []string{"ID", c.t(ctx, "label.number_short"), c.t(ctx, "label.customer"),
		c.t(ctx, "label.date"), c.t(ctx, "label.status"), c.t(ctx, "col.total")}, rows)
}

// itemsFlag collects repeated -item productId:quantity values.
type itemsFlag []services.ItemRow

func (f *itemsFlag) String() string { return fmt.Sprint(len(*f)) }

func (f *itemsFlag) Set(v string) error {
	id, qty, ok := strings.Cut(v, ":")
	n := 1
	if ok {
		var err error
		if n, err = strconv.Atoi(qty); err != nil {
			return fmt.Errorf("quantity %q: %w", qty, err)
		}
	}
	*f = append(*f, services.ItemRow{ProductID: id, Quantity: n})
	return nil
}

func (c *CLI) invoices(ctx context.Context, sess *session.Session, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	ctrl := services.NewInvoiceController(c.client.Invoices, c.client.Products, sess.Capabilities(), c.log)
	ctrl.View.Mount()
	defer ctrl.View.Unmount()

	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		if err := ctrl.Load(ctx); err != nil {
			return err
		}
		items := ctrl.Invoices.Items()
		if len(items) == 0 {
			c.println(ctx, "msg.no_invoices")
			return nil
		}
		list := make([]models.Invoice, len(items))
		for i, inv := range items {
			list[i] = *inv
		}
		c.invoiceTable(ctx, list)
		return nil

	case "search":
		if len(rest) != 1 {
			return errUsage
		}
		found, err := c.client.Invoices.Search(ctx, rest[0])
		if err != nil {
			return err
		}
		if len(found) == 0 {
			c.println(ctx, "msg.no_invoices")
			return nil
		}
		c.invoiceTable(ctx, found)
		return nil

	case "show":
		if len(rest) != 1 {
			return errUsage
		}
		id, err := parseID(rest[0])
		if err != nil {
			return err
		}
		inv, err := c.client.Invoices.Get(ctx, id)
		if err != nil {
			return err
		}
		c.showInvoice(ctx, inv)
		return nil

	case "create", "edit":
		fs := flag.NewFlagSet("invoices "+sub, flag.ContinueOnError)
		customer := fs.String("customer", "", "customer name")
		var items itemsFlag
		fs.Var(&items, "item", "productId:quantity, repeatable")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		form := services.NewInvoiceForm()
		if sub == "edit" {
			if fs.NArg() != 1 {
				return errUsage
			}
			id, err := parseID(fs.Arg(0))
			if err != nil {
				return err
			}
			if err := ctrl.Load(ctx); err != nil {
				return err
			}
			inv, ok := ctrl.Invoices.Find(id)
			if !ok {
				return fmt.Errorf("invoice %d not found", id)
			}
			if !ctrl.CanEdit(inv) {
				return services.ErrNotAllowed
			}
			form = services.EditForm(inv)
		}
		if *customer != "" {
			form.CustomerName = *customer
		}
		if len(items) > 0 {
			form.Items = items
		}
		inv, err := ctrl.Submit(ctx, form)
		if err != nil {
			return err
		}
		if sub == "create" {
			c.println(ctx, "msg.invoice_created")
		} else {
			c.println(ctx, "msg.invoice_updated")
		}
		c.showInvoice(ctx, inv)
		return nil

	case "status":
		fs := flag.NewFlagSet("invoices status", flag.ContinueOnError)
		yes := fs.Bool("yes", false, "do not ask for confirmation")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if fs.NArg() != 2 {
			return errUsage
		}
		id, err := parseID(fs.Arg(0))
		if err != nil {
			return err
		}
		if err := ctrl.Load(ctx); err != nil {
			return err
		}
		inv, ok := ctrl.Invoices.Find(id)
		if !ok {
			return fmt.Errorf("invoice %d not found", id)
		}
		staged, err := ctrl.StageTransition(inv, models.InvoiceStatus(strings.ToUpper(fs.Arg(1))))
		if err != nil {
			return err
		}
		question := c.t(ctx, "msg.confirm_status", staged.Number, c.t(ctx, "status."+string(staged.To)))
		if !*yes && !c.confirm(question) {
			ctrl.CancelTransition()
			return nil
		}
		if _, err := ctrl.ConfirmTransition(ctx); err != nil {
			return err
		}
		c.println(ctx, "msg.status_updated")
		return nil

	case "delete":
		fs := flag.NewFlagSet("invoices delete", flag.ContinueOnError)
		yes := fs.Bool("yes", false, "do not ask for confirmation")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return errUsage
		}
		id, err := parseID(fs.Arg(0))
		if err != nil {
			return err
		}
		if err := ctrl.Load(ctx); err != nil {
			return err
		}
		inv, ok := ctrl.Invoices.Find(id)
		if !ok {
			return fmt.Errorf("invoice %d not found", id)
		}
		if err := ctrl.StageDelete(inv); err != nil {
			return err
		}
		if !*yes && !c.confirm(c.t(ctx, "msg.confirm_delete", inv.DisplayNumber())) {
			ctrl.CancelDelete()
			return nil
		}
		if err := ctrl.ConfirmDelete(ctx); err != nil {
			return err
		}
		c.println(ctx, "msg.deleted")
		return nil

	case "export":
		if !sess.Capabilities().CanExport {
			return services.ErrNotAllowed
		}
		fs := flag.NewFlagSet("invoices export", flag.ContinueOnError)
		format := fs.String("format", "pdf", "pdf or xlsx")
		dir := fs.String("out", ".", "output directory")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return errUsage
		}
		id, err := parseID(fs.Arg(0))
		if err != nil {
			return err
		}
		inv, err := c.client.Invoices.Get(ctx, id)
		if err != nil {
			return err
		}
		cs, err := c.client.Company.Get(ctx)
		if err != nil {
			return err
		}
		return c.writeDocument(ctx, export.InvoiceLayout(inv, cs, c.lang(ctx)), *format, *dir)
	}
	return fmt.Errorf("unknown invoices command %q: %w", sub, errUsage)
}

func (c *CLI) showInvoice(ctx context.Context, inv *models.Invoice) {
	fmt.Fprintf(c.out, "%s  %s  %s  %s\n", inv.DisplayNumber(), inv.CustomerName,
		export.FormatDate(c.lang(ctx), inv.InvoiceDate), c.t(ctx, "status."+string(inv.Status)))
	rows := make([][]string, len(inv.Items))
	for i := range inv.Items {
		it := &inv.Items[i]
		rows[i] = []string{it.ProductName(), strconv.Itoa(it.Quantity), it.UnitPrice.StringFixed(2), it.Subtotal.StringFixed(2)}
	}
	c.table(ctx, []string{c.t(ctx, "col.product"), c.t(ctx, "col.qty"), c.t(ctx, "col.unit_price"), c.t(ctx, "col.subtotal")}, rows)
	fmt.Fprintf(c.out, "%s: %s  %s: %s  %s: %s\n",
		c.t(ctx, "total.subtotal"), inv.Subtotal.StringFixed(2),
		c.t(ctx, "total.tax"), inv.TaxAmount.StringFixed(2),
		c.t(ctx, "total.total"), inv.TotalAmount.StringFixed(2))
}

// writeDocument renders doc in format into dir.
func (c *CLI) writeDocument(ctx context.Context, doc export.Document, format, dir string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "pdf":
		data, err = export.RenderPDF(doc, c.log)
	case "xlsx":
		data, err = export.RenderXLSX(doc)
	default:
		return fmt.Errorf("format %q: %w", format, errUsage)
	}
	if err != nil {
		return err
	}
	path := filepath.Join(dir, doc.FileName(format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	c.println(ctx, "msg.exported", path)
	return nil
}

func (c *CLI) template(ctx context.Context, sess *session.Session, args []string) error {
	if !sess.Capabilities().CanExport {
		return services.ErrNotAllowed
	}
	fs := flag.NewFlagSet("template", flag.ContinueOnError)
	format := fs.String("format", "pdf", "pdf or xlsx")
	dir := fs.String("out", ".", "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cs, err := c.client.Company.Get(ctx)
	if err != nil {
		return err
	}
	return c.writeDocument(ctx, export.BlankLayout(cs, c.lang(ctx)), *format, *dir)
}

func (c *CLI) products(ctx context.Context, sess *session.Session, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	ctrl := services.NewEntityController[models.Product](c.client.Products, sess.Capabilities().CanManageProducts)
	ctrl.View.Mount()
	defer ctrl.View.Unmount()
	if err := ctrl.Load(ctx); err != nil {
		return err
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		items := ctrl.Items.Items()
		rows := make([][]string, len(items))
		for i, p := range items {
			rows[i] = []string{strconv.FormatUint(uint64(p.ID), 10), p.Name, p.Category, p.Price.StringFixed(2), strconv.Itoa(p.StockQuantity)}
		}
		c.table(ctx, []string{"ID", c.t(ctx, "label.name"), "Category", "Price", "Stock"}, rows)
		return nil

	case "add", "edit":
		p := &models.Product{}
		if sub == "edit" {
			if len(rest) == 0 {
				return errUsage
			}
			id, err := parseID(rest[0])
			if err != nil {
				return err
			}
			existing, ok := ctrl.Items.Find(id)
			if !ok {
				return fmt.Errorf("product %d not found", id)
			}
			cp := *existing
			p = &cp
			rest = rest[1:]
		}
		fs := flag.NewFlagSet("products "+sub, flag.ContinueOnError)
		fs.StringVar(&p.Name, "name", p.Name, "name")
		fs.StringVar(&p.Description, "description", p.Description, "description")
		fs.StringVar(&p.Category, "category", p.Category, "category")
		price := fs.String("price", p.Price.String(), "unit price")
		fs.IntVar(&p.StockQuantity, "stock", p.StockQuantity, "stock quantity")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		d, err := decimal.NewFromString(*price)
		if err != nil {
			return fmt.Errorf("price %q: %w", *price, errUsage)
		}
		p.Price = d
		saved, err := ctrl.Save(ctx, p)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%d %s\n", saved.ID, saved.Name)
		return nil

	case "delete":
		return c.deleteEntity(ctx, rest, func(id uint) (string, bool) {
			p, ok := ctrl.Items.Find(id)
			if !ok {
				return "", false
			}
			return p.Name, true
		}, ctrl.Delete)
	}
	return fmt.Errorf("unknown products command %q: %w", sub, errUsage)
}

func (c *CLI) clients(ctx context.Context, sess *session.Session, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	ctrl := services.NewEntityController[models.Client](c.client.Clients, sess.Capabilities().CanManageClients)
	ctrl.View.Mount()
	defer ctrl.View.Unmount()
	if err := ctrl.Load(ctx); err != nil {
		return err
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		items := ctrl.Items.Items()
		rows := make([][]string, len(items))
		for i, cl := range items {
			rows[i] = []string{strconv.FormatUint(uint64(cl.ID), 10), cl.Name, cl.CompanyName, cl.Email, cl.City}
		}
		c.table(ctx, []string{"ID", c.t(ctx, "label.name"), c.t(ctx, "label.company_name"), c.t(ctx, "label.email"), c.t(ctx, "label.city")}, rows)
		return nil

	case "add", "edit":
		cl := &models.Client{}
		if sub == "edit" {
			if len(rest) == 0 {
				return errUsage
			}
			id, err := parseID(rest[0])
			if err != nil {
				return err
			}
			existing, ok := ctrl.Items.Find(id)
			if !ok {
				return fmt.Errorf("client %d not found", id)
			}
			cp := *existing
			cl = &cp
			rest = rest[1:]
		}
		fs := flag.NewFlagSet("clients "+sub, flag.ContinueOnError)
		fs.StringVar(&cl.Name, "name", cl.Name, "name")
		fs.StringVar(&cl.CompanyName, "company", cl.CompanyName, "company name")
		fs.StringVar(&cl.Email, "email", cl.Email, "email")
		fs.StringVar(&cl.Phone, "phone", cl.Phone, "phone")
		fs.StringVar(&cl.Address, "address", cl.Address, "street address")
		fs.StringVar(&cl.City, "city", cl.City, "city")
		fs.StringVar(&cl.PostalCode, "postal", cl.PostalCode, "postal code")
		fs.StringVar(&cl.Country, "country", cl.Country, "country")
		fs.StringVar(&cl.TaxNumber, "tax", cl.TaxNumber, "tax number")
		fs.StringVar(&cl.Notes, "notes", cl.Notes, "notes")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		saved, err := ctrl.Save(ctx, cl)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%d %s\n", saved.ID, saved.Name)
		return nil

	case "delete":
		return c.deleteEntity(ctx, rest, func(id uint) (string, bool) {
			cl, ok := ctrl.Items.Find(id)
			if !ok {
				return "", false
			}
			return cl.Name, true
		}, ctrl.Delete)
	}
	return fmt.Errorf("unknown clients command %q: %w", sub, errUsage)
}

func (c *CLI) deleteEntity(ctx context.Context, args []string, name func(uint) (string, bool), remove func(context.Context, uint) error) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	label, ok := name(id)
	if !ok {
		return fmt.Errorf("%d not found", id)
	}
	if !*yes && !c.confirm(c.t(ctx, "msg.confirm_delete", label)) {
		return nil
	}
	if err := remove(ctx, id); err != nil {
		return err
	}
	c.println(ctx, "msg.deleted")
	return nil
}

func (c *CLI) company(ctx context.Context, sess *session.Session, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	ctrl := services.NewCompanyController(c.client.Company, sess.Capabilities())
	ctrl.View.Mount()
	defer ctrl.View.Unmount()
	if err := ctrl.Load(ctx); err != nil {
		return err
	}
	cs := ctrl.Settings()

	sub, rest := args[0], args[1:]
	switch sub {
	case "show":
		rows := [][]string{
			{c.t(ctx, "label.company_name"), cs.CompanyName},
			{c.t(ctx, "label.address"), cs.Address},
			{c.t(ctx, "label.city_postal"), cs.CityLine()},
			{c.t(ctx, "label.phone"), cs.Phone},
			{c.t(ctx, "label.email"), cs.Email},
			{c.t(ctx, "label.vat_number"), cs.TaxNumber},
			{c.t(ctx, "label.bank"), cs.BankName + " " + cs.BankAccount},
			{c.t(ctx, "label.vat"), cs.DefaultTaxRate.String() + "%"},
			{"Currency", string(cs.Currency)},
			{c.t(ctx, "label.numbering"), strings.Join(services.NumberingPreview(cs), ", ")},
		}
		c.table(ctx, []string{"", ""}, rows)
		return nil

	case "set":
		if len(rest) == 0 {
			return errUsage
		}
		for _, kv := range rest {
			key, value, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("expected key=value, got %q: %w", kv, errUsage)
			}
			if err := setCompanyField(cs, key, value); err != nil {
				return err
			}
		}
		if _, err := ctrl.Save(ctx, cs); err != nil {
			return err
		}
		c.println(ctx, "msg.saved")
		return nil

	case "logo":
		if len(rest) != 1 {
			return errUsage
		}
		data, err := os.ReadFile(rest[0])
		if err != nil {
			return err
		}
		if err := services.SetLogo(cs, data); err != nil {
			return err
		}
		if _, err := ctrl.Save(ctx, cs); err != nil {
			return err
		}
		c.println(ctx, "msg.saved")
		return nil

	case "reserve":
		n, err := ctrl.ReserveNumber(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, n)
		return nil

	case "preview":
		fs := flag.NewFlagSet("company preview", flag.ContinueOnError)
		out := fs.String("out", "", "write the HTML preview to this file")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		page := view.NewQuotePage(cs, c.lang(ctx))
		if *out == "" {
			q := page.Quote
			for _, l := range q.Lines {
				fmt.Fprintf(c.out, "%-20s %3d x %s = %s\n", l.Description, l.Quantity,
					export.FormatMoney(cs.Currency, l.UnitPrice), export.FormatMoney(cs.Currency, l.Total))
			}
			fmt.Fprintf(c.out, "%s: %s\n%s (%s%%): %s\n%s: %s\n",
				c.t(ctx, "total.subtotal_ht"), export.FormatMoney(cs.Currency, q.Subtotal),
				c.t(ctx, "total.tax"), q.TaxRate.String(), export.FormatMoney(cs.Currency, q.Tax),
				c.t(ctx, "total.total_ttc"), export.FormatMoney(cs.Currency, q.Total))
			return nil
		}
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		if err := view.Execute(f, c.lang(ctx), "quote.html", page); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		c.println(ctx, "msg.exported", *out)
		return nil
	}
	return fmt.Errorf("unknown company command %q: %w", sub, errUsage)
}

// setCompanyField assigns one settings field from its key=value form.
func setCompanyField(cs *models.CompanySettings, key, value string) error {
	strField := map[string]*string{
		"companyName":        &cs.CompanyName,
		"address":            &cs.Address,
		"city":               &cs.City,
		"postalCode":         &cs.PostalCode,
		"country":            &cs.Country,
		"phone":              &cs.Phone,
		"email":              &cs.Email,
		"website":            &cs.Website,
		"taxNumber":          &cs.TaxNumber,
		"registrationNumber": &cs.RegistrationNumber,
		"bankName":           &cs.BankName,
		"bankAccount":        &cs.BankAccount,
		"swiftCode":          &cs.SwiftCode,
		"termsAndConditions": &cs.TermsAndConditions,
		"invoiceNotes":       &cs.InvoiceNotes,
		"invoicePrefix":      &cs.InvoicePrefix,
	}
	if p, ok := strField[key]; ok {
		*p = value
		return nil
	}
	switch key {
	case "nextInvoiceNumber":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		cs.NextInvoiceNumber = n
	case "defaultTaxRate":
		d, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		cs.DefaultTaxRate = d
	case "currency":
		cs.Currency = models.Currency(strings.ToUpper(value))
	default:
		return fmt.Errorf("unknown setting %q: %w", key, errUsage)
	}
	return nil
}

func (c *CLI) users(ctx context.Context, sess *session.Session, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	ctrl := services.NewUserController(c.client.Users, sess.Subject())
	ctrl.View.Mount()
	defer ctrl.View.Unmount()
	if err := ctrl.Load(ctx); err != nil {
		return err
	}

	sub, rest := args[0], args[1:]
	if sub == "list" {
		items := ctrl.Users.Items()
		rows := make([][]string, len(items))
		for i, u := range items {
			status := "ACTIVE"
			if !u.Enabled {
				status = "INACTIVE"
			}
			roles := make([]string, len(u.Roles))
			for j, r := range u.Roles {
				roles[j] = c.t(ctx, "role."+r)
			}
			rows[i] = []string{strconv.FormatUint(uint64(u.ID), 10), u.Username, u.Email, strings.Join(roles, ", "), status}
		}
		c.table(ctx, []string{"ID", c.t(ctx, "label.name"), c.t(ctx, "label.email"), "Roles", c.t(ctx, "label.status")}, rows)
		return nil
	}

	if len(rest) != 1 {
		return errUsage
	}
	id, err := parseID(rest[0])
	if err != nil {
		return err
	}
	u, ok := ctrl.Users.Find(id)
	if !ok {
		return fmt.Errorf("user %d not found", id)
	}
	switch sub {
	case "toggle":
		updated, err := ctrl.ToggleStatus(ctx, u)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s enabled=%t\n", updated.Username, updated.Enabled)
		return nil
	case "delete":
		if !c.confirm(c.t(ctx, "msg.confirm_delete", u.Username)) {
			return nil
		}
		if err := ctrl.Delete(ctx, u); err != nil {
			return err
		}
		c.println(ctx, "msg.deleted")
		return nil
	}
	return fmt.Errorf("unknown users command %q: %w", sub, errUsage)
}

func (c *CLI) activity(ctx context.Context, sess *session.Session, args []string) error {
	browser := services.NewActivityLogBrowser(c.client.Activity, sess.Capabilities())
	browser.View.Mount()
	defer browser.View.Unmount()

	if len(args) > 0 && args[0] == "options" {
		if err := browser.LoadOptions(ctx); err != nil {
			return err
		}
		o := browser.Options()
		fmt.Fprintln(c.out, "users:   ", strings.Join(o.Usernames, ", "))
		fmt.Fprintln(c.out, "entities:", strings.Join(o.EntityTypes, ", "))
		fmt.Fprintln(c.out, "actions: ", strings.Join(o.Actions, ", "))
		return nil
	}

	fs := flag.NewFlagSet("activity", flag.ContinueOnError)
	page := fs.Int("page", 0, "page number, from 0")
	size := fs.Int("size", 20, "page size")
	var f api.ActivityFilter
	fs.StringVar(&f.Username, "user", "", "username")
	fs.StringVar(&f.EntityType, "entity", "", "entity type")
	fs.StringVar(&f.Action, "action", "", "action")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var logs []models.ActivityLog
	if f == (api.ActivityFilter{}) {
		p, err := browser.Page(ctx, *page, *size)
		if err != nil {
			return err
		}
		logs = p.Content
		defer fmt.Fprintf(c.out, "page %d/%d (%d)\n", p.Number+1, max(p.TotalPages, 1), p.TotalElements)
	} else {
		var err error
		if logs, err = browser.Filter(ctx, f); err != nil {
			return err
		}
	}
	rows := make([][]string, len(logs))
	for i, l := range logs {
		rows[i] = []string{l.CreatedAt.String(), l.Username, l.Action, l.EntityType, l.Details, l.IPAddress}
	}
	c.table(ctx, []string{c.t(ctx, "label.date"), c.t(ctx, "label.name"), "Action", "Entity", "Details", "IP"}, rows)
	return nil
}
