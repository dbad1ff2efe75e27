// Command invoicedesk is the terminal client of the invoicing backend.
//
//	invoicedesk login <username>
//	invoicedesk invoices list
//	invoicedesk invoices export -format pdf 12
//
// Run "invoicedesk help" for every command.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/diewo77/invoicedesk/gate"
	"github.com/diewo77/invoicedesk/i18n"
	"github.com/diewo77/invoicedesk/internal/api"
	"github.com/diewo77/invoicedesk/internal/config"
	"github.com/diewo77/invoicedesk/internal/logging"
	"github.com/diewo77/invoicedesk/internal/prefs"
	"github.com/diewo77/invoicedesk/internal/services"
	"github.com/diewo77/invoicedesk/internal/session"
)

func main() {
	// Money travels as JSON numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invoicedesk:", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.Client)
	if err != nil {
		log.Error("open state", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	cli, err := NewCLI(cfg.Client, session.NewManager(store), os.Stdin, os.Stdout, log)
	if err != nil {
		log.Error("create client", "error", err)
		os.Exit(1)
	}
	if err := cli.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, cli.describe(ctx, err))
		os.Exit(1)
	}
}

// openStore picks Redis when an address is configured and the JSON state
// file otherwise.
func openStore(ctx context.Context, cfg config.ClientConfig) (prefs.Store, func(), error) {
	if cfg.RedisAddr == "" {
		return prefs.NewFile(cfg.StatePath()), func() {}, nil
	}
	client, err := prefs.DialRedis(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	return prefs.NewRedis(client, "invoicedesk:"), func() { _ = client.Close() }, nil
}

// CLI holds the process-wide client state shared by every command.
type CLI struct {
	sessions *session.Manager
	client   *api.Client
	in       *bufio.Reader
	out      io.Writer
	log      *slog.Logger
	expired  bool
}

func NewCLI(cfg config.ClientConfig, sessions *session.Manager, in io.Reader, out io.Writer, log *slog.Logger) (*CLI, error) {
	c := &CLI{sessions: sessions, in: bufio.NewReader(in), out: out, log: log}
	client, err := api.New(cfg.APIURL, sessions,
		api.WithTimeout(cfg.Timeout),
		api.WithLogger(log),
		api.WithNavigator(api.NavigatorFunc(func() { c.expired = true })),
	)
	if err != nil {
		return nil, err
	}
	c.client = client
	return c, nil
}

// describe turns err into the line shown to the user.
func (c *CLI) describe(ctx context.Context, err error) string {
	lang := c.sessions.Language(ctx)
	switch {
	case errors.Is(err, api.ErrUnauthorized) || c.expired:
		return i18n.T(lang, "msg.session_expired")
	case errors.Is(err, services.ErrNotAllowed):
		return i18n.T(lang, "msg.not_allowed")
	case errors.Is(err, gate.ErrSelfAction):
		return i18n.T(lang, "self_action")
	}
	if msg := violationText(lang, err); msg != "" {
		return msg
	}
	var se *api.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return "invoicedesk: " + se.Message
	}
	return "invoicedesk: " + err.Error()
}
