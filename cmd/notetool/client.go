package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"

	"github.com/xxxsen/notetool/internal/app"
	"github.com/xxxsen/notetool/internal/config"
	"github.com/xxxsen/notetool/internal/localstate"
	"github.com/xxxsen/notetool/internal/remotestore"
	"github.com/xxxsen/notetool/internal/session"
	"github.com/xxxsen/notetool/internal/termui"
)

const (
	denialText  = "access denied: no token"
	loadTimeout = 10 * time.Second
)

type clientOptions struct {
	cfg      config.ClientConfig
	token    string
	logLevel string
	width    int
}

func (o *clientOptions) query() url.Values {
	if o.token == "" {
		return url.Values{}
	}
	return url.Values{session.TokenParam: {o.token}}
}

func (o *clientOptions) state() *localstate.FileStore {
	return localstate.NewFileStore(o.cfg.StatePath)
}

func (o *clientOptions) client() (*app.Client, *localstate.FileStore, error) {
	remote, err := remotestore.NewRemote(o.cfg.Server)
	if err != nil {
		return nil, nil, err
	}
	state := o.state()
	return app.New(remote, state), state, nil
}

func (o *clientOptions) renderer(c *app.Client) *termui.Renderer {
	return termui.NewRenderer(c.Theme(), o.width)
}

// start resolves the identity and waits for the first snapshot of notes and
// the view preference.
func (o *clientOptions) start(ctx context.Context) (*app.Client, error) {
	c, _, err := o.client()
	if err != nil {
		return nil, err
	}
	if _, err := c.Start(ctx, o.query()); err != nil {
		return nil, err
	}
	waitCtx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()
	if err := c.Notes().WaitLoaded(waitCtx); err != nil {
		c.Close()
		return nil, fmt.Errorf("waiting for notes: %w", err)
	}
	if err := c.View().WaitLoaded(waitCtx); err != nil {
		c.Close()
		return nil, fmt.Errorf("waiting for view preference: %w", err)
	}
	return c, nil
}

func addClientCommands(root *cobra.Command) {
	opts := &clientOptions{}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.cfg.Server, "server", envOr("NOTETOOL_SERVER", "http://127.0.0.1:8080"), "store server url")
	flags.StringVar(&opts.cfg.StatePath, "state", config.DefaultStatePath(), "local state file")
	flags.StringVar(&opts.token, "token", "", "identity token, persisted for later runs")
	flags.StringVar(&opts.logLevel, "log-level", "error", "client log level")
	flags.IntVar(&opts.width, "width", 100, "terminal width for grid layout")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if cmd.Name() != "serve" {
			logger.Init("", opts.logLevel, 0, 0, 0, true)
		}
	}

	root.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newNotesCmd(opts),
		newViewCmd(opts),
		newThemeCmd(opts),
	)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func newLoginCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "remember --token as the identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := session.NewManager(opts.state()).Resolve(opts.query())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", identity)
			return nil
		},
	}
}

func newLogoutCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "forget the identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := opts.client()
			if err != nil {
				return err
			}
			if err := c.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newWhoamiCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "print the active identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := session.NewManager(opts.state()).Resolve(opts.query())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), identity)
			return nil
		},
	}
}
