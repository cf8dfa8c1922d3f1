// Package cli is the familyctl command tree. Commands are thin: they read
// flags, call the client library and render the result.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/family-connect/internal/client"
	"github.com/family-connect/internal/client/session"
	"github.com/family-connect/internal/client/storage"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Dependencies is what every command needs once flags are parsed.
type Dependencies struct {
	Config  *Config
	Session *session.Manager
	API     *client.Client
}

type options struct {
	configPath  string
	baseURL     string
	jsonOutput  bool
	interactive func() bool
	deps        *Dependencies
}

// Execute runs familyctl with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{interactive: stdinIsTerminal})
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "familyctl",
		Short:         "Command-line client for the family-connect app",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init()
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", DefaultConfigPath(), "path to config.yaml")
	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "API base URL (overrides config)")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print raw DATA as JSON")

	root.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newDashboardCmd(opts),
		newRemindersCmd(opts),
		newEventsCmd(opts),
		newVideosCmd(opts),
		newNotificationsCmd(opts),
		newProfileCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

func (o *options) init() error {
	cfg, err := LoadConfig(o.configPath)
	if err != nil {
		return err
	}
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
		if err := cfg.validate(); err != nil {
			return err
		}
	}
	sess := session.NewManager(storage.NewFileStore(cfg.StorePath))
	if err := sess.Restore(); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	o.deps = &Dependencies{
		Config:  cfg,
		Session: sess,
		API:     client.New(cfg.BaseURL, sess, client.WithTimeout(cfg.TimeoutDuration())),
	}
	return nil
}

// requireLogin fails fast when no session is stored.
func (o *options) requireLogin() error {
	if !o.deps.Session.IsLoggedIn() {
		return fmt.Errorf("not logged in, run 'familyctl login' first")
	}
	return nil
}

// output prints v as JSON under --json, otherwise the rendered text.
func (o *options) output(cmd *cobra.Command, v interface{}, render func() string) error {
	if o.jsonOutput {
		return writeJSON(cmd.OutOrStdout(), v)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), render())
	return err
}

// signedOut clears local state when the server no longer accepts the session.
func (o *options) signedOut(err error) error {
	if client.IsUnauthorized(err) {
		_ = o.deps.Session.SignOut()
		return fmt.Errorf("session expired, run 'familyctl login' again: %w", err)
	}
	return err
}

func stdinIsTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}
