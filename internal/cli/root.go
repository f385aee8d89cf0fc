package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/bookmark-sync/internal/client"
	"github.com/MKhiriev/bookmark-sync/internal/config"
	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/models"
)

// AppFactory builds the client runtime from the resolved configuration.
type AppFactory func(ctx context.Context, cfg *config.ClientConfig, logger *logger.Logger) (*client.App, error)

// PasswordReader prompts for a password on the terminal.
type PasswordReader func(out io.Writer, prompt string) (string, error)

// cli holds the state shared by the commands of one invocation.
type cli struct {
	buildInfo models.AppBuildInfo

	// flag values
	configPath   string
	serverURL    string
	dbPath       string
	logFile      string
	syncInterval time.Duration

	newApp       AppFactory
	readPassword PasswordReader

	app    *client.App
	logger *logger.Logger
}

// Option customizes the root command.
type Option func(*cli)

// WithAppFactory replaces the construction of the client runtime.
func WithAppFactory(f AppFactory) Option {
	return func(c *cli) { c.newApp = f }
}

// WithPasswordReader replaces the terminal password prompt.
func WithPasswordReader(r PasswordReader) Option {
	return func(c *cli) { c.readPassword = r }
}

// NewRootCommand builds the bookmark-sync command tree.
func NewRootCommand(buildInfo models.AppBuildInfo, opts ...Option) *cobra.Command {
	c := &cli{
		buildInfo:    buildInfo,
		newApp:       client.NewApp,
		readPassword: readTerminalPassword,
	}
	for _, opt := range opts {
		opt(c)
	}

	root := &cobra.Command{
		Use:   "bookmark-sync",
		Short: "End-to-end encrypted bookmark sync",
		Long: `bookmark-sync keeps a bookmark tree in sync across devices.

Titles and addresses are encrypted on the device before they reach the
relay server. Edits made offline are sent on the next sync.`,
		Version:            buildInfo.BuildVersion(),
		PersistentPreRunE:  c.setup,
		PersistentPostRunE: c.teardown,
		SilenceUsage:       true,
		SilenceErrors:      true,
	}
	root.SetVersionTemplate(fmt.Sprintf("bookmark-sync %s (built %s, commit %s)\n",
		buildInfo.BuildVersion(), buildInfo.BuildDate(), buildInfo.BuildCommit()))

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "path to a JSON config file")
	flags.StringVar(&c.serverURL, "server", "", "relay server address")
	flags.StringVar(&c.dbPath, "db", "", "local database file")
	flags.StringVar(&c.logFile, "log-file", "", "client log file")

	root.AddCommand(
		c.signupCommand(),
		c.loginCommand(),
		c.logoutCommand(),
		c.syncCommand(),
		c.statusCommand(),
		c.daemonCommand(),
		c.treeCommand(),
		c.addCommand(),
		c.mkdirCommand(),
		c.renameCommand(),
		c.moveCommand(),
		c.rmCommand(),
		c.favCommand(),
		c.importCommand(),
	)

	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, buildInfo models.AppBuildInfo, args []string, stdout, stderr io.Writer, opts ...Option) int {
	root := NewRootCommand(buildInfo, opts...)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, errorStyle.Render("Error: "+describeError(err)))
		return 1
	}
	return 0
}

// setup resolves the configuration and opens the client runtime.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.GetClientConfig(c.overrides())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	c.logger = logger.NewClientLogger("bookmark-sync-client", cfg.App.LogFile)
	c.logger.Debug().Str("command", cmd.CommandPath()).Str("server", cfg.Adapter.HTTPAddress).Msg("command started")

	ctx := c.logger.WithContext(cmd.Context())
	cmd.SetContext(ctx)

	c.app, err = c.newApp(ctx, cfg, c.logger)
	if err != nil {
		return fmt.Errorf("start client: %w", err)
	}
	return nil
}

func (c *cli) teardown(_ *cobra.Command, _ []string) error {
	if c.app == nil {
		return nil
	}
	return c.app.Close()
}

// overrides turns the flag values into the highest priority config layer.
func (c *cli) overrides() *config.StructuredConfig {
	return &config.StructuredConfig{
		App:          config.App{LogFile: c.logFile},
		Storage:      config.Storage{DB: config.DB{DSN: c.dbPath}},
		Adapter:      config.Adapter{HTTPAddress: c.serverURL},
		Workers:      config.Workers{SyncInterval: c.syncInterval},
		JSONFilePath: c.configPath,
	}
}
