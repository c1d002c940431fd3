// Package cli implements the recipebook command line driving adapter.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/recipebook/internal/application"
	"github.com/ericfisherdev/recipebook/internal/config"
	"github.com/ericfisherdev/recipebook/internal/domain/port/driven"
)

// App is the wired application the commands operate on.
type App struct {
	Recipes  *application.RecipeService
	List     *application.ListController
	Messages driven.MessageStore
	// Serve runs the web GUI and JSON API until ctx is canceled.
	Serve func(ctx context.Context) error
	// Close releases the app's resources. May be nil.
	Close func() error
}

// Builder wires an App from configuration.
type Builder func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error)

type options struct {
	verbose    bool
	jsonOutput bool
	apiURL     string
	dbPath     string
	listenAddr string
	timeout    time.Duration
	noCache    bool
}

// errOperationFailed is returned after a command has already reported a
// soft failure to stderr.
var errOperationFailed = errors.New("operation failed")

// runner carries state from the persistent pre-run hook to the subcommands.
type runner struct {
	build  Builder
	opts   options
	logger *slog.Logger
	cfg    *config.Config
	app    *App
	failed bool
}

// NewRootCmd builds the command tree. build is called once per invocation,
// after configuration is loaded and flag overrides are applied.
func NewRootCmd(build Builder) *cobra.Command {
	r := &runner{build: build}

	root := &cobra.Command{
		Use:   "recipebook",
		Short: "Browse and edit a remote recipe collection",
		Long: `recipebook talks to a recipe REST backend. Every operation records a
status message; failures are reported and never crash the program.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  r.setup,
		PersistentPostRunE: r.finish,
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&r.opts.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.BoolVar(&r.opts.jsonOutput, "json", false, "Output in JSON format")
	flags.StringVar(&r.opts.apiURL, "api-url", "", "Recipe API base URL (overrides RECIPEBOOK_API_URL)")
	flags.StringVar(&r.opts.dbPath, "db", "", "Message history database (overrides RECIPEBOOK_DB_PATH)")
	flags.StringVar(&r.opts.listenAddr, "listen", "", "Listen address for serve (overrides RECIPEBOOK_LISTEN_ADDR)")
	flags.DurationVar(&r.opts.timeout, "timeout", 0, "Per-request timeout (overrides RECIPEBOOK_REQUEST_TIMEOUT)")
	flags.BoolVar(&r.opts.noCache, "no-cache", false, "Disable the HTTP response cache")

	root.AddCommand(
		r.serveCmd(),
		r.tuiCmd(),
		r.listCmd(),
		r.getCmd(),
		r.searchCmd(),
		r.createCmd(),
		r.updateCmd(),
		r.deleteCmd(),
		r.messagesCmd(),
	)

	return root
}

// Execute runs the command tree against os.Args and exits non-zero on error.
func Execute(ctx context.Context, build Builder) {
	if err := NewRootCmd(build).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errOperationFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func (r *runner) setup(cmd *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if r.opts.verbose {
		level = slog.LevelDebug
	}
	r.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(r.logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := r.applyOverrides(cmd, cfg); err != nil {
		return err
	}
	r.cfg = cfg

	app, err := r.build(cmd.Context(), cfg, r.logger)
	if err != nil {
		return fmt.Errorf("starting recipebook: %w", err)
	}
	r.app = app
	return nil
}

func (r *runner) applyOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("api-url") {
		if err := config.ValidateAPIURL(r.opts.apiURL); err != nil {
			return fmt.Errorf("--api-url: %w", err)
		}
		cfg.APIURL = r.opts.apiURL
	}
	if flags.Changed("db") {
		cfg.DBPath = r.opts.dbPath
	}
	if flags.Changed("listen") {
		cfg.ListenAddr = r.opts.listenAddr
	}
	if flags.Changed("timeout") {
		if r.opts.timeout < 0 {
			return errors.New("--timeout must not be negative")
		}
		cfg.RequestTimeout = r.opts.timeout
	}
	if r.opts.noCache {
		cfg.HTTPCache = false
	}
	return nil
}

// fail reports a soft failure and marks the invocation as failed. The
// command still completes so teardown runs.
func (r *runner) fail(cmd *cobra.Command, e *application.OperationError) {
	r.failed = true
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", e.Error())
}

func (r *runner) finish(*cobra.Command, []string) error {
	if err := r.teardown(); err != nil {
		return err
	}
	if r.failed {
		return errOperationFailed
	}
	return nil
}

func (r *runner) teardown() error {
	if r.app == nil {
		return nil
	}
	if r.app.List != nil {
		r.app.List.Wait()
	}
	if r.app.Close == nil {
		return nil
	}
	if err := r.app.Close(); err != nil {
		return fmt.Errorf("closing recipebook: %w", err)
	}
	return nil
}
