package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joeshaw/envdecode"
	"github.com/spf13/cobra"

	"cartsync"
	"cartsync/engine"
	"cartsync/gtasks"
	"cartsync/hyvee"
	"cartsync/slack"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ListName      string
	DryRun        bool
	Headless      bool
	CompleteTasks bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sync the task list into the cart and audit the result",
		Long: `Run one full sync: fetch open items, resolve every item to a product,
add what the cart is missing, then audit the cart against the list.

If any item cannot be resolved the run stops before touching the cart and
reports every blocking item. The run never removes anything from the cart
and never checks out.

Example:
  cartsync run --list Groceries
  cartsync run --dry-run --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.ListName, "list", "", "task list name (defaults to CARTSYNC_LIST_NAME)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "verify every item resolves, touch nothing")
	cmd.Flags().BoolVar(&opts.Headless, "headless", false, "run the browser headless")
	cmd.Flags().BoolVar(&opts.CompleteTasks, "complete-tasks", false, "mark fulfilled items complete on the task list")

	return cmd
}

func runSync(cmd *cobra.Command, opts *RunOptions) error {
	ctx := cmd.Context()

	cfg, err := loadSyncConfig()
	if err != nil {
		return err
	}
	if opts.ListName != "" {
		cfg.ListName = opts.ListName
	}

	stores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}

	tasks, err := newTasksClient()
	if err != nil {
		return err
	}

	var driver cartsync.CartDriver
	if !opts.DryRun {
		hv, err := startDriver(ctx, opts.Headless)
		if err != nil {
			return err
		}
		defer func() {
			if err := hv.Stop(); err != nil {
				slog.Warn("SETUP: Failed to stop browser", "error", err)
			}
		}()
		driver = hv
	}

	runLog, flush, err := openRunLog(cfg.ListName)
	if err != nil {
		return err
	}
	defer flush()

	tracerProvider, meterProvider, otelShutdown, err := cartsync.InitOtel(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer func() {
		if err := otelShutdown(ctx); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	orchestrator := engine.NewInstrumentedOrchestrator(
		engine.New(cfg, tasks, driver, stores.products, stores.substitutions, stores.unavailable, runLog, hyvee.BuildSearchURL),
		tracerProvider.Tracer(cartsync.TracerNameOrchestrator),
		meterProvider.Meter(cartsync.TracerNameOrchestrator),
	)

	result, err := orchestrator.Run(ctx, engine.RunOptions{
		DryRun:       opts.DryRun,
		MarkComplete: opts.CompleteTasks,
	})
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), engine.RenderReport(result, hyvee.BuildSearchURL))
	if opts.Verbose {
		cartsync.Dump(result)
	}

	if cfg.SlackWebhookURL != "" {
		notifier := slack.NewClient(cfg.SlackWebhookURL, http.DefaultClient)
		if err := notifier.PostRunSummary(ctx, cfg.SlackChannel, result); err != nil {
			slog.Warn("RESULT: Failed to post Slack summary", "error", err)
		}
	}

	if code := result.ExitCode(); code != cartsync.ExitOK {
		// The report already said why; the exit code is for scripts.
		return &ExitError{Code: code}
	}
	return nil
}

func newTasksClient() (*gtasks.Client, error) {
	var cfg cartsync.TasksConfig
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode tasks config: %w", err)
	}
	if cfg.AccessToken == "" {
		return nil, cartsync.NewAuthError("Google Tasks", errors.New("GTASKS_ACCESS_TOKEN is not set"))
	}
	return gtasks.NewClient(cfg, nil), nil
}

func startDriver(ctx context.Context, headless bool) (*hyvee.Driver, error) {
	var cfg cartsync.HyveeConfig
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode driver config: %w", err)
	}
	if headless {
		cfg.Headless = true
	}

	driver := hyvee.NewDriver(cfg)
	if err := driver.Start(ctx); err != nil {
		return nil, err
	}
	if err := driver.EnsureLoggedIn(ctx); err != nil {
		if stopErr := driver.Stop(); stopErr != nil {
			slog.Warn("SETUP: Failed to stop browser", "error", stopErr)
		}
		return nil, err
	}
	return driver, nil
}

func openRunLog(listName string) (cartsync.RunLogger, func(), error) {
	path := cartsync.NewRunLogFilePath(listName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create run log dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	logger := cartsync.NewFileRunLogger(f)
	flush := func() {
		if err := logger.Flush(); err != nil {
			slog.Warn("RESULT: Failed to flush run log", "path", path, "error", err)
		}
		if err := f.Close(); err != nil {
			slog.Warn("RESULT: Failed to close run log", "path", path, "error", err)
		}
	}
	return logger, flush, nil
}
