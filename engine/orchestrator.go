package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cartsync"
	"cartsync/library"
	"cartsync/normalize"
	"cartsync/tools/storage"
)

// State names one orchestrator stage. Blocked and Done are the only
// terminal states; Ready terminates dry runs.
type State string

const (
	StateNormalizing State = "normalizing"
	StateResolving   State = "resolving"
	StateBlocked     State = "blocked"
	StateReady       State = "ready"
	StatePlanning    State = "planning"
	StateExecuting   State = "executing"
	StateAuditing    State = "auditing"
	StateDone        State = "done"
)

// RunOptions tune a single run.
type RunOptions struct {
	// DryRun stops after the mapping gate: verify every item resolves,
	// touch nothing.
	DryRun bool
	// MarkComplete marks task titles complete for items the audit
	// classified as fulfilled.
	MarkComplete bool
}

// ExecutionRecord is the outcome of one delegated add call.
type ExecutionRecord struct {
	Item     ResolvedItem       `json:"item"`
	Count    int                `json:"count"`
	Status   cartsync.AddStatus `json:"status"`
	Attempts int                `json:"attempts"`
}

// RunResult is everything a run produced. Blocked results carry every
// blocking item, not just the first; Done results carry the audit report.
type RunResult struct {
	RunID    string            `json:"run_id"`
	ListName string            `json:"list_name"`
	State    State             `json:"state"`
	Items    []Resolution      `json:"items,omitempty"`
	Blocked  []Resolution      `json:"blocked,omitempty"`
	Plan     AddPlan           `json:"plan"`
	Executed []ExecutionRecord `json:"executed,omitempty"`
	Audit    *AuditReport      `json:"audit,omitempty"`
}

// ExitCode maps the final state to the process exit code contract.
func (r *RunResult) ExitCode() int {
	if r.State == StateBlocked {
		return cartsync.ExitBlocked
	}
	return cartsync.ExitOK
}

// Orchestrator sequences one run: normalize, resolve, gate, plan, execute,
// audit. Single-threaded by design; correctness depends on one consistent
// snapshot before planning and one after executing.
type Orchestrator struct {
	cfg           cartsync.SyncConfig
	tasks         cartsync.TaskSource
	driver        cartsync.CartDriver
	products      storage.StateStore
	substitutions storage.StateStore
	unavailable   storage.StateStore
	runLog        cartsync.RunLogger
	searchURL     func(query string) string
}

// New wires an orchestrator. searchURL builds the platform search URL used
// in next-step instructions; pass the cart driver's builder.
func New(
	cfg cartsync.SyncConfig,
	tasks cartsync.TaskSource,
	driver cartsync.CartDriver,
	products, substitutions, unavailable storage.StateStore,
	runLog cartsync.RunLogger,
	searchURL func(query string) string,
) *Orchestrator {
	if runLog == nil {
		runLog = cartsync.NewNoOpRunLogger()
	}
	if searchURL == nil {
		searchURL = func(string) string { return "" }
	}
	return &Orchestrator{
		cfg:           cfg,
		tasks:         tasks,
		driver:        driver,
		products:      products,
		substitutions: substitutions,
		unavailable:   unavailable,
		runLog:        runLog,
		searchURL:     searchURL,
	}
}

// Run executes the state machine. It returns a RunResult for every outcome
// that is a well-formed run state (including Blocked); errors are reserved
// for failures that invalidate the run itself: data integrity, auth,
// collaborator breakage.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	result := &RunResult{
		RunID:    uuid.NewString(),
		ListName: o.cfg.ListName,
		State:    StateNormalizing,
	}
	slog.Info("ORCHESTRATOR: Starting run", "run_id", result.RunID, "list", o.cfg.ListName, "dry_run", opts.DryRun)

	// Normalizing
	table, err := o.loadTable(ctx)
	if err != nil {
		return nil, err
	}

	raws, err := o.tasks.FetchOpenItems(ctx, o.cfg.ListName)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open items for list %q: %w", o.cfg.ListName, err)
	}

	items := normalize.NormalizeAll(raws, table)
	o.logStage(result, StateNormalizing, len(items), nil)
	slog.Info("ORCHESTRATOR: Normalized items", "run_id", result.RunID, "raw", len(raws), "items", len(items))

	// Resolving
	result.State = StateResolving
	lib, err := library.Load(ctx, o.products)
	if err != nil {
		return nil, cartsync.NewDataIntegrityError(o.cfg.ProductsPath, err)
	}

	result.Items = Resolve(items, lib)
	ready, blocked := SplitResolutions(result.Items)
	o.logStage(result, StateResolving, len(result.Items), map[string]any{
		"mapped":  len(ready),
		"blocked": len(blocked),
	})

	if len(blocked) > 0 {
		// Blocked is terminal: proceeding with a partial set would hide
		// unfulfilled intent from the human.
		result.State = StateBlocked
		result.Blocked = blocked
		o.logStage(result, StateBlocked, len(blocked), nil)
		slog.Warn("ORCHESTRATOR: Run blocked on unresolved items", "run_id", result.RunID, "blocked", len(blocked))
		return result, nil
	}

	result.State = StateReady
	if opts.DryRun {
		o.logStage(result, StateReady, len(ready), map[string]any{"dry_run": true})
		slog.Info("ORCHESTRATOR: Dry run complete, all items mapped", "run_id", result.RunID, "items", len(ready))
		return result, nil
	}

	// Planning
	result.State = StatePlanning
	before, err := o.driver.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart snapshot: %w", err)
	}
	result.Plan = Plan(ready, before)
	o.logStage(result, StatePlanning, len(result.Plan.Adds), map[string]any{"cart_entries": len(before)})
	slog.Info("ORCHESTRATOR: Planned adds", "run_id", result.RunID, "adds", len(result.Plan.Adds), "cart_entries", len(before))

	// Executing
	result.State = StateExecuting
	if err := o.execute(ctx, result); err != nil {
		return nil, err
	}

	// Auditing
	result.State = StateAuditing
	after, err := o.driver.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read post-sync cart snapshot: %w", err)
	}
	report := Audit(ready, after, o.cfg.AuditThreshold)
	result.Audit = &report
	o.logStage(result, StateAuditing, len(after), map[string]any{
		"fulfilled":  len(report.Fulfilled),
		"missing":    len(report.Missing),
		"unexpected": len(report.Unexpected),
	})

	if opts.MarkComplete {
		for _, item := range report.Fulfilled {
			if err := o.tasks.MarkComplete(ctx, o.cfg.ListName, item.Item.Original); err != nil {
				slog.Warn("ORCHESTRATOR: Failed to mark task complete", "run_id", result.RunID, "item", item.Item.Original, "error", err)
			}
		}
	}

	// Done never implies checkout; that stays a disjoint human action.
	result.State = StateDone
	o.logStage(result, StateDone, len(ready), nil)
	slog.Info("ORCHESTRATOR: Run complete",
		"run_id", result.RunID,
		"fulfilled", len(report.Fulfilled),
		"missing", len(report.Missing),
		"unexpected", len(report.Unexpected),
	)
	return result, nil
}

func (o *Orchestrator) loadTable(ctx context.Context) (*normalize.Table, error) {
	data, err := o.substitutions.Load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return normalize.EmptyTable(), nil
		}
		return nil, fmt.Errorf("failed to load substitution table: %w", err)
	}
	table, err := normalize.ParseTable(data)
	if err != nil {
		return nil, cartsync.NewDataIntegrityError(o.cfg.SubstitutionsPath, err)
	}
	return table, nil
}

// execute runs the plan item by item. A failed add is logged to the
// unavailable log and the loop continues; only a failure to write that log
// aborts the run, because an unrecorded failure would be silent loss.
func (o *Orchestrator) execute(ctx context.Context, result *RunResult) error {
	unavail, err := library.LoadUnavailable(ctx, o.unavailable)
	if err != nil {
		return cartsync.NewDataIntegrityError(o.cfg.UnavailablePath, err)
	}

	maxAttempts := o.cfg.MaxAddAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for _, add := range result.Plan.Adds {
		record := ExecutionRecord{Item: add.Item, Count: add.Count}

		for attempt := 1; attempt <= maxAttempts; attempt++ {
			record.Attempts = attempt
			status, err := o.driver.AddToCart(ctx, add.Item.Product, add.Count)
			if err != nil {
				slog.Warn("ORCHESTRATOR: Add attempt errored",
					"run_id", result.RunID, "item", add.Item.Item.Normalized, "attempt", attempt, "error", err)
				record.Status = cartsync.AddTransientFailure
				continue
			}
			record.Status = status
			if status != cartsync.AddTransientFailure {
				break
			}
		}

		result.Executed = append(result.Executed, record)

		if record.Status != cartsync.AddOK {
			reason := addReason(record.Status)
			slog.Warn("ORCHESTRATOR: Item unavailable",
				"run_id", result.RunID, "item", add.Item.Item.Normalized, "reason", string(reason))
			if err := unavail.Append(ctx, add.Item.Item.Normalized, reason, o.searchURL(add.Item.Item.Normalized)); err != nil {
				return fmt.Errorf("failed to record unavailable item %q: %w", add.Item.Item.Normalized, err)
			}
		}
	}

	o.logStage(result, StateExecuting, len(result.Executed), nil)
	return nil
}

func addReason(status cartsync.AddStatus) library.UnavailableReason {
	switch status {
	case cartsync.AddNotFound:
		return library.ReasonNotFound
	case cartsync.AddOutOfStock:
		return library.ReasonOutOfStock
	default:
		return library.ReasonTransient
	}
}

func (o *Orchestrator) logStage(result *RunResult, state State, items int, detail map[string]any) {
	if err := o.runLog.LogStage(cartsync.StageLog{
		RunID:     result.RunID,
		Stage:     string(state),
		Timestamp: time.Now(),
		Items:     items,
		Detail:    detail,
	}); err != nil {
		slog.Warn("ORCHESTRATOR: Failed to write run log stage", "stage", state, "error", err)
	}
}
