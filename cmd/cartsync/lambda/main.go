// Scheduled mapping-gate check. Runs the pipeline in dry-run mode against
// S3 state: every open item must resolve to a product, nothing is touched.
// A blocked result is posted to Slack so the list gets fixed before the
// next real run.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"

	"cartsync"
	"cartsync/engine"
	"cartsync/gtasks"
	"cartsync/hyvee"
	"cartsync/slack"
	"cartsync/tools/storage"
)

type Params struct {
	ListName string `json:"list_name,omitempty"`
}

type Results struct {
	State   string   `json:"state"`
	Items   int      `json:"items"`
	Blocked []string `json:"blocked,omitempty"`
}

func main() {
	fn := func(ctx context.Context, params Params) (Results, error) {
		var cfg cartsync.SyncConfig
		if err := envdecode.Decode(&cfg); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}
		if params.ListName != "" {
			cfg.ListName = params.ListName
		}

		var s3cfg cartsync.S3Config
		if err := envdecode.Decode(&s3cfg); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}
		if s3cfg.Bucket == "" {
			return Results{}, fmt.Errorf("missing S3 config: CARTSYNC_S3_BUCKET must be set")
		}

		var tasksCfg cartsync.TasksConfig
		if err := envdecode.Decode(&tasksCfg); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return Results{}, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg)

		products := storage.NewS3StateStore(client, s3cfg.Bucket, s3cfg.ProductsKey)
		substitutions := storage.NewS3StateStore(client, s3cfg.Bucket, s3cfg.SubstitutionsKey)
		unavailable := storage.NewS3StateStore(client, s3cfg.Bucket, s3cfg.UnavailableKey)
		slog.Info("SETUP: S3 state stores initialized", "bucket", s3cfg.Bucket)

		tracerProvider, meterProvider, otelShutdown, err := cartsync.InitOtel(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			return Results{}, err
		}
		defer func() {
			if err := otelShutdown(ctx); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()

		// Dry run never reaches the cart, so no browser driver is wired.
		orchestrator := engine.NewInstrumentedOrchestrator(
			engine.New(cfg, gtasks.NewClient(tasksCfg, nil), nil,
				products, substitutions, unavailable,
				cartsync.NewStdoutRunLogger(), hyvee.BuildSearchURL),
			tracerProvider.Tracer(cartsync.TracerNameOrchestrator),
			meterProvider.Meter(cartsync.TracerNameOrchestrator),
		)

		result, err := orchestrator.Run(ctx, engine.RunOptions{DryRun: true})
		if err != nil {
			slog.Error("RESULT: Mapping gate check failed", "error", err)
			return Results{}, err
		}

		out := Results{State: string(result.State), Items: len(result.Items)}
		for _, r := range result.Blocked {
			out.Blocked = append(out.Blocked, r.Item.Normalized)
		}

		if result.State == engine.StateBlocked && cfg.SlackWebhookURL != "" {
			notifier := slack.NewClient(cfg.SlackWebhookURL, http.DefaultClient)
			if err := notifier.PostRunSummary(ctx, cfg.SlackChannel, result); err != nil {
				slog.Warn("RESULT: Failed to post Slack summary", "error", err)
			}
		}

		slog.Info("RESULT: Mapping gate check complete",
			"list", cfg.ListName, "state", result.State, "blocked", len(result.Blocked))
		return out, nil
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	lambda.Start(fn)
}
