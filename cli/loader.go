package cli

import (
	"context"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"

	"cartsync"
	"cartsync/tools/storage"
)

// stateStores is the persisted-state triple every command works against.
type stateStores struct {
	products      storage.StateStore
	substitutions storage.StateStore
	unavailable   storage.StateStore
}

func loadSyncConfig() (cartsync.SyncConfig, error) {
	var cfg cartsync.SyncConfig
	if err := envdecode.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode sync config: %w", err)
	}
	return cfg, nil
}

// openStores selects the state backend: S3 when a bucket is configured,
// local files otherwise.
func openStores(ctx context.Context, cfg cartsync.SyncConfig) (stateStores, error) {
	var s3cfg cartsync.S3Config
	if err := envdecode.Decode(&s3cfg); err != nil {
		return stateStores{}, fmt.Errorf("failed to decode S3 config: %w", err)
	}

	if s3cfg.Bucket == "" {
		slog.Info("SETUP: Using file state stores",
			"products", cfg.ProductsPath, "substitutions", cfg.SubstitutionsPath, "unavailable", cfg.UnavailablePath)
		return stateStores{
			products:      storage.NewFileStateStore(cfg.ProductsPath),
			substitutions: storage.NewFileStateStore(cfg.SubstitutionsPath),
			unavailable:   storage.NewFileStateStore(cfg.UnavailablePath),
		}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return stateStores{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)

	slog.Info("SETUP: Using S3 state stores", "bucket", s3cfg.Bucket)
	return stateStores{
		products:      storage.NewS3StateStore(client, s3cfg.Bucket, s3cfg.ProductsKey),
		substitutions: storage.NewS3StateStore(client, s3cfg.Bucket, s3cfg.SubstitutionsKey),
		unavailable:   storage.NewS3StateStore(client, s3cfg.Bucket, s3cfg.UnavailableKey),
	}, nil
}
