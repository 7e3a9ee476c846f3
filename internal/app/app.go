// Package app wires the munger pipelines from a loaded Config.
package app

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/EMC-Underground/munger3/internal/awsclient"
	"github.com/EMC-Underground/munger3/internal/blobstore"
	"github.com/EMC-Underground/munger3/internal/config"
	"github.com/EMC-Underground/munger3/internal/db"
	"github.com/EMC-Underground/munger3/internal/etl"
	"github.com/EMC-Underground/munger3/internal/insight"
	"github.com/EMC-Underground/munger3/internal/installbase"
	"github.com/EMC-Underground/munger3/internal/logger"
	"github.com/EMC-Underground/munger3/internal/notify"
)

// Stores opens the blob stores a pipeline reads from and writes to.
type Stores func(ctx context.Context, cfg *config.Config) (in blobstore.Getter, out blobstore.Putter, err error)

// S3Stores opens both stores on S3. A dry run keeps insights in memory.
func S3Stores(ctx context.Context, cfg *config.Config) (blobstore.Getter, blobstore.Putter, error) {
	in, err := awsclient.OpenStore(ctx, cfg.InstallBase, cfg.CallTimeout)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DryRun {
		return in, blobstore.NewMemory(cfg.Insights.Bucket), nil
	}
	out, err := awsclient.OpenStore(ctx, cfg.Insights, cfg.CallTimeout)
	if err != nil {
		return nil, nil, err
	}
	return in, out, nil
}

// NewSNSOMunger builds the recurring SN/SO munger. The ledger and notifier
// use the default AWS credential chain.
func NewSNSOMunger(ctx context.Context, cfg *config.Config, stores Stores, log *logger.Logger) (*etl.SNSOMunger, error) {
	in, out, err := stores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := etl.SNSOOptions{
		Worklist:      installbase.NewWorklistLoader(in),
		Fetcher:       installbase.NewFetcher(in),
		Publisher:     insight.NewPublisher(out, cfg.InsightTag, cfg.MungerVersion),
		WorklistKey:   cfg.WorklistKey,
		MungerVersion: cfg.MungerVersion,
		Interval:      cfg.CycleInterval,
		DryRun:        cfg.DryRun,
		Log:           log,
	}
	if cfg.ParquetPrefix != "" {
		opts.Exporter = insight.NewParquetExporter(out, cfg.ParquetPrefix, cfg.MungerVersion)
	}

	if cfg.LedgerTable != "" || cfg.NotifyTopicARN != "" {
		awsCfg, err := awsclient.LoadConfig(ctx, config.StoreConfig{})
		if err != nil {
			return nil, err
		}
		if cfg.LedgerTable != "" {
			opts.Recorders = append(opts.Recorders, db.NewLedger(db.NewDynamoClient(awsCfg), cfg.LedgerTable, cfg.LedgerTTL))
		}
		if cfg.NotifyTopicARN != "" {
			opts.Recorders = append(opts.Recorders, notify.NewSNSNotifier(sns.NewFromConfig(awsCfg), cfg.NotifyTopicARN))
		}
	}

	return etl.NewSNSOMunger(opts), nil
}

// NewSlotListGenerator builds the one-shot serial number list generator.
func NewSlotListGenerator(in blobstore.Getter, cfg *config.Config, log *logger.Logger) *etl.SlotListGenerator {
	return etl.NewSlotListGenerator(
		installbase.NewWorklistLoader(in),
		installbase.NewFetcher(in),
		cfg.WorklistKey,
		cfg.MasterListPath,
		log,
	)
}
