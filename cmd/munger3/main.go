package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/EMC-Underground/munger3/internal/app"
	"github.com/EMC-Underground/munger3/internal/config"
	"github.com/EMC-Underground/munger3/internal/logger"
)

func main() {
	_ = godotenv.Load()

	opt := logger.FromEnv()
	if opt.Service == "" {
		opt.Service = "munger3"
	}
	logger.Init(opt)

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var once bool

	rootCmd := &cobra.Command{
		Use:   "munger3",
		Short: "Publish per-customer serial number to sales order insights",
		Long: `munger3 loads the customer worklist from the install base store, republishes
every customer's SN/SO mapping as <gdun>.SNSO.<version> in the insights store,
then sleeps for MUNGER_CYCLE_INTERVAL and starts over.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), once)
		},
	}
	rootCmd.Flags().BoolVar(&once, "once", false, "run a single cycle and exit")

	return rootCmd
}

func run(parent context.Context, once bool) error {
	log := logger.Named("munger3")

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("load config")
		return err
	}

	m, err := app.NewSNSOMunger(ctx, cfg, app.S3Stores, log)
	if err != nil {
		log.Error().Err(err).Msg("build munger")
		return err
	}

	log.Info().
		Str("worklist", cfg.WorklistKey).
		Str("version", cfg.MungerVersion).
		Dur("interval", cfg.CycleInterval).
		Bool("dry_run", cfg.DryRun).
		Bool("once", once).
		Msg("munger starting")

	if once {
		c := m.RunCycle(ctx)
		if c.LoadError != "" {
			return errors.New(c.LoadError)
		}
		return nil
	}

	err = m.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
