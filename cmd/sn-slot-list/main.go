package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/EMC-Underground/munger3/internal/app"
	"github.com/EMC-Underground/munger3/internal/awsclient"
	"github.com/EMC-Underground/munger3/internal/config"
	"github.com/EMC-Underground/munger3/internal/logger"
)

func main() {
	_ = godotenv.Load()

	opt := logger.FromEnv()
	if opt.Service == "" {
		opt.Service = "sn-slot-list"
	}
	logger.Init(opt)

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var output string

	rootCmd := &cobra.Command{
		Use:   "sn-slot-list",
		Short: "Write every distinct install base serial number to one file",
		Long: `sn-slot-list reads the customer worklist, collects the serial numbers of every
customer's install base and writes the distinct values, one per line, to
MUNGER_MASTER_LIST_PATH. Any customer failure aborts the run before the file
is written.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), output)
		},
	}
	rootCmd.Flags().StringVarP(&output, "output", "o", "", "master list path (overrides MUNGER_MASTER_LIST_PATH)")

	return rootCmd
}

func run(parent context.Context, output string) error {
	log := logger.Named("sn-slot-list")

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("load config")
		return err
	}
	if output != "" {
		cfg.MasterListPath = output
	}

	in, err := awsclient.OpenStore(ctx, cfg.InstallBase, cfg.CallTimeout)
	if err != nil {
		log.Error().Err(err).Msg("open install base store")
		return err
	}

	res, err := app.NewSlotListGenerator(in, cfg, log).Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("slot list aborted")
		return err
	}
	log.Info().
		Int("customers", res.Customers).
		Int("serials", res.Serials).
		Bool("written", res.Written).
		Str("path", res.Path).
		Msg("done")
	return nil
}
