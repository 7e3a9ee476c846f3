package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/EMC-Underground/munger3/internal/app"
	"github.com/EMC-Underground/munger3/internal/config"
	"github.com/EMC-Underground/munger3/internal/logger"
)

func main() {
	ctx := context.Background()

	opt := logger.FromEnv()
	opt.Format = "json"
	if opt.Service == "" {
		opt.Service = "munger3-lambda"
	}
	logger.Init(opt)
	log := logger.Named("munger3")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	h, err := app.NewSNSOMunger(ctx, cfg, app.S3Stores, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build munger")
	}
	lambda.Start(h.Handle)
}
