package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"

	"github.com/saulo-duarte/quizmaker/internal/config"
	"github.com/saulo-duarte/quizmaker/internal/container"
	"github.com/saulo-duarte/quizmaker/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Logger().WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}
	config.InitLogger(cfg.LogLevel, cfg.LogFormat)

	// The container lives for the whole execution environment and is reused
	// across invocations.
	app, err := container.New(context.Background(), cfg)
	if err != nil {
		config.Logger().WithError(err).Error("failed to build container")
		os.Exit(1)
	}

	adapter := httpadapter.New(router.New(app.Router()))
	lambda.Start(adapter.ProxyWithContext)
}
