// @title        AI Quiz Maker API
// @version      1.0
// @description  Generate, publish and take multiple-choice quizzes.
// @BasePath     /api
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/saulo-duarte/quizmaker/internal/aiquiz"
	"github.com/saulo-duarte/quizmaker/internal/client"
	"github.com/saulo-duarte/quizmaker/internal/config"
	"github.com/saulo-duarte/quizmaker/internal/container"
	"github.com/saulo-duarte/quizmaker/internal/router"
	"github.com/saulo-duarte/quizmaker/internal/session"
)

const (
	metaConfig      = "config"
	shutdownTimeout = 10 * time.Second
)

func main() {
	app := &cli.App{
		Name:  "quizmaker",
		Usage: "generate, publish and take AI-written quizzes",
		Before: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			config.InitLogger(cfg.LogLevel, cfg.LogFormat)
			c.App.Metadata[metaConfig] = cfg
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "port", Usage: "listen port, overrides PORT"},
				},
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database schema",
				Action: migrate,
			},
			{
				Name:  "generate",
				Usage: "generate a quiz and print it as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Required: true},
					&cli.StringFlag{Name: "title", Required: true},
				},
				Action: generate,
			},
			{
				Name:  "play",
				Usage: "take quizzes interactively against a running API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api", Usage: "API base URL, overrides API_BASE_URL"},
				},
				Action: play,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		config.Logger().WithError(err).Error("quizmaker failed")
		os.Exit(1)
	}
}

func configFrom(c *cli.Context) *config.Config {
	return c.App.Metadata[metaConfig].(*config.Config)
}

func serve(c *cli.Context) error {
	cfg := configFrom(c)
	if port := c.String("port"); port != "" {
		cfg.Port = port
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := config.WithContext(ctx)

	app, err := container.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.WithError(err).Warn("Failed to close resources")
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(app.Router()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("port", cfg.Port).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func migrate(c *cli.Context) error {
	cfg := configFrom(c)

	db, err := config.Connect(c.Context, cfg)
	if err != nil {
		return err
	}
	defer config.Close(db)

	if err := container.Migrate(db); err != nil {
		return err
	}
	config.WithContext(c.Context).Info("Schema migrated")
	return nil
}

func generate(c *cli.Context) error {
	cfg := configFrom(c)

	provider, err := aiquiz.NewProvider(c.Context, cfg)
	if err != nil {
		return err
	}
	svc := aiquiz.NewService(provider, cfg.GeneratorTimeout)

	quiz, err := svc.GenerateForTopic(c.Context, c.String("category"), c.String("title"))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(quiz)
}

func play(c *cli.Context) error {
	cfg := configFrom(c)
	base := cfg.APIBaseURL
	if api := c.String("api"); api != "" {
		base = api
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	api := client.New(base, cfg.GeneratorTimeout+cfg.StoreTimeout)
	p := newPlayer(api, session.New(api), os.Stdin, c.App.Writer)
	if err := p.run(ctx); err != nil && !errors.Is(err, errQuit) {
		return fmt.Errorf("play: %w", err)
	}
	return nil
}
