package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	sessionguard "github.com/gallerium/sessionguard"
	"github.com/gallerium/sessionguard/credstore"
	"github.com/gallerium/sessionguard/httpapi"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	app := &cli.App{
		Name:  "sessionguard",
		Usage: "Session and authorization service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "listen-addr",
				Value:   ":8080",
				EnvVars: []string{"LISTEN_ADDR"},
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Value:   "localhost:6379",
				EnvVars: []string{"REDIS_ADDR"},
			},
			&cli.StringFlag{
				Name:    "redis-prefix",
				Value:   "sg",
				EnvVars: []string{"REDIS_PREFIX"},
			},
			&cli.StringFlag{
				Name:    "root-username",
				Value:   "root",
				EnvVars: []string{"ROOT_USERNAME"},
			},
			&cli.StringFlag{
				Name:    "root-password",
				EnvVars: []string{"ROOT_PASSWORD"},
				Usage:   "bootstrap password for the root user; empty disables bootstrap",
			},
			&cli.BoolFlag{
				Name:    "cookie-secure",
				Value:   true,
				EnvVars: []string{"COOKIE_SECURE"},
			},
			&cli.DurationFlag{
				Name:    "session-ttl",
				Value:   24 * time.Hour,
				EnvVars: []string{"SESSION_TTL"},
			},
		},
		Action: func(c *cli.Context) error {
			return run(c, logger)
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.Error().Err(err).Msg("service failed")
		os.Exit(1)
	}
}

func run(c *cli.Context, logger zerolog.Logger) error {
	cfg := sessionguard.DefaultConfig()
	cfg.Session.TTL = c.Duration("session-ttl")
	cfg.Session.RedisPrefix = c.String("redis-prefix")
	cfg.Cookie.Secure = c.Bool("cookie-secure")
	cfg.Bootstrap.RootUsername = c.String("root-username")
	cfg.Bootstrap.RootPassword = c.String("root-password")

	rdb := redis.NewClient(&redis.Options{Addr: c.String("redis-addr")})
	defer func() { _ = rdb.Close() }()

	engine, err := sessionguard.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithCredentialStore(credstore.NewRedisStore(rdb,
			cfg.Session.RedisPrefix, cfg.Session.BackendTimeout)).
		WithAuditSink(sessionguard.NewJSONWriterSink(os.Stdout)).
		Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.Bootstrap(c.Context); err != nil {
		return err
	}

	api := httpapi.New(engine, cfg.Cookie, logger)
	server := &http.Server{
		Addr:              c.String("listen-addr"),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-c.Context.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info().Msg("shut down cleanly")
	return nil
}
