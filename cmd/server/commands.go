package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"impronta-api/internal/auth"
	"impronta-api/internal/auth/password"
	"impronta-api/internal/auth/token"
	"impronta-api/internal/config"
	apphttp "impronta-api/internal/http"
	"impronta-api/internal/service"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(configFile *string) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup(*configFile)
			if err != nil {
				return err
			}
			return serve(c.Context, cfg, logger)
		},
	}
}

func migrateCmd(configFile *string) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending schema migrations and exit",
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup(*configFile)
			if err != nil {
				return err
			}
			st, err := openStore(c.Context, cfg)
			if err != nil {
				return err
			}
			defer st.Close()
			logger.WithField("driver", cfg.Database.Driver).Info("schema is up to date")
			return nil
		},
	}
}

func checkDBCmd(configFile *string) *cli.Command {
	return &cli.Command{
		Name:  "check-db",
		Usage: "Probe the database and report its health",
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup(*configFile)
			if err != nil {
				return err
			}
			st, err := openStore(c.Context, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			ok, err := st.health.Health(c.Context)
			if err != nil {
				return fmt.Errorf("database probe: %w", err)
			}
			if !ok {
				return errors.New("database probe returned an unexpected result")
			}
			logger.WithField("driver", cfg.Database.Driver).Info("database is healthy")
			return nil
		},
	}
}

func setup(configFile string) (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	logger, err := newLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newLogger(level, format string) (*logrus.Logger, error) {
	logger := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(lvl)

	switch format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}
	return logger, nil
}

func serve(ctx context.Context, cfg config.Config, logger *logrus.Logger) error {
	ttl, err := token.ParseTTL(cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("token ttl: %w", err)
	}
	codec, err := token.NewCodec([]byte(cfg.Auth.JWTSecret), ttl)
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	accounts := service.NewAccountService(st.users, password.NewHasher(), codec)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	handler := apphttp.NewHandler(accounts, st.health, auth.NewAuthenticator(codec), logger, cfg.Server.CORSOrigin)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":      cfg.Server.Addr,
			"driver":    cfg.Database.Driver,
			"token_ttl": ttl.String(),
		}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("http shutdown")
	}
	logger.Info("bye")
	return nil
}
