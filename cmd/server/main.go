package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/recipelens/backend/config"
	"github.com/recipelens/backend/internal/app"
	httpDelivery "github.com/recipelens/backend/internal/delivery/http"
	"github.com/recipelens/backend/internal/delivery/mcp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "recipelens: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("server", pflag.ExitOnError)
	flags.String("config", "", "path to config file")
	flags.String("port", "", "listen port (overrides server.port)")
	flags.String("table", "", "reference table YAML (overrides nutrition.reference_table)")
	_ = flags.Parse(os.Args[1:])

	v := viper.New()
	if err := config.BindFlags(v, flags, map[string]string{
		"config": "config",
		"port":   "server.port",
		"table":  "nutrition.reference_table",
	}); err != nil {
		return err
	}
	if err := config.LoadEnvFile(); err != nil {
		return err
	}
	cfg, err := config.LoadFrom(v)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.Logger

	log.Info("starting RecipeLens backend",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	handler := httpDelivery.NewHandler(a.Nutrition, a.Recipes, log)
	tools := mcp.NewServer(a.Nutrition, log)
	router := httpDelivery.SetupRouter(cfg, handler, tools, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}
