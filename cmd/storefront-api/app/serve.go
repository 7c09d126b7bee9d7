package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/craftmint/storefront-server/internal/api"
	"github.com/craftmint/storefront-server/internal/auth"
	"github.com/craftmint/storefront-server/internal/config"
	"github.com/craftmint/storefront-server/internal/db"
	database "github.com/craftmint/storefront-server/internal/service/db"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storefront API server",
	Long: `Start the storefront API server.

The server requires a configuration file (--config) that specifies the
database connection, the listen address and the merchant-channel JWT
settings.`,
	RunE: runServe,
}

const (
	serverRequestTimeout = 10 * time.Second // API should respond quickly
	serverReadTimeout    = 10 * time.Second // Enough for headers and small requests
	serverWriteTimeout   = 15 * time.Second // Must be > serverRequestTimeout to let middleware handle timeout
	serverIdleTimeout    = 60 * time.Second // Keep connections alive for reuse
)

func init() {
	serveCmd.Flags().String("address", "", "Address to listen on (overrides config)")
	serveCmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")

	if err := viper.BindPFlag("address", serveCmd.Flags().Lookup("address")); err != nil {
		slog.Error("Failed to bind address flag", "error", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("config", serveCmd.Flags().Lookup("config")); err != nil {
		slog.Error("Failed to bind config flag", "error", err)
		os.Exit(1)
	}

	if err := serveCmd.MarkFlagRequired("config"); err != nil {
		slog.Error("Failed to mark config flag as required", "error", err)
		os.Exit(1)
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	configPath := viper.GetString("config")
	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	address := viper.GetString("address")
	if address == "" {
		address = cfg.GetServerAddress()
	}

	slog.InfoContext(ctx, "Starting storefront API server",
		"address", address, "store", cfg.GetStoreName(), "config", configPath)

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()

	svc, err := database.New(database.WithConnectionPool(conn.Pool))
	if err != nil {
		return fmt.Errorf("failed to create storefront service: %w", err)
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Timeout(serverRequestTimeout),
		api.LoggingMiddleware,
	}

	if cfg.Auth != nil {
		secret, err := cfg.Auth.GetJWTSecret()
		if err != nil {
			return fmt.Errorf("failed to load JWT secret: %w", err)
		}
		authMiddleware, err := auth.NewMiddleware(secret,
			auth.WithIssuer(cfg.Auth.Issuer),
			auth.WithRealm(cfg.GetStoreName()),
		)
		if err != nil {
			return fmt.Errorf("failed to create auth middleware: %w", err)
		}
		middlewares = append(middlewares, authMiddleware.Handler)
	} else {
		slog.WarnContext(ctx, "No auth configuration: merchant channel runs anonymous-only")
	}

	router := api.NewServer(svc, api.WithMiddlewares(middlewares...))

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		slog.Info("Server listening", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return err
	}

	slog.Info("Server shutdown complete")
	return nil
}
