package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hairizuanbinnoorazman/design-testgen/cmd/backend/handlers"
	"github.com/hairizuanbinnoorazman/design-testgen/scriptgen"
	"github.com/hairizuanbinnoorazman/design-testgen/session"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := newLogger(cfg)
	log.Info(ctx, "starting server", map[string]interface{}{
		"version": Version,
		"commit":  Commit,
		"date":    BuildDate,
	})

	db, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	defer sqlDB.Close()

	log.Info(ctx, "database connected", map[string]interface{}{
		"driver":   cfg.Database.Driver,
		"database": cfg.Database.Database,
	})

	historyStorage, err := newHistoryStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	orchestrator, output, err := newOrchestrator(ctx, cfg, log)
	if err != nil {
		return err
	}
	log.Info(ctx, "generation configured", map[string]interface{}{
		"provider":   cfg.Generation.Provider,
		"output_dir": output.BaseDir(),
	})

	sessionManager := session.NewManager(cfg.Session.Duration, log)
	sessionManager.StartCleanup(cfg.Session.CleanupInterval)
	defer sessionManager.StopCleanup()

	cookies := session.NewCookieCodec(cfg.Session.CookieSecret, cfg.Session.CookieName, cfg.Session.Secure, cfg.Session.Duration)
	validation := cfg.validationConfig()
	store := scriptgen.NewMySQLStore(db, log)

	router := handlers.Router{
		Version:     Version,
		Sessions:    handlers.NewSessionMiddleware(sessionManager, cookies, log),
		Generate:    handlers.NewGenerateHandler(orchestrator, store, historyStorage, sessionManager, validation, log),
		Generations: handlers.NewGenerationsHandler(store, historyStorage, strings.EqualFold(cfg.Storage.Type, "s3"), log),
		Session:     handlers.NewSessionHandler(sessionManager, cookies, validation, log),
	}.Build()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info(ctx, "server listening", map[string]interface{}{
			"address": addr,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "shutting down server", nil)

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info(ctx, "server stopped", nil)
	return nil
}
