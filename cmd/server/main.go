package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ctchen222/tictactoe-engine/internal/api/controller"
	"ctchen222/tictactoe-engine/internal/api/service"
	"ctchen222/tictactoe-engine/internal/bot"
	"ctchen222/tictactoe-engine/internal/config"
	"ctchen222/tictactoe-engine/internal/dependencies/random"
	"ctchen222/tictactoe-engine/internal/logger"
	"ctchen222/tictactoe-engine/internal/repository"
	"ctchen222/tictactoe-engine/internal/server"
	"ctchen222/tictactoe-engine/internal/session"
	"ctchen222/tictactoe-engine/internal/telemetry"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", os.Getenv("TTT_CONFIG"), "path to config.yml (empty: environment only)")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	appLogger, err := logger.Init(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create repositories
	sessionRepo := repository.NewSessionRepository()

	// Create services
	sessionService := service.NewSessionService(sessionRepo, service.Options{
		ThinkDelay:        cfg.Game.ThinkDelay,
		DefaultMode:       session.Mode(cfg.Game.DefaultMode),
		DefaultDifficulty: bot.Difficulty(cfg.Game.DefaultDifficulty),
		Random:            random.FromSeed(cfg.Game.Seed),
		Logger:            appLogger,
	})

	// Create controllers
	sessionController := controller.NewSessionController(sessionService)

	// Create the Gin-based server
	srv := server.NewServer(sessionService, sessionController, appLogger)

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go service.RunJanitor(janitorCtx, sessionService, cfg.Game.JanitorInterval, cfg.Game.SessionTTL)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: srv.Engine(),
	}

	go func() {
		appLogger.Info("http server started", "addr", cfg.Addr(), "env", cfg.Env)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop

	appLogger.Info("Shutting down server...")
	stopJanitor()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// A zero idle limit closes every live session, which stops pending computer moves and websocket pumps.
	if removed, err := sessionService.SweepIdle(shutdownCtx, 0); err != nil {
		appLogger.Error("failed to close sessions", "error", err)
	} else {
		appLogger.Info("Sessions closed", "count", removed)
	}

	slog.Info("Server exiting")
}
