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

	"chat-relay/auth"
	"chat-relay/internal"
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/server"
	"chat-relay/services"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for HTTP and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	if config.RoomID == "" {
		config.RoomID = internal.DeriveRoomID(config.AdminEmail)
		log.Info("Room identifier derived from admin identity", "room", config.RoomID)
	}
	if config.JwtSecret == "" {
		secret, err := internal.GenerateSecret()
		if err != nil {
			return err
		}
		config.JwtSecret = secret
		log.Warn("JWT_SECRET not set, generated one; tokens will not survive a restart")
	}

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	messageRepository, err := repositories.NewMessageRepository(db, log, config.RoomID)
	if err != nil {
		return err
	}
	defer func() { _ = messageRepository.Close() }()

	// 3. Core wiring: registry, coordinator, services
	monitor := observability.NewMonitor()
	registry := runtime.NewRegistry()
	coordinator := runtime.NewCoordinator(log, registry, messageRepository, monitor, config.SinkTimeout)

	issuer := auth.NewIssuer([]byte(config.JwtSecret))
	authService := services.NewAuthService(issuer, config.AdminEmail,
		config.AdminTokenDuration, config.GuestTokenDuration)
	chatService := services.NewChatService(coordinator)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Background workers under supervision
	sup := workers.NewSupervisor(log, config.RestartInterval).Add(
		workers.NewStoreGCWorker(log, db, config.StoreGCInterval),
		workers.NewTelemetryWorker(log, monitor, config.MetricInterval),
	)
	go sup.Run(ctx)

	// 6. HTTP Server Setup
	chatServer := server.NewChatServer(log, authService, chatService,
		config.FrontendOrigin, config.ConnectionBufferSize)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:    address,
		Handler: server.NewRouter(chatServer, config.FrontendOrigin),
	}

	// Use an error channel to capture ListenAndServe() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting chat relay", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown forced", "error", err)
	}
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
