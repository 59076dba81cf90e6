package main

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

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-multierror"

	"github.com/gunjanghate/chat-bot-task/auth"
	"github.com/gunjanghate/chat-bot-task/config"
	"github.com/gunjanghate/chat-bot-task/handlers"
	"github.com/gunjanghate/chat-bot-task/logger"
	"github.com/gunjanghate/chat-bot-task/services"
	"github.com/gunjanghate/chat-bot-task/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, logger.DefaultOptions)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", logger.Err(err))
		os.Exit(1)
	}
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, &logger.Options{
		Level:      logger.ParseLevel(cfg.LogLevel),
		TimeFormat: logger.DefaultOptions.TimeFormat,
		NoColor:    cfg.LogNoColor,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped", logger.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	// Connect to the document store once for the whole process
	chatStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	slog.Info("connected to document store", slog.String("driver", cfg.StoreDriver()))

	// Initialize services
	chatService := services.NewChatService(chatStore)
	completionService := services.NewCompletionService(cfg.GeminiAPIKey, cfg.CompletionBaseURL, cfg.CompletionModel)
	sessions := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL)
	provider := auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL)

	// Setup Gin router
	gin.SetMode(cfg.GinMode)
	router := handlers.NewRouter(handlers.Deps{
		Chats:         chatService,
		Completions:   completionService,
		Sessions:      sessions,
		Provider:      provider,
		SecureCookies: cfg.SecureCookies,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var result *multierror.Error
	select {
	case err := <-serveErr:
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("serving http: %w", err))
		}
	case <-ctx.Done():
		slog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		result = multierror.Append(result, fmt.Errorf("shutting down http server: %w", err))
	}
	if err := chatStore.Close(shutdownCtx); err != nil {
		result = multierror.Append(result, fmt.Errorf("closing document store: %w", err))
	}
	return result.ErrorOrNil()
}

func openStore(ctx context.Context, cfg config.Config) (store.ChatStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	switch cfg.StoreDriver() {
	case "mongo":
		s, err := store.NewMongoStore(connectCtx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, fmt.Errorf("opening mongo store: %w", err)
		}
		return s, nil
	default:
		s, err := store.NewPostgresStore(connectCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return s, nil
	}
}
