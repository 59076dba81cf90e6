package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"

	"github.com/gunjanghate/chat-bot-task/client"
	"github.com/gunjanghate/chat-bot-task/logger"
	"github.com/gunjanghate/chat-bot-task/models"
	"github.com/gunjanghate/chat-bot-task/session"
)

type Config struct {
	ServerURL    string `env:"CHAT_SERVER_URL" envDefault:"http://localhost:8080"`
	SessionToken string `env:"CHAT_SESSION_TOKEN,required,notEmpty"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"warn"`
}

func main() {
	if err := runMain(); err != nil {
		fmt.Fprintln(os.Stderr, "chat:", err)
		os.Exit(1)
	}
}

func runMain() error {
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parsing env config: %w", err)
	}
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, &logger.Options{
		Level:      logger.ParseLevel(cfg.LogLevel),
		TimeFormat: "15:04:05",
	})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.ServerURL, cfg.SessionToken)
	email, err := api.Session(ctx)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			return fmt.Errorf("session token rejected, sign in at %s and copy a fresh token", cfg.ServerURL)
		}
		return err
	}

	ctrl := session.NewController(api)
	view := newView(os.Stdout)
	ctrl.Subscribe(view.Render)

	fmt.Fprintf(os.Stdout, "Signed in as %s. Type /quit to exit.\n", email)
	if err := ctrl.Load(ctx); err != nil {
		slog.Warn("loading history", logger.Err(err))
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok || strings.TrimSpace(line) == "/quit" {
				return nil
			}
			if err := ctrl.Submit(ctx, line); err != nil {
				slog.Debug("chat turn failed", logger.Err(err))
			}
		}
	}
}
