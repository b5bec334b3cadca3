package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/syllabi/internal/api"
	"github.com/MikeSquared-Agency/syllabi/internal/calendar"
	"github.com/MikeSquared-Agency/syllabi/internal/config"
	"github.com/MikeSquared-Agency/syllabi/internal/drafts"
	"github.com/MikeSquared-Agency/syllabi/internal/extractor"
	"github.com/MikeSquared-Agency/syllabi/internal/groq"
	"github.com/MikeSquared-Agency/syllabi/internal/hermes"
	"github.com/MikeSquared-Agency/syllabi/internal/processor"
	"github.com/MikeSquared-Agency/syllabi/internal/secrets"
	"github.com/MikeSquared-Agency/syllabi/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg.LogLevel)

	slog.Info("syllabi starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage: Postgres when configured, in-memory otherwise.
	var (
		keys      secrets.Store = secrets.NewMemory(cfg.GroqAPIKey)
		draftRepo drafts.Store  = drafts.NewMemory()
		history   api.SyncHistory
		procOpts  []processor.Option
	)
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		slog.Info("database connected")

		keys = db.APIKeys()
		draftRepo = db.Drafts()
		history = db
		procOpts = append(procOpts, processor.WithRecorder(db))

		if cfg.GroqAPIKey != "" {
			if ok, err := secrets.Configured(ctx, keys); err == nil && !ok {
				if err := keys.Set(ctx, cfg.GroqAPIKey); err != nil {
					slog.Warn("ignoring GROQ_API_KEY", "error", err)
				}
			}
		}
	} else {
		slog.Warn("DATABASE_URL not set — settings, drafts and sync history are in-memory only")
	}
	procOpts = append(procOpts, processor.WithDrafts(draftRepo))

	// Completion client
	llm := groq.NewClient(keys, cfg.GroqModel)
	llm.SetBaseURL(cfg.GroqBaseURL)
	slog.Info("groq client ready", "model", llm.Model())

	ext := extractor.New(llm, slog.Default())

	// Calendar client
	cal := calendar.NewClient(cfg.CalendarID, slog.Default())
	cal.SetBaseURL(cfg.CalendarBaseURL)

	// NATS/Hermes is optional: without it there are no notifications.
	var hermesClient *hermes.Client
	if cfg.NatsURL != "" {
		hermesClient, err = hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Warn("NATS unavailable — running without notifications", "error", err)
			hermesClient = nil
		} else {
			defer hermesClient.Close()
			procOpts = append(procOpts, processor.WithPublisher(hermesClient))
			slog.Info("NATS connected", "url", cfg.NatsURL)
		}
	} else {
		slog.Warn("NATS_URL not set — running without notifications")
	}

	// Processor: the session pipeline
	proc := processor.New(ext, cal, slog.Default(), procOpts...)

	if hermesClient != nil {
		if err := hermesClient.Subscribe(hermes.SubjectSyllabusSubmitted, proc.HandleSubmission); err != nil {
			slog.Error("failed to subscribe to syllabus submissions", "error", err)
			os.Exit(1)
		}
	}

	sweeper := processor.NewSweeper(proc, cfg.SessionTTL, slog.Default())
	if err := sweeper.Start(cfg.SweepSchedule); err != nil {
		slog.Error("failed to start session sweeper", "error", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	// HTTP API
	var calendarToken calendar.TokenSource
	if cfg.CalendarToken != "" {
		calendarToken = calendar.StaticToken(cfg.CalendarToken)
	}
	srv := api.NewServer(cfg.Port, cfg.APIToken, api.Deps{
		Sessions:      proc,
		APIKeys:       keys,
		Drafts:        draftRepo,
		CalendarToken: calendarToken,
		History:       history,
	}, slog.Default())
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if hermesClient != nil {
		if err := hermesClient.Publish(hermes.SubjectRegistered, map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
			"model":     llm.Model(),
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	}

	slog.Info("syllabi ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown", "error", err)
	}
	cancel()
	slog.Info("syllabi stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
