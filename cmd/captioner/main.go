package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/api"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/captions"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/config"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/db"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/logging"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/media"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/mediasync"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/profile"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/store"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/transcribe"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/watcher"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.PublicDir(), 0755); err != nil {
		return fmt.Errorf("failed to create public dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel(), cfg.LogFile())
	logger.Info("starting captioner",
		"version", config.Version,
		"data_dir", cfg.DataDir(),
		"projects_root", cfg.ProjectsRoot(),
	)

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := store.NewRepository(database.Conn())

	var ffmpeg media.FFmpeg
	if ff, err := media.NewFFmpeg("", logger); err != nil {
		logger.Warn("ffmpeg unavailable, caption generation disabled", "error", err)
		ffmpeg = media.NewStubFFmpeg(logger)
	} else {
		ffmpeg = ff
	}

	var transcriber transcribe.Transcriber
	if tr, err := transcribe.NewRunner(transcribe.Config{
		PythonPath: cfg.SpeechPython(),
		ModuleName: cfg.SpeechModule(),
		Timeout:    cfg.SpeechTimeout(),
		Logger:     logger,
	}); err != nil {
		logger.Warn("speech runner unavailable, caption generation disabled", "error", err)
		transcriber = &transcribe.StubTranscriber{}
	} else {
		transcriber = tr
	}

	sync := mediasync.NewClient(cfg.MediaSyncBaseURL(), cfg.SRTFetchTimeout(), logger)
	if cfg.MediaSyncBaseURL() != "" {
		logger.Info("media-sync handoff enabled", "base_url", cfg.MediaSyncBaseURL())
	}

	svc := captions.NewService(cfg.ProjectsRoot(), repo, ffmpeg, transcriber, sync, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := captions.NewRunner(svc, repo, logger)
	go runner.Start(ctx)

	profiles := profile.NewRegistry()
	profilesPath := cfg.ProfilesFile()
	var profileWatcher watcher.Watcher = watcher.NewStubWatcher(logger)
	if profilesPath != "" {
		if err := profiles.LoadFile(profilesPath); err != nil {
			logger.Warn("failed to load profiles file", "path", logging.SanitizePath(profilesPath), "error", err)
		} else {
			logger.Info("profiles loaded", "path", logging.SanitizePath(profilesPath), "ids", profiles.IDs())
		}
		profileWatcher = watcher.NewFSWatcher(logger)
	}
	go watchProfiles(ctx, profileWatcher, profilesPath, profiles, logger)

	apiServer := api.NewServer(api.ServerConfig{
		Port:         cfg.Port(),
		ProjectsRoot: cfg.ProjectsRoot(),
		PublicDir:    cfg.PublicDir(),
		CORSOrigins:  cfg.CORSOrigins(),
		SRTMapMode:   cfg.SRTMapMode(),
		Captions:     svc,
		Fetcher:      sync,
		Repository:   repo,
		Runner:       runner,
		Profiles:     profiles,
		Logger:       logger,
		StartTime:    startTime,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// watchProfiles hot-reloads the profile presets when the file changes, so
// pacing can be tuned without restarting the service.
func watchProfiles(ctx context.Context, w watcher.Watcher, path string, profiles *profile.Registry, logger *slog.Logger) {
	w.OnChange(func(_ string, event watcher.EventType) {
		if event == watcher.EventDelete {
			return
		}
		if err := profiles.LoadFile(path); err != nil {
			logger.Warn("profile reload failed", "error", err)
			return
		}
		logger.Info("profiles reloaded", "ids", profiles.IDs())
	})

	if err := w.Watch(ctx, path); err != nil {
		logger.Warn("profile watcher stopped", "error", err)
	}
}
