// Demo wires the full clip archive against synthetic audio capabilities:
// it records a short synthesized clip, archives it, lists the story's
// attempts, plays the newest one back and runs an expiry sweep.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ganot/recital/internal/config"
	"github.com/ganot/recital/internal/domain/capture"
	"github.com/ganot/recital/internal/domain/clip"
	"github.com/ganot/recital/internal/domain/playback"
	"github.com/ganot/recital/internal/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := run(cfg, logger); err != nil {
		logger.Error("demo failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return fmt.Errorf("preparing database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	limits := clip.Limits{
		MaxClipBytes:  int64(cfg.Archive.MaxClipMiB) << 20,
		MaxStoreBytes: int64(cfg.Archive.MaxStoreMiB) << 20,
		MaxClipAge:    cfg.Archive.MaxClipAge(),
	}

	clipRepo := sqlite.NewClipRepository(db)
	clipSvc := clip.NewService(clipRepo, nil, limits, logger)

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go clip.NewSweeper(clipSvc, cfg.Archive.SweepInterval(), logger).Run(sweepCtx)

	captureCfg := capture.Config{
		MaxDuration:     cfg.Capture.MaxDuration(),
		MaxPayloadBytes: limits.MaxClipBytes,
		BitrateHint:     cfg.Capture.BitrateHint,
		Formats:         cfg.Capture.Formats,
	}
	session := capture.NewSession(&synthDevice{}, &synthEncoder{}, nil, nil, captureCfg, logger)
	player := playback.NewController(clipSvc, &synthOutput{}, logger)

	// Record a short clip.
	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("starting capture: %w", err)
	}
	time.Sleep(300 * time.Millisecond)
	result, err := session.Stop(ctx)
	if err != nil {
		return fmt.Errorf("stopping capture: %w", err)
	}

	archived, err := clipSvc.Insert(ctx, clip.InsertRequest{
		StoryID:         "demo-story",
		StoryTitle:      "Demo Story",
		Level:           "1",
		AttemptNumber:   1,
		Payload:         result.Payload,
		DurationSeconds: result.Duration.Seconds(),
	})
	if err != nil {
		return fmt.Errorf("archiving clip: %w", err)
	}
	logger.Info("clip archived", "clip_id", archived.ID, "size_bytes", archived.SizeBytes)

	refs, err := clipSvc.GetByStory(ctx, "demo-story")
	if err != nil {
		return fmt.Errorf("listing story clips: %w", err)
	}
	for _, ref := range refs {
		logger.Info("attempt on record",
			"clip_id", ref.ID,
			"attempt", ref.AttemptNumber,
			"duration_seconds", ref.DurationSeconds)
	}

	if err := player.Play(ctx, archived.ID); err != nil {
		return fmt.Errorf("playing clip: %w", err)
	}
	time.Sleep(time.Second)
	player.Stop()

	total, err := clipSvc.TotalBytesUsed(ctx)
	if err != nil {
		return fmt.Errorf("reading archive usage: %w", err)
	}
	logger.Info("archive usage", "total_bytes", total, "diagnostics", clipSvc.Diagnostics(ctx))
	return nil
}

func ensureDBDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
