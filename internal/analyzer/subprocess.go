package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/streameme/backend/internal/models"
	"github.com/streameme/backend/internal/storage"
)

const (
	defaultScript     = "inference.py"
	defaultOutputName = "suggestions.json"

	maxStderrBytes = 8 * 1024 // tail of stderr kept for crash diagnostics
)

// Config holds the subprocess engine settings.
type Config struct {
	PythonPath   string        // path to the engine's python binary
	InferenceDir string        // working directory containing the inference script
	Script       string        // script name, default "inference.py"
	OutputName   string        // result file name, default "suggestions.json"
	Timeout      time.Duration // per-invocation limit; zero disables it
	Logger       zerolog.Logger
}

// SubprocessEngine invokes the inference script as a child process. Each
// invocation stages the video in its own scratch directory and releases it
// on every exit path, including cancellation.
type SubprocessEngine struct {
	cfg   Config
	spool *storage.Spool
}

// NewSubprocessEngine creates a SubprocessEngine backed by the given spool.
func NewSubprocessEngine(cfg Config, spool *storage.Spool) *SubprocessEngine {
	if cfg.Script == "" {
		cfg.Script = defaultScript
	}
	if cfg.OutputName == "" {
		cfg.OutputName = defaultOutputName
	}
	return &SubprocessEngine{cfg: cfg, spool: spool}
}

// Analyze drives one inference run to completion.
func (e *SubprocessEngine) Analyze(ctx context.Context, req Request) (models.Outcome, error) {
	dir, release, err := e.spool.Acquire()
	if err != nil {
		return models.Outcome{}, fmt.Errorf("acquiring scratch storage: %w", err)
	}
	defer release()

	videoPath := filepath.Join(dir, "video")
	if err := os.WriteFile(videoPath, req.Video, 0o600); err != nil {
		return models.Outcome{}, fmt.Errorf("staging video: %w", err)
	}
	outDir := filepath.Join(dir, "out")
	if err := os.Mkdir(outDir, 0o700); err != nil {
		return models.Outcome{}, fmt.Errorf("creating output directory: %w", err)
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.cfg.PythonPath, e.cfg.Script,
		"--video_path", videoPath,
		"--video_name", req.VideoName,
		"--output_dir", outDir,
	)
	cmd.Dir = e.cfg.InferenceDir

	var stderr bytes.Buffer
	cmd.Stderr = &limitedWriter{w: &stderr, limit: maxStderrBytes}
	cmd.Stdout = io.Discard

	e.cfg.Logger.Debug().
		Str("python", e.cfg.PythonPath).
		Str("script", e.cfg.Script).
		Str("video", req.VideoName).
		Msg("starting inference procedure")

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	// A vanished client aborts the invocation without producing a result.
	if errors.Is(ctx.Err(), context.Canceled) {
		e.cfg.Logger.Debug().Str("video", req.VideoName).Msg("analysis canceled")
		return models.Outcome{}, ctx.Err()
	}

	if runErr != nil {
		e.cfg.Logger.Error().
			Int("exit_code", exitCode(runErr)).
			Dur("elapsed", elapsed).
			Bool("timed_out", errors.Is(ctx.Err(), context.DeadlineExceeded)).
			Str("stderr_tail", stderr.String()).
			Msg("inference procedure exited abnormally")
		return models.CrashedOutcome(), nil
	}

	suggestions, err := parseSuggestions(filepath.Join(outDir, e.cfg.OutputName))
	if err != nil {
		e.cfg.Logger.Error().
			Err(err).
			Dur("elapsed", elapsed).
			Msg("inference output could not be parsed")
		return models.CrashedOutcome(), nil
	}

	e.cfg.Logger.Info().
		Dur("elapsed", elapsed).
		Int("suggestions", len(suggestions)).
		Msg("inference procedure exited successfully")
	return models.SuccessOutcome(suggestions), nil
}

// parseSuggestions reads the engine's result file: a JSON array of
// {start, end, suggestion} objects.
func parseSuggestions(path string) ([]models.Suggestion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}

	var suggestions []models.Suggestion
	if err := json.Unmarshal(data, &suggestions); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	for i, s := range suggestions {
		if !s.Valid() {
			return nil, fmt.Errorf("suggestion %d has invalid window [%d, %d]", i, s.Start, s.End)
		}
	}
	return suggestions, nil
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// limitedWriter keeps only the last limit bytes written to it.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if lw.w.Len()+n > lw.limit {
		overflow := lw.w.Len() + n - lw.limit
		if overflow >= lw.w.Len() {
			lw.w.Reset()
			if n > lw.limit {
				p = p[n-lw.limit:]
			}
		} else {
			lw.w.Next(overflow)
		}
	}
	lw.w.Write(p)
	return n, nil
}
