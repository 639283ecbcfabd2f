// Package media wraps the external ffmpeg binary.
package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// FFmpeg extracts audio suitable for speech transcription.
type FFmpeg interface {
	// ExtractAudio writes a mono 16 kHz WAV from the video's audio track.
	ExtractAudio(ctx context.Context, videoPath, audioPath string) error
}

const (
	audioChannels   = 1
	audioSampleRate = 16000

	maxStderrBytes = 8 * 1024 // tail of stderr kept for diagnostics
)

// ExecFFmpeg runs the ffmpeg binary found on PATH.
type ExecFFmpeg struct {
	binary string
	logger *slog.Logger
}

// NewFFmpeg locates the ffmpeg binary. An empty binary argument means
// "ffmpeg" from PATH.
func NewFFmpeg(binary string, logger *slog.Logger) (*ExecFFmpeg, error) {
	if binary == "" {
		binary = "ffmpeg"
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("cannot locate ffmpeg: %w", err)
	}
	return &ExecFFmpeg{binary: resolved, logger: logger}, nil
}

func (f *ExecFFmpeg) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	if err := os.MkdirAll(filepath.Dir(audioPath), 0755); err != nil {
		return fmt.Errorf("cannot create audio dir: %w", err)
	}

	args := []string{
		"-y",
		"-i", videoPath,
		"-vn",
		"-ac", strconv.Itoa(audioChannels),
		"-ar", strconv.Itoa(audioSampleRate),
		audioPath,
	}
	cmd := exec.CommandContext(ctx, f.binary, args...)

	var stderrBuf bytes.Buffer
	cmd.Stderr = &limitedWriter{w: &stderrBuf, limit: maxStderrBytes}

	f.logger.Info("extracting audio", "output", filepath.Base(audioPath))

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		f.logger.Warn("ffmpeg failed",
			"exit_code", exitCode,
			"stderr_tail", truncate(stderrBuf.String(), 512),
		)
		return fmt.Errorf("ffmpeg exited %d: %s", exitCode, truncate(stderrBuf.String(), 512))
	}
	return nil
}

// StubFFmpeg writes an empty audio file without invoking ffmpeg. Used in
// tests and on hosts without ffmpeg installed.
type StubFFmpeg struct {
	logger *slog.Logger
}

func NewStubFFmpeg(logger *slog.Logger) *StubFFmpeg {
	return &StubFFmpeg{logger: logger}
}

func (f *StubFFmpeg) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	f.logger.Info("ffmpeg stub: audio extraction requested",
		"input", videoPath, "output", audioPath)
	if err := os.MkdirAll(filepath.Dir(audioPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(audioPath, nil, 0644)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}

// limitedWriter is an io.Writer that keeps only the last `limit` bytes.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.w.Write(p)
	if lw.w.Len() > lw.limit {
		// Keep only the tail
		b := lw.w.Bytes()
		lw.w.Reset()
		lw.w.Write(b[len(b)-lw.limit:])
	}
	return n, nil
}
