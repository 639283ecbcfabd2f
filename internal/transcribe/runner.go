// Package transcribe executes the Python speech pipeline as a subprocess
// and parses its word-timestamped output.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	maxStderrBytes = 8 * 1024 // 8 KB tail of stderr kept for diagnostics
)

// Word is a recognised word with absolute timestamps in seconds.
type Word struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Result is the parsed output of one transcription run.
type Result struct {
	Language  string  `json:"language,omitempty"`
	ModelSize string  `json:"model_size,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
	Words     []Word  `json:"words"`
}

// Transcriber runs speech recognition over an extracted audio file.
type Transcriber interface {
	// Transcribe executes
	// `python -m <module> transcribe --audio <path> --model <size> --out <path>`
	// and returns the parsed word list.
	Transcribe(ctx context.Context, audioPath, modelSize, outPath string) (*Result, error)
}

// Config holds the runner's configuration.
type Config struct {
	PythonPath string        // path to python binary; empty = auto-detect
	ModuleName string        // default "captioner_speech"
	Timeout    time.Duration // timeout for one transcription run
	Logger     *slog.Logger
	DebugPaths bool // if true, log full file paths; otherwise sanitise
}

// SubprocessRunner is the production implementation of Transcriber.
type SubprocessRunner struct {
	cfg    Config
	python string // resolved python path
}

// NewRunner creates a SubprocessRunner, resolving the Python binary path.
func NewRunner(cfg Config) (*SubprocessRunner, error) {
	python, err := resolvePython(cfg.PythonPath)
	if err != nil {
		return nil, fmt.Errorf("cannot locate python: %w", err)
	}
	if cfg.ModuleName == "" {
		cfg.ModuleName = "captioner_speech"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("speech runner initialised",
			"python", python,
			"module", cfg.ModuleName,
		)
	}

	return &SubprocessRunner{cfg: cfg, python: python}, nil
}

func (r *SubprocessRunner) Transcribe(ctx context.Context, audioPath, modelSize, outPath string) (*Result, error) {
	if modelSize == "" {
		modelSize = "small"
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return nil, fmt.Errorf("cannot create output dir: %w", err)
	}

	start := time.Now()
	cmdArgs := []string{
		"-m", r.cfg.ModuleName,
		"transcribe",
		"--audio", audioPath,
		"--model", modelSize,
		"--out", outPath,
	}
	cmd := exec.CommandContext(ctx, r.python, cmdArgs...)

	// Capture stderr with bounded buffer
	var stderrBuf bytes.Buffer
	cmd.Stderr = &limitedWriter{w: &stderrBuf, limit: maxStderrBytes}
	cmd.Stdout = io.Discard // CLI writes to --out file, not stdout

	r.cfg.Logger.Info("executing speech command", "model", modelSize)

	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		r.cfg.Logger.Warn("speech command failed",
			"exit_code", exitCode,
			"duration_ms", elapsed.Milliseconds(),
			"stderr_tail", truncate(stderrBuf.String(), 512),
		)
		return nil, fmt.Errorf("speech pipeline exited %d: %s", exitCode, truncate(stderrBuf.String(), 512))
	}

	r.cfg.Logger.Info("speech command succeeded",
		"duration_ms", elapsed.Milliseconds(),
		"output", r.safePath(outPath),
	)

	return ParseResult(outPath)
}

// ParseResult reads a transcription output JSON and checks it carries words.
func ParseResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read speech output: %w", err)
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("cannot parse speech JSON: %w", err)
	}
	if res.Words == nil {
		return nil, fmt.Errorf("speech output missing words field")
	}
	return &res, nil
}

func (r *SubprocessRunner) safePath(path string) string {
	if r.cfg.DebugPaths {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Base(path)
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return filepath.Base(path)
}

// resolvePython finds a usable python binary.
func resolvePython(preferred string) (string, error) {
	if preferred != "" {
		if p, err := exec.LookPath(preferred); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("configured python %q not found", preferred)
	}
	for _, name := range []string{"python3", "python"} {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no python binary found on PATH (tried python3, python)")
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

// StubTranscriber returns a fixed word list without running Python. Used
// in tests and local development.
type StubTranscriber struct {
	Result *Result
	Err    error
}

func (s *StubTranscriber) Transcribe(ctx context.Context, audioPath, modelSize, outPath string) (*Result, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Result != nil {
		return s.Result, nil
	}
	return &Result{ModelSize: modelSize, Words: []Word{}}, nil
}
