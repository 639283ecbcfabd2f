// Package config provides configuration management for the captioner service.
// Configuration is loaded from environment variables with sensible defaults;
// main applies a .env file before New runs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// Default values
	DefaultPort         = 8791
	DefaultLogLevel     = "info"
	DefaultDataDir      = ".caption-glider"
	DefaultProjectsRoot = "/data/projects"
	DefaultSRTMapMode   = "captions_dir"

	// Environment variable names
	EnvPort         = "CAPTIONER_PORT"
	EnvLogLevel     = "CAPTIONER_LOG_LEVEL"
	EnvLogFile      = "CAPTIONER_LOG_FILE"
	EnvDataDir      = "CAPTIONER_DATA_DIR"
	EnvProjectsRoot = "CAPTIONER_PROJECTS_ROOT"
	EnvPublicDir    = "CAPTIONER_PUBLIC_DIR"
	EnvCORSOrigins  = "CAPTIONER_CORS_ORIGINS"
	EnvProfilesFile = "CAPTIONER_PROFILES_FILE"
	EnvMediaSyncURL = "MEDIA_SYNC_BASE_URL"
	EnvSRTMapMode   = "SRT_MAP_MODE"
	EnvSRTTimeout   = "SRT_FETCH_TIMEOUT"

	// Speech pipeline environment variable names
	EnvSpeechPython = "CAPTIONER_SPEECH_PYTHON"
	EnvSpeechModule = "CAPTIONER_SPEECH_MODULE"

	// Database filename
	DBFilename = "captioner.db"

	// Speech defaults
	DefaultSpeechModule        = "captioner_speech"
	DefaultSpeechTimeoutSpeech = 1800 // 30 minutes
	DefaultSRTFetchSeconds     = 5
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	LogFile() string
	DataDir() string
	DBPath() string
	ProjectsRoot() string
	PublicDir() string
	CORSOrigins() []string
	ProfilesFile() string
	MediaSyncBaseURL() string
	SRTMapMode() string
	SRTFetchTimeout() time.Duration
	SpeechPython() string
	SpeechModule() string
	SpeechTimeout() time.Duration
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port         int
	logLevel     string
	logFile      string
	dataDir      string
	projectsRoot string
	publicDir    string
	corsOrigins  []string
	profilesFile string
	mediaSyncURL string
	srtMapMode   string
	srtTimeout   time.Duration

	speechPython string
	speechModule string
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:         DefaultPort,
		logLevel:     DefaultLogLevel,
		dataDir:      defaultDataDir(),
		projectsRoot: DefaultProjectsRoot,
		corsOrigins:  []string{"*"},
		srtMapMode:   DefaultSRTMapMode,
		srtTimeout:   DefaultSRTFetchSeconds * time.Second,
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	// Override log settings from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}
	cfg.logFile = os.Getenv(EnvLogFile)

	// Override directories from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}
	if pr := os.Getenv(EnvProjectsRoot); pr != "" {
		cfg.projectsRoot = pr
	}
	if pd := os.Getenv(EnvPublicDir); pd != "" {
		cfg.publicDir = pd
	}
	if pf := os.Getenv(EnvProfilesFile); pf != "" {
		cfg.profilesFile = pf
	}

	if co := os.Getenv(EnvCORSOrigins); co != "" {
		cfg.corsOrigins = splitCSV(co)
	}

	cfg.mediaSyncURL = strings.TrimRight(os.Getenv(EnvMediaSyncURL), "/")

	if mode := os.Getenv(EnvSRTMapMode); mode != "" {
		cfg.srtMapMode = mode
	}
	if ft := os.Getenv(EnvSRTTimeout); ft != "" {
		secs, err := strconv.ParseFloat(ft, 64)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid %s: %q", EnvSRTTimeout, ft)
		}
		cfg.srtTimeout = time.Duration(secs * float64(time.Second))
	}

	cfg.speechPython = os.Getenv(EnvSpeechPython)

	if sm := os.Getenv(EnvSpeechModule); sm != "" {
		cfg.speechModule = sm
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// LogFile returns the rotating log file path, or "" for stdout only
func (c *EnvConfig) LogFile() string {
	return c.logFile
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// ProjectsRoot returns the root directory holding project folders
func (c *EnvConfig) ProjectsRoot() string {
	return c.projectsRoot
}

// PublicDir returns the directory serving the UI and demo-lines files
func (c *EnvConfig) PublicDir() string {
	if c.publicDir != "" {
		return c.publicDir
	}
	return filepath.Join(c.dataDir, "public")
}

// CORSOrigins returns the allowed CORS origins
func (c *EnvConfig) CORSOrigins() []string {
	return c.corsOrigins
}

// ProfilesFile returns the pacing-profiles YAML path, or "" for builtins only
func (c *EnvConfig) ProfilesFile() string {
	return c.profilesFile
}

// MediaSyncBaseURL returns the media-sync handoff base URL, or "" when disabled
func (c *EnvConfig) MediaSyncBaseURL() string {
	return c.mediaSyncURL
}

// SRTMapMode returns how media URLs map to sidecar SRT URLs
// ("captions_dir" or "side_by_side")
func (c *EnvConfig) SRTMapMode() string {
	return c.srtMapMode
}

// SRTFetchTimeout returns the timeout for fetching remote SRT text
func (c *EnvConfig) SRTFetchTimeout() time.Duration {
	return c.srtTimeout
}

func (c *EnvConfig) SpeechPython() string {
	return c.speechPython
}

func (c *EnvConfig) SpeechModule() string {
	if c.speechModule != "" {
		return c.speechModule
	}
	return DefaultSpeechModule
}

func (c *EnvConfig) SpeechTimeout() time.Duration {
	return time.Duration(DefaultSpeechTimeoutSpeech) * time.Second
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
