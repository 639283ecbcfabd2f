// Package store persists caption jobs, generated artifacts, and UI
// settings in the service's SQLite database.
package store

import (
	"crypto/rand"
	"fmt"
	"time"
)

const (
	JobKindGenerateCaptions = "generate_captions"

	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Job is one requested caption generation for a project video.
type Job struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Project   string    `json:"project"`
	VideoRel  string    `json:"video_rel"`
	ModelSize string    `json:"model_size"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	ArtifactWords = "words"
	ArtifactLines = "lines"
	ArtifactSRT   = "srt"
)

// Artifact is a generated caption file inside a project's captions/
// directory. RelPath is relative to the project root.
type Artifact struct {
	ID        int64     `json:"id"`
	Project   string    `json:"project"`
	VideoRel  string    `json:"video_rel"`
	SHA256    string    `json:"sha256"`
	Kind      string    `json:"kind"`
	RelPath   string    `json:"rel_path"`
	CreatedAt time.Time `json:"created_at"`
}

// Setting is a persisted key/value pair for the editing UI.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func NewID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:])
}
