package api

import (
	"time"

	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/camera"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/script"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/sequence"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/store"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/subtitle"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/timing"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type StatusResponse struct {
	State         string       `json:"state"`
	LastError     string       `json:"last_error,omitempty"`
	ProjectsCount int          `json:"projects_count"`
	JobsRunning   int          `json:"jobs_running"`
	ActiveJob     *JobResponse `json:"active_job,omitempty"`
}

type ProjectsResponse struct {
	Projects []string `json:"projects"`
}

type VideosResponse struct {
	Project string   `json:"project"`
	Videos  []string `json:"videos"`
}

type GenerateCaptionsRequest struct {
	VideoRel  string `json:"video_rel_path"`
	ModelSize string `json:"model_size,omitempty"`
}

type GenerateCaptionsResponse struct {
	JobID string `json:"job_id"`
}

type JobResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Project   string `json:"project"`
	VideoRel  string `json:"video_rel_path"`
	ModelSize string `json:"model_size"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type JobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

type ArtifactResponse struct {
	Project   string `json:"project"`
	VideoRel  string `json:"video_rel_path"`
	SHA256    string `json:"sha256"`
	Kind      string `json:"kind"`
	RelPath   string `json:"rel_path"`
	CreatedAt string `json:"created_at"`
}

type ArtifactsResponse struct {
	Artifacts []ArtifactResponse `json:"artifacts"`
}

type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type SettingsResponse struct {
	Settings []SettingResponse `json:"settings"`
}

type SetSettingRequest struct {
	Value string `json:"value"`
}

type DemoLinesResponse struct {
	Files []string `json:"files"`
}

type CuesResponse struct {
	MediaURL string         `json:"media_url"`
	SRTURL   string         `json:"srt_url"`
	Cues     []subtitle.Cue `json:"cues"`
}

type ActiveCueResponse struct {
	TMs int           `json:"t_ms"`
	Cue *subtitle.Cue `json:"cue"`
}

type ProfilesResponse struct {
	Profiles []string `json:"profiles"`
}

type ParseScriptRequest struct {
	Lines        []string `json:"lines,omitempty"`
	Text         string   `json:"text,omitempty"`
	StartProfile string   `json:"start_profile,omitempty"`
}

type ParseScriptResponse struct {
	Segments []script.Segment `json:"segments"`
}

type AllocateRequest struct {
	Text    string  `json:"text"`
	StartMs float64 `json:"start_ms"`
	EndMs   float64 `json:"end_ms"`
	Profile string  `json:"profile,omitempty"`
}

type AllocateResponse struct {
	Envelopes []timing.Envelope `json:"envelopes"`
}

type SequenceBuildRequest struct {
	Lines        []string `json:"lines,omitempty"`
	Text         string   `json:"text,omitempty"`
	SRT          string   `json:"srt,omitempty"`
	StartProfile string   `json:"start_profile,omitempty"`
}

type SequenceBuildResponse struct {
	Lines []sequence.Line `json:"lines"`
}

type CameraFrameRequest struct {
	Anchors       []camera.Anchor  `json:"anchors"`
	Profile       string           `json:"profile,omitempty"`
	State         *camera.State    `json:"state,omitempty"`
	U             float64          `json:"u"`
	Dt            float64          `json:"dt"`
	LastWordWidth float64          `json:"last_word_width"`
	Viewport      *camera.Viewport `json:"viewport,omitempty"`
}

type CameraFrameResponse struct {
	State camera.State `json:"state"`
	Frame camera.Frame `json:"frame"`
}

type MinDistanceResponse struct {
	SpanWidth   float64 `json:"span_width"`
	MinDistance float64 `json:"min_distance"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func JobToResponse(j *store.Job) JobResponse {
	return JobResponse{
		ID:        j.ID,
		Kind:      j.Kind,
		Project:   j.Project,
		VideoRel:  j.VideoRel,
		ModelSize: j.ModelSize,
		Status:    j.Status,
		Error:     j.Error,
		CreatedAt: j.CreatedAt.Format(time.RFC3339),
		UpdatedAt: j.UpdatedAt.Format(time.RFC3339),
	}
}

func ArtifactToResponse(a *store.Artifact) ArtifactResponse {
	return ArtifactResponse{
		Project:   a.Project,
		VideoRel:  a.VideoRel,
		SHA256:    a.SHA256,
		Kind:      a.Kind,
		RelPath:   a.RelPath,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}
