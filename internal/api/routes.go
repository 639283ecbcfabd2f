package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/captions"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/config"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/project"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/store"
)

// maxDemoLinesBytes caps uploaded demo script files.
const maxDemoLinesBytes = 1 << 20

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(CORSMiddleware(cfg.CORSOrigins))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Get("/status", statusHandler(cfg))

	r.Route("/api", func(r chi.Router) {
		r.Get("/projects", listProjectsHandler(cfg))
		r.Route("/projects/{project}", func(r chi.Router) {
			r.Get("/media", listVideosHandler(cfg))
			r.Get("/media/file", mediaFileHandler(cfg))
			r.Get("/media/captions", captionLookupHandler(cfg))
			r.Post("/media/generate-captions", generateCaptionsHandler(cfg))
			r.Get("/artifacts", listArtifactsHandler(cfg))
		})

		r.Get("/jobs", listJobsHandler(cfg))
		r.Get("/jobs/{id}", getJobHandler(cfg))
		r.Post("/runner/pause", pauseRunnerHandler(cfg))
		r.Post("/runner/resume", resumeRunnerHandler(cfg))

		r.Get("/captions/srt", srtHandler(cfg))
		r.Get("/captions/cues", cuesHandler(cfg))
		r.Get("/captions/active", activeCueHandler(cfg))

		r.Get("/demo-lines", listDemoLinesHandler(cfg))
		r.Get("/demo-lines/file", demoLinesFileHandler(cfg))
		r.Put("/demo-lines/file", saveDemoLinesFileHandler(cfg))

		r.Get("/settings", listSettingsHandler(cfg))
		r.Get("/settings/{key}", getSettingHandler(cfg))
		r.Put("/settings/{key}", setSettingHandler(cfg))
		r.Delete("/settings/{key}", deleteSettingHandler(cfg))

		r.Get("/profiles", listProfilesHandler(cfg))

		r.Post("/export/edl", exportEDLHandler(cfg))

		r.Post("/script/parse", parseScriptHandler(cfg))
		r.Post("/timing/allocate", allocateHandler(cfg))
		r.Post("/sequence/build", buildSequenceHandler(cfg))
		r.Post("/camera/frame", cameraFrameHandler(cfg))
		r.Get("/camera/min-distance", minDistanceHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: config.Version,
			UptimeS: uptime,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		projects, _ := project.ListProjects(cfg.ProjectsRoot)
		jobs, _ := cfg.Repository.ListJobs(ctx, 10)

		state := "idle"
		var activeJob *JobResponse
		jobsRunning := 0
		lastError := ""

		if cfg.Runner != nil && cfg.Runner.IsPaused() {
			state = "paused"
		}

		for _, j := range jobs {
			if j.Status == store.JobStatusRunning {
				state = "transcribing"
				resp := JobToResponse(j)
				activeJob = &resp
				jobsRunning++
			}
			if j.Status == store.JobStatusFailed && lastError == "" {
				lastError = j.Error
			}
		}

		if lastError != "" && state == "idle" {
			state = "error"
		}

		WriteJSON(w, http.StatusOK, StatusResponse{
			State:         state,
			LastError:     lastError,
			ProjectsCount: len(projects),
			JobsRunning:   jobsRunning,
			ActiveJob:     activeJob,
		})
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := project.ListProjects(cfg.ProjectsRoot)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list projects", "INTERNAL_ERROR")
			return
		}
		if projects == nil {
			projects = []string{}
		}
		WriteJSON(w, http.StatusOK, ProjectsResponse{Projects: projects})
	}
}

func listVideosHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "project")
		root, err := project.ResolveProjectRoot(cfg.ProjectsRoot, name)
		if err != nil {
			writeProjectError(w, err)
			return
		}

		videos, err := project.ListProjectVideos(root)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list videos", "INTERNAL_ERROR")
			return
		}
		if videos == nil {
			videos = []string{}
		}
		WriteJSON(w, http.StatusOK, VideosResponse{Project: name, Videos: videos})
	}
}

// mediaFileHandler serves project files from the allowed top-level
// directories. http.ServeFile handles Range, HEAD and content types.
func mediaFileHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "project")
		root, err := project.ResolveProjectRoot(cfg.ProjectsRoot, name)
		if err != nil {
			writeProjectError(w, err)
			return
		}

		rel := r.URL.Query().Get("rel_path")
		if rel == "" {
			WriteError(w, http.StatusBadRequest, "rel_path is required", "BAD_REQUEST")
			return
		}

		rel, err = project.EnsureAllowedRelative(rel)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		abs := filepath.Join(root, filepath.FromSlash(rel))
		info, err := os.Stat(abs)
		if err != nil || info.IsDir() {
			WriteError(w, http.StatusNotFound, "file not found", "NOT_FOUND")
			return
		}

		http.ServeFile(w, r, abs)
	}
}

func captionLookupHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "project")
		videoRel := r.URL.Query().Get("video_rel_path")
		if videoRel == "" {
			WriteError(w, http.StatusBadRequest, "video_rel_path is required", "BAD_REQUEST")
			return
		}

		paths, err := cfg.Captions.Lookup(name, videoRel)
		if err != nil {
			if errors.Is(err, captions.ErrVideoNotFound) {
				WriteError(w, http.StatusNotFound, "video not found", "NOT_FOUND")
				return
			}
			writeProjectError(w, err)
			return
		}
		if paths == nil {
			WriteError(w, http.StatusNotFound, "no captions for this video", "NO_CAPTIONS")
			return
		}

		WriteJSON(w, http.StatusOK, paths)
	}
}

func generateCaptionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "project")
		root, err := project.ResolveProjectRoot(cfg.ProjectsRoot, name)
		if err != nil {
			writeProjectError(w, err)
			return
		}

		var req GenerateCaptionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.VideoRel == "" {
			WriteError(w, http.StatusBadRequest, "video_rel_path is required", "BAD_REQUEST")
			return
		}

		rel, err := project.EnsureRelativePath(req.VideoRel)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		if !project.IsVideoFile(rel) {
			WriteError(w, http.StatusBadRequest, "not a supported video file", "UNSUPPORTED_MEDIA")
			return
		}
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			WriteError(w, http.StatusNotFound, "video not found", "NOT_FOUND")
			return
		}

		modelSize := req.ModelSize
		if modelSize == "" {
			modelSize = "small"
		}

		now := time.Now().UTC()
		job := &store.Job{
			ID:        store.NewID(),
			Kind:      store.JobKindGenerateCaptions,
			Project:   name,
			VideoRel:  rel,
			ModelSize: modelSize,
			Status:    store.JobStatusQueued,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := cfg.Repository.CreateJob(r.Context(), job); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to queue job", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusAccepted, GenerateCaptionsResponse{JobID: job.ID})
	}
}

func listArtifactsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "project")
		artifacts, err := cfg.Repository.ListArtifacts(r.Context(), name)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list artifacts", "INTERNAL_ERROR")
			return
		}

		resp := ArtifactsResponse{Artifacts: make([]ArtifactResponse, len(artifacts))}
		for i, a := range artifacts {
			resp.Artifacts[i] = ArtifactToResponse(a)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func listJobsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := cfg.Repository.ListJobs(r.Context(), 50)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list jobs", "INTERNAL_ERROR")
			return
		}

		resp := JobsResponse{Jobs: make([]JobResponse, len(jobs))}
		for i, j := range jobs {
			resp.Jobs[i] = JobToResponse(j)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getJobHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "job id required", "BAD_REQUEST")
			return
		}

		job, err := cfg.Repository.GetJob(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if job == nil {
			WriteError(w, http.StatusNotFound, "job not found", "NOT_FOUND")
			return
		}

		WriteJSON(w, http.StatusOK, JobToResponse(job))
	}
}

func pauseRunnerHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Runner == nil {
			WriteError(w, http.StatusConflict, "runner not available", "NO_RUNNER")
			return
		}
		cfg.Runner.Pause()
		w.WriteHeader(http.StatusNoContent)
	}
}

func resumeRunnerHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Runner == nil {
			WriteError(w, http.StatusConflict, "runner not available", "NO_RUNNER")
			return
		}
		cfg.Runner.Resume()
		w.WriteHeader(http.StatusNoContent)
	}
}

func listDemoLinesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files := project.ListDemoLinesFiles(cfg.PublicDir)
		if files == nil {
			files = []string{}
		}
		WriteJSON(w, http.StatusOK, DemoLinesResponse{Files: files})
	}
}

func demoLinesFileHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			WriteError(w, http.StatusBadRequest, "name is required", "BAD_REQUEST")
			return
		}

		path, err := project.ResolveDemoLinesPath(cfg.PublicDir, name)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		if _, err := os.Stat(path); err != nil {
			WriteError(w, http.StatusNotFound, "file not found", "NOT_FOUND")
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		http.ServeFile(w, r, path)
	}
}

func saveDemoLinesFileHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			WriteError(w, http.StatusBadRequest, "name is required", "BAD_REQUEST")
			return
		}

		path, err := project.ResolveDemoLinesPath(cfg.PublicDir, name)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxDemoLinesBytes+1))
		if err != nil {
			WriteError(w, http.StatusBadRequest, "failed to read body", "BAD_REQUEST")
			return
		}
		if len(body) > maxDemoLinesBytes {
			WriteError(w, http.StatusRequestEntityTooLarge, "body too large", "TOO_LARGE")
			return
		}

		if err := os.WriteFile(path, body, 0o644); err != nil {
			cfg.Logger.Error("failed to write demo lines", "file", name, "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to write file", "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listSettingsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := cfg.Repository.ListSettings(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list settings", "INTERNAL_ERROR")
			return
		}

		resp := SettingsResponse{Settings: make([]SettingResponse, len(settings))}
		for i, s := range settings {
			resp.Settings[i] = SettingResponse{Key: s.Key, Value: s.Value}
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getSettingHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		value, err := cfg.Repository.GetSetting(r.Context(), key)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if value == "" {
			WriteError(w, http.StatusNotFound, "setting not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, SettingResponse{Key: key, Value: value})
	}
}

func setSettingHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")

		var req SetSettingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if err := cfg.Repository.SetSetting(r.Context(), key, req.Value); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to store setting", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, SettingResponse{Key: key, Value: req.Value})
	}
}

func deleteSettingHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		if err := cfg.Repository.DeleteSetting(r.Context(), key); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to delete setting", "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listProfilesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids := cfg.Profiles.IDs()
		sort.Strings(ids)
		WriteJSON(w, http.StatusOK, ProfilesResponse{Profiles: ids})
	}
}

func writeProjectError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		WriteError(w, http.StatusNotFound, "project not found", "NOT_FOUND")
	case errors.Is(err, project.ErrInvalidPath), errors.Is(err, project.ErrNotAllowed):
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}
