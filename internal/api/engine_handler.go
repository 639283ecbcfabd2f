package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/camera"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/script"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/sequence"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/subtitle"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/timing"
)

func scriptLines(lines []string, text string) []string {
	if len(lines) > 0 {
		return lines
	}
	if text == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

func parseScriptHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ParseScriptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		lines := scriptLines(req.Lines, req.Text)
		if lines == nil {
			WriteError(w, http.StatusBadRequest, "lines or text is required", "BAD_REQUEST")
			return
		}

		segments := script.Parse(lines, script.NormalizeProfile(req.StartProfile))
		if segments == nil {
			segments = []script.Segment{}
		}
		WriteJSON(w, http.StatusOK, ParseScriptResponse{Segments: segments})
	}
}

func allocateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AllocateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Text == "" {
			WriteError(w, http.StatusBadRequest, "text is required", "BAD_REQUEST")
			return
		}
		if req.EndMs < req.StartMs {
			WriteError(w, http.StatusBadRequest, "end_ms must not precede start_ms", "BAD_REQUEST")
			return
		}

		tc := cfg.Profiles.Lookup(req.Profile).Timing
		envelopes := timing.Allocate(req.Text, req.StartMs, req.EndMs, tc)
		if envelopes == nil {
			envelopes = []timing.Envelope{}
		}
		WriteJSON(w, http.StatusOK, AllocateResponse{Envelopes: envelopes})
	}
}

func buildSequenceHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SequenceBuildRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		lines := scriptLines(req.Lines, req.Text)
		if lines == nil {
			WriteError(w, http.StatusBadRequest, "lines or text is required", "BAD_REQUEST")
			return
		}

		segments := script.Parse(lines, script.NormalizeProfile(req.StartProfile))

		var scheduled []sequence.Line
		if req.SRT != "" {
			cues := subtitle.ParseSRT(req.SRT)
			scheduled = sequence.BuildFromCues(segments, cues, cfg.Profiles, sequence.DefaultOptions())
		} else {
			scheduled = sequence.Build(segments, cfg.Profiles, sequence.DefaultOptions())
		}
		if scheduled == nil {
			scheduled = []sequence.Line{}
		}
		WriteJSON(w, http.StatusOK, SequenceBuildResponse{Lines: scheduled})
	}
}

func cameraFrameHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CameraFrameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if len(req.Anchors) == 0 {
			WriteError(w, http.StatusBadRequest, "anchors must not be empty", "BAD_REQUEST")
			return
		}
		if req.Dt < 0 {
			WriteError(w, http.StatusBadRequest, "dt must be non-negative", "BAD_REQUEST")
			return
		}

		camCfg := cfg.Profiles.Lookup(req.Profile).Camera
		path := camera.NewPath(req.Anchors, camCfg)

		// Cold start: snap onto the first curve point instead of
		// damping in from the origin.
		var st camera.State
		if req.State != nil {
			st = *req.State
		} else {
			start := path.PointAt(0)
			st = camera.State{X: start.X, Y: start.Y, AimX: start.X, AimY: start.Y}
		}

		vp := camera.Viewport{FOVRad: 1.0, Aspect: 16.0 / 9.0, BaselineDistance: 10}
		if req.Viewport != nil {
			vp = *req.Viewport
		}

		next, frame := path.Step(st, req.U, req.Dt, vp, req.LastWordWidth)
		WriteJSON(w, http.StatusOK, CameraFrameResponse{State: next, Frame: frame})
	}
}

func minDistanceHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		span, err := strconv.ParseFloat(q.Get("span_width"), 64)
		if err != nil || span < 0 {
			WriteError(w, http.StatusBadRequest, "span_width must be a non-negative number", "BAD_REQUEST")
			return
		}

		fov := queryFloat(q.Get("fov_rad"), 1.0)
		aspect := queryFloat(q.Get("aspect"), 16.0/9.0)
		baseline := queryFloat(q.Get("baseline"), 10)

		WriteJSON(w, http.StatusOK, MinDistanceResponse{
			SpanWidth:   span,
			MinDistance: camera.MinDistance(span, fov, aspect, baseline),
		})
	}
}

func queryFloat(s string, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}
