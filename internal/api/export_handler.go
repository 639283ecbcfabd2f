package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/export"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/mediasync"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/subtitle"
)

// exportEDLHandler derives the subtitle track for a media URL, fetches it
// and renders a CMX 3600 EDL that Resolve imports as a subtitle timeline.
func exportEDLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req export.ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if strings.ToLower(req.Format) != "edl" {
			WriteError(w, http.StatusBadRequest, "format must be edl", "BAD_REQUEST")
			return
		}
		if req.MediaURL == "" {
			WriteError(w, http.StatusBadRequest, "media_url is required", "BAD_REQUEST")
			return
		}
		if err := export.ValidateOutputDir(req.OutputDir); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		srtURL, err := mediasync.DeriveSRTURL(req.MediaURL, cfg.SRTMapMode)
		if err != nil {
			if errors.Is(err, mediasync.ErrUnsupportedMedia) {
				WriteError(w, http.StatusBadRequest, err.Error(), "UNSUPPORTED_MEDIA")
			} else {
				WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			}
			return
		}

		text, err := cfg.Fetcher.FetchSRT(srtURL)
		if err != nil {
			WriteError(w, http.StatusBadGateway, "failed to fetch subtitles", "UPSTREAM_ERROR")
			return
		}

		cues := subtitle.ParseSRT(text)
		if len(cues) == 0 {
			WriteError(w, http.StatusUnprocessableEntity, "no caption cues for this media", "NO_CUES")
			return
		}

		projectName := export.SanitizeName(req.ProjectName, 120)
		if projectName == "" {
			projectName = "caption_glider_export"
		}

		frameRate := req.FrameRate
		if frameRate <= 0 {
			frameRate = 30.0
		}

		edl := export.GenerateCaptionEDL(cues, projectName, frameRate)
		outputPath := filepath.Join(req.OutputDir, projectName+".edl")
		if err := os.WriteFile(outputPath, []byte(edl), 0o644); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to write export file", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, export.ExportResponse{
			Status:     "ok",
			Format:     "edl",
			OutputPath: outputPath,
			CueCount:   len(cues),
			SRTURL:     srtURL,
		})
	}
}
