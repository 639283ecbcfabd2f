package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/mediasync"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/subtitle"
)

// resolveSRT maps a media URL to its subtitle sibling and fetches the
// subtitle body. A missing subtitle comes back as an empty string, not an
// error, so callers can render "no captions" instead of failing.
func resolveSRT(cfg ServerConfig, w http.ResponseWriter, r *http.Request) (srtURL, text string, ok bool) {
	mediaURL := r.URL.Query().Get("media_url")
	if mediaURL == "" {
		WriteError(w, http.StatusBadRequest, "media_url is required", "BAD_REQUEST")
		return "", "", false
	}

	srtURL, err := mediasync.DeriveSRTURL(mediaURL, cfg.SRTMapMode)
	if err != nil {
		if errors.Is(err, mediasync.ErrUnsupportedMedia) {
			WriteError(w, http.StatusBadRequest, err.Error(), "UNSUPPORTED_MEDIA")
		} else {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		}
		return "", "", false
	}

	text, err = cfg.Fetcher.FetchSRT(srtURL)
	if err != nil {
		WriteError(w, http.StatusBadGateway, "failed to fetch subtitles", "UPSTREAM_ERROR")
		return "", "", false
	}

	w.Header().Set("X-SRT-URL", srtURL)
	w.Header().Set("Cache-Control", "no-store")
	return srtURL, text, true
}

func srtHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, text, ok := resolveSRT(cfg, w, r)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(text))
	}
}

func cuesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		srtURL, text, ok := resolveSRT(cfg, w, r)
		if !ok {
			return
		}

		cues := subtitle.ParseSRT(text)
		if cues == nil {
			cues = []subtitle.Cue{}
		}

		WriteJSON(w, http.StatusOK, CuesResponse{
			MediaURL: r.URL.Query().Get("media_url"),
			SRTURL:   srtURL,
			Cues:     cues,
		})
	}
}

func activeCueHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tMs, err := strconv.Atoi(r.URL.Query().Get("t_ms"))
		if err != nil || tMs < 0 {
			WriteError(w, http.StatusBadRequest, "t_ms must be a non-negative integer", "BAD_REQUEST")
			return
		}

		_, text, ok := resolveSRT(cfg, w, r)
		if !ok {
			return
		}

		cues := subtitle.ParseSRT(text)
		WriteJSON(w, http.StatusOK, ActiveCueResponse{
			TMs: tMs,
			Cue: subtitle.ActiveAt(cues, tMs),
		})
	}
}
