// Package mediasync derives sidecar SRT locations for remote media and
// hands finished captions off to a companion media-sync service.
package mediasync

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/project"
)

const (
	// MapModeSideBySide swaps the media extension for .srt in place.
	MapModeSideBySide = "side_by_side"
	// MapModeCaptionsDir additionally rewrites ingest/ path segments to
	// the project's captions/ directory.
	MapModeCaptionsDir = "captions_dir"
)

var ErrUnsupportedMedia = errors.New("unsupported media extension")

var (
	ingestOriginalsRe = regexp.MustCompile(`(?i)/ingest/originals/`)
	ingestRe          = regexp.MustCompile(`(?i)/ingest/`)
)

// DeriveSRTURL maps a media URL to the URL of its sidecar SRT file.
// Query string and fragment are dropped.
func DeriveSRTURL(mediaURL, mode string) (string, error) {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return "", fmt.Errorf("invalid media url: %w", err)
	}
	u.RawQuery = ""
	u.Fragment = ""

	suffix := strings.ToLower(path.Ext(u.Path))
	if !project.VideoSuffixes[suffix] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, suffix)
	}
	suffixRe := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(suffix) + `$`)

	switch mode {
	case MapModeSideBySide:
		u.Path = suffixRe.ReplaceAllString(u.Path, ".srt")
	case MapModeCaptionsDir:
		p := ingestOriginalsRe.ReplaceAllString(u.Path, "/captions/")
		p = ingestRe.ReplaceAllString(p, "/captions/")
		u.Path = suffixRe.ReplaceAllString(p, ".srt")
	default:
		return "", fmt.Errorf("unknown SRT map mode: %s", mode)
	}
	return u.String(), nil
}

// Client talks to remote media hosts and the optional media-sync service.
type Client struct {
	baseURL string // media-sync base URL; "" disables handoff
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL string, fetchTimeout time.Duration, logger *slog.Logger) *Client {
	if fetchTimeout <= 0 {
		fetchTimeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: fetchTimeout},
		logger:  logger,
	}
}

// FetchSRT downloads SRT text from a URL. A 404 yields empty text rather
// than an error so callers can treat "no captions yet" as a normal state.
func (c *Client) FetchSRT(srtURL string) (string, error) {
	resp, err := c.http.Get(srtURL)
	if err != nil {
		return "", fmt.Errorf("failed fetching SRT: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed fetching SRT: status %d", resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return "", fmt.Errorf("failed reading SRT body: %w", err)
	}
	return buf.String(), nil
}

// NotifyImport posts finished caption paths to the media-sync service so
// it can queue a Resolve import. Failures are logged and swallowed; the
// handoff is best effort.
func (c *Client) NotifyImport(projectName string, payload any) {
	if c.baseURL == "" {
		return
	}
	u := fmt.Sprintf("%s/api/projects/%s/resolve/jobs/import-captions", c.baseURL, url.PathEscape(projectName))

	body, err := json.Marshal(payload)
	if err != nil {
		c.logger.Warn("media-sync handoff error", "error", err)
		return
	}

	resp, err := c.http.Post(u, "application/json", bytes.NewReader(body))
	if err != nil {
		c.logger.Warn("media-sync handoff error", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.logger.Warn("media-sync handoff failed", "status", resp.StatusCode)
	}
}
