// Package captions generates word-timed caption artifacts for project
// videos: a canonical words JSON, plain text lines, and an SRT file.
package captions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/media"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/mediasync"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/project"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/store"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/subtitle"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/transcribe"
)

// DefaultMaxChars is the line-grouping width used when a request does not
// specify one.
const DefaultMaxChars = 72

var (
	ErrVideoNotFound = errors.New("video not found")
	ErrNoWords       = errors.New("no words produced")
)

// Request describes one caption generation.
type Request struct {
	Project   string `json:"project"`
	VideoRel  string `json:"video_rel_path"`
	ModelSize string `json:"model_size"`
	MaxChars  int    `json:"max_chars"`
}

type Service struct {
	projectsRoot string
	repo         store.Repository
	ffmpeg       media.FFmpeg
	transcriber  transcribe.Transcriber
	sync         *mediasync.Client
	logger       *slog.Logger
}

func NewService(projectsRoot string, repo store.Repository, ffmpeg media.FFmpeg, transcriber transcribe.Transcriber, sync *mediasync.Client, logger *slog.Logger) *Service {
	return &Service{
		projectsRoot: projectsRoot,
		repo:         repo,
		ffmpeg:       ffmpeg,
		transcriber:  transcriber,
		sync:         sync,
		logger:       logger,
	}
}

// Lookup returns the artifact paths for a video if captions matching its
// current content hash exist, or nil when they need regenerating.
func (s *Service) Lookup(projectName, videoRel string) (*project.CaptionPaths, error) {
	root, err := project.ResolveProjectRoot(s.projectsRoot, projectName)
	if err != nil {
		return nil, err
	}
	rel, err := project.EnsureRelativePath(videoRel)
	if err != nil {
		return nil, err
	}
	videoPath := filepath.Join(root, filepath.FromSlash(rel))
	if info, err := os.Stat(videoPath); err != nil || info.IsDir() {
		return nil, ErrVideoNotFound
	}

	sha, err := project.ComputeSHA256(videoPath)
	if err != nil {
		return nil, err
	}
	return project.FindCaptionArtifacts(root, rel, sha)
}

// Generate transcribes a project video and writes its caption artifacts.
func (s *Service) Generate(ctx context.Context, req Request) (*project.CaptionPaths, error) {
	root, err := project.ResolveProjectRoot(s.projectsRoot, req.Project)
	if err != nil {
		return nil, err
	}
	rel, err := project.EnsureRelativePath(req.VideoRel)
	if err != nil {
		return nil, err
	}
	videoPath := filepath.Join(root, filepath.FromSlash(rel))
	if info, err := os.Stat(videoPath); err != nil || info.IsDir() {
		return nil, ErrVideoNotFound
	}

	sha, err := project.ComputeSHA256(videoPath)
	if err != nil {
		return nil, fmt.Errorf("cannot hash video: %w", err)
	}
	paths, err := project.ResolveCaptionPaths(rel, sha)
	if err != nil {
		return nil, err
	}

	log := s.logger.With("project", req.Project, "video", rel)

	// Scratch audio lives under _manifest/tmp so partial runs never
	// pollute captions/.
	stem := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	audioPath := filepath.Join(root, "_manifest", "tmp", fmt.Sprintf("%s__%s.wav", stem, sha[:10]))
	defer os.Remove(audioPath)

	if err := s.ffmpeg.ExtractAudio(ctx, videoPath, audioPath); err != nil {
		return nil, fmt.Errorf("audio extraction failed: %w", err)
	}

	speechOut := filepath.Join(root, "_manifest", "tmp", fmt.Sprintf("%s__%s.speech.json", stem, sha[:10]))
	defer os.Remove(speechOut)

	result, err := s.transcriber.Transcribe(ctx, audioPath, req.ModelSize, speechOut)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	if len(result.Words) == 0 {
		return nil, ErrNoWords
	}

	words := make([]subtitle.TimedWord, 0, len(result.Words))
	for _, w := range result.Words {
		words = append(words, subtitle.TimedWord{Text: w.Text, Start: w.Start, End: w.End})
	}

	maxChars := req.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	lines := subtitle.BuildLines(words, maxChars)

	meta := WordsMeta{SHA256: sha, VideoRelPath: rel, ModelSize: result.ModelSize, Language: result.Language}
	if err := WriteWordsJSON(filepath.Join(root, filepath.FromSlash(paths.WordsRelPath)), meta, words); err != nil {
		return nil, err
	}
	if err := WriteLinesTxt(filepath.Join(root, filepath.FromSlash(paths.LinesRelPath)), lines); err != nil {
		return nil, err
	}
	if err := WriteSRTFile(filepath.Join(root, filepath.FromSlash(paths.SRTRelPath)), lines); err != nil {
		return nil, err
	}

	s.recordArtifacts(ctx, req.Project, paths)

	if s.sync != nil {
		s.sync.NotifyImport(req.Project, map[string]any{
			"sha256":         sha,
			"srt_rel_path":   paths.SRTRelPath,
			"timeline":       nil,
			"subtitle_track": nil,
		})
	}

	log.Info("captions generated",
		"sha10", sha[:10],
		"words", len(words),
		"lines", len(lines),
	)
	return paths, nil
}

func (s *Service) recordArtifacts(ctx context.Context, projectName string, paths *project.CaptionPaths) {
	if s.repo == nil {
		return
	}
	now := time.Now().UTC()
	for kind, rel := range map[string]string{
		store.ArtifactWords: paths.WordsRelPath,
		store.ArtifactLines: paths.LinesRelPath,
		store.ArtifactSRT:   paths.SRTRelPath,
	} {
		a := &store.Artifact{
			Project:   projectName,
			VideoRel:  paths.VideoRelPath,
			SHA256:    paths.SHA256,
			Kind:      kind,
			RelPath:   rel,
			CreatedAt: now,
		}
		if err := s.repo.UpsertArtifact(ctx, a); err != nil {
			s.logger.Warn("failed to record artifact", "kind", kind, "error", err)
		}
	}
}
