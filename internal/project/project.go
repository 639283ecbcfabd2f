// Package project handles project browsing and safe path resolution.
// Every path that arrives from a client is relative to a project root;
// this package is the single place that validates them.
package project

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	ErrInvalidPath     = errors.New("invalid path")
	ErrProjectNotFound = errors.New("project not found")
	ErrNotAllowed      = errors.New("directory not allowed")
)

// AllowedServeRoots lists the top-level project directories files may be
// served from.
var AllowedServeRoots = map[string]bool{
	"captions":     true,
	"ingest":       true,
	"exports":      true,
	"resolve":      true,
	"teleprompter": true,
	"_manifest":    true,
}

// VideoSuffixes lists recognised video file extensions (lowercase).
var VideoSuffixes = map[string]bool{
	".mp4": true,
	".mov": true,
	".mkv": true,
	".m4v": true,
	".avi": true,
}

var demoLinesPattern = regexp.MustCompile(`^demo-lines[\w-]*\.txt$`)

// EnsureRelativePath validates a client-supplied relative path and returns
// it in cleaned, forward-slash form. Absolute paths and traversal are
// rejected.
func EnsureRelativePath(rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return "", fmt.Errorf("%w: path is required", ErrInvalidPath)
	}
	rel = strings.ReplaceAll(rel, "\\", "/")
	if path.IsAbs(rel) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: absolute paths are not allowed", ErrInvalidPath)
	}
	for _, part := range strings.Split(rel, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: path traversal is not allowed", ErrInvalidPath)
		}
	}
	cleaned := path.Clean(rel)
	if cleaned == "." || cleaned == "" {
		return "", fmt.Errorf("%w: empty path not allowed", ErrInvalidPath)
	}
	return cleaned, nil
}

// EnsureAllowedRelative validates a relative path and requires its first
// segment to be an allowlisted serve root.
func EnsureAllowedRelative(rel string) (string, error) {
	cleaned, err := EnsureRelativePath(rel)
	if err != nil {
		return "", err
	}
	first := cleaned
	if i := strings.IndexByte(cleaned, '/'); i >= 0 {
		first = cleaned[:i]
	}
	if !AllowedServeRoots[first] {
		return "", fmt.Errorf("%w: %s", ErrNotAllowed, first)
	}
	return cleaned, nil
}

// ResolveProjectRoot resolves and validates an existing project directory
// under projectsRoot.
func ResolveProjectRoot(projectsRoot, project string) (string, error) {
	name := strings.Trim(project, "/\\")
	safe, err := EnsureRelativePath(name)
	if err != nil {
		return "", err
	}
	root := filepath.Join(projectsRoot, filepath.FromSlash(safe))

	rel, err := filepath.Rel(projectsRoot, root)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: project path outside root", ErrInvalidPath)
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return "", ErrProjectNotFound
	}
	return root, nil
}

// ListProjects returns the project directory names under projectsRoot,
// skipping hidden entries.
func ListProjects(projectsRoot string) ([]string, error) {
	entries, err := os.ReadDir(projectsRoot)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ListProjectVideos walks the project's ingest/ tree and returns
// project-relative paths of video files, sorted.
func ListProjectVideos(projectRoot string) ([]string, error) {
	ingestDir := filepath.Join(projectRoot, "ingest")
	if _, err := os.Stat(ingestDir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	var results []string
	err := filepath.WalkDir(ingestDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsVideoFile(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(projectRoot, p)
		if err != nil {
			return err
		}
		results = append(results, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(results)
	return results, nil
}

// IsVideoFile reports whether the filename has a recognised video extension.
func IsVideoFile(filename string) bool {
	return VideoSuffixes[strings.ToLower(filepath.Ext(filename))]
}

// ComputeSHA256 streams the file and returns its hex SHA-256 digest.
func ComputeSHA256(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// CaptionPaths names the caption artifact files for one video, all
// relative to the project root.
type CaptionPaths struct {
	SHA256       string `json:"sha256"`
	VideoRelPath string `json:"video_rel_path"`
	WordsRelPath string `json:"words_rel_path"`
	LinesRelPath string `json:"lines_rel_path"`
	SRTRelPath   string `json:"srt_rel_path"`
}

// ResolveCaptionPaths derives artifact paths for a video from its content
// hash. Artifacts live in captions/ and embed the first ten hex digits of
// the hash so stale captions never masquerade as current ones.
func ResolveCaptionPaths(videoRel, sha string) (*CaptionPaths, error) {
	safe, err := EnsureRelativePath(videoRel)
	if err != nil {
		return nil, err
	}
	sha10 := sha
	if len(sha10) > 10 {
		sha10 = sha10[:10]
	}
	stem := strings.TrimSuffix(path.Base(safe), path.Ext(safe))
	base := stem + "__" + sha10
	return &CaptionPaths{
		SHA256:       sha,
		VideoRelPath: safe,
		WordsRelPath: path.Join("captions", base+".words.json"),
		LinesRelPath: path.Join("captions", base+".lines.txt"),
		SRTRelPath:   path.Join("captions", base+".srt"),
	}, nil
}

// FindCaptionArtifacts returns the artifact paths for a video if all three
// artifact files exist on disk, or nil when any is missing.
func FindCaptionArtifacts(projectRoot, videoRel, sha string) (*CaptionPaths, error) {
	paths, err := ResolveCaptionPaths(videoRel, sha)
	if err != nil {
		return nil, err
	}
	for _, rel := range []string{paths.WordsRelPath, paths.LinesRelPath, paths.SRTRelPath} {
		if _, err := os.Stat(filepath.Join(projectRoot, filepath.FromSlash(rel))); err != nil {
			return nil, nil
		}
	}
	return paths, nil
}

// ResolveDemoLinesPath validates a demo-lines filename and resolves it
// under the public directory.
func ResolveDemoLinesPath(publicDir, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: demo lines name required", ErrInvalidPath)
	}
	if !demoLinesPattern.MatchString(name) {
		return "", fmt.Errorf("%w: invalid demo lines filename", ErrInvalidPath)
	}
	return filepath.Join(publicDir, name), nil
}

// ListDemoLinesFiles returns sorted demo-lines*.txt files from the public
// directory.
func ListDemoLinesFiles(publicDir string) []string {
	entries, err := os.ReadDir(publicDir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && demoLinesPattern.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}
