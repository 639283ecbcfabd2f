// Package profile defines the named pacing presets selectable from inline
// script directives. A profile bundles the timing allocator's pacing, the
// camera follow tuning and the reveal style under one id. Built-in presets
// ship with the binary; a YAML file can override or extend them.
package profile

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/camera"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/script"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/timing"
)

// Profile is one pacing/camera preset.
type Profile struct {
	ID          string        `yaml:"id" json:"id"`
	RevealStyle string        `yaml:"reveal_style" json:"reveal_style"`
	BaseLineMs  float64       `yaml:"base_line_ms" json:"base_line_ms"`
	PerCharMs   float64       `yaml:"per_char_ms" json:"per_char_ms"`
	Timing      timing.Config `yaml:"timing" json:"timing"`
	Camera      camera.Config `yaml:"camera" json:"camera"`
}

// LineDurationMs estimates how long an untimed line should stay up.
func (p Profile) LineDurationMs(text string) float64 {
	return p.BaseLineMs + p.PerCharMs*float64(len(text))
}

// Registry resolves profile ids to presets. Lookup is forgiving: unknown
// ids fall back to the default profile, matching the parser's policy of
// never failing on author input. Safe for concurrent use; LoadFile may run
// from a file-watch goroutine while handlers read.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// Default returns the stock preset used when no directive has been seen.
func Default() Profile {
	return Profile{
		ID:          script.DefaultProfile,
		RevealStyle: "glide",
		BaseLineMs:  900,
		PerCharMs:   55,
		Timing:      timing.DefaultConfig(),
		Camera:      camera.DefaultConfig(),
	}
}

// NewRegistry builds a registry with the built-in presets.
func NewRegistry() *Registry {
	r := &Registry{profiles: map[string]Profile{}}
	for _, p := range builtins() {
		r.profiles[p.ID] = p
	}
	return r
}

func builtins() []Profile {
	def := Default()

	calm := def
	calm.ID = "calm"
	calm.RevealStyle = "fade"
	calm.PerCharMs = 70
	calm.Timing.SentencePauseMs = 380
	calm.Camera.FollowLambda = 4
	calm.Camera.AimLambda = 7
	calm.Camera.LookAhead = 0.2

	punchy := def
	punchy.ID = "punchy"
	punchy.RevealStyle = "pop"
	punchy.PerCharMs = 42
	punchy.Timing.OverlapFrac = 0.05
	punchy.Camera.FollowLambda = 9
	punchy.Camera.AimLambda = 14
	punchy.Camera.LookAhead = 0.5

	// Single-letter author shorthand used by inline directives.
	b := punchy
	b.ID = "B"
	c := calm
	c.ID = "C"

	return []Profile{def, calm, punchy, b, c}
}

// Lookup returns the preset for id, or the default preset when id is
// unknown or empty.
func (r *Registry) Lookup(id string) Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.profiles[id]; ok {
		return p
	}
	return r.profiles[script.DefaultProfile]
}

// IDs returns the registered profile ids.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	return ids
}

// Register adds or replaces a preset.
func (r *Registry) Register(p Profile) {
	if p.ID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID] = p
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadFile merges presets from a YAML file into the registry. Presets in
// the file override built-ins with the same id. A missing file is not an
// error; the built-ins stand.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read profiles file: %w", err)
	}

	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("parse profiles file %s: %w", path, err)
	}

	def := Default()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pf.Profiles {
		if p.ID == "" {
			continue
		}
		// Fill unset numeric knobs from the default preset so a user
		// file only needs to name what it changes.
		if p.BaseLineMs == 0 {
			p.BaseLineMs = def.BaseLineMs
		}
		if p.PerCharMs == 0 {
			p.PerCharMs = def.PerCharMs
		}
		if p.RevealStyle == "" {
			p.RevealStyle = def.RevealStyle
		}
		if p.Timing == (timing.Config{}) {
			p.Timing = def.Timing
		}
		if p.Camera == (camera.Config{}) {
			p.Camera = def.Camera
		}
		r.profiles[p.ID] = p
	}
	return nil
}
