// Package sequence turns parsed script segments into an absolute playback
// schedule and hands each scheduled line its word envelopes. Segment order
// is preserved; when a cue track is supplied its timing is authoritative
// and the script's own duration heuristic is bypassed.
package sequence

import (
	"strings"

	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/profile"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/script"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/subtitle"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/timing"
)

// Line is one scheduled caption line with its resolved profile, absolute
// window and per-word envelopes (line-local milliseconds).
type Line struct {
	Segment   script.Segment    `json:"segment"`
	StartMs   float64           `json:"startMs"`
	EndMs     float64           `json:"endMs"`
	HoldMs    float64           `json:"holdMs"`
	Profile   profile.Profile   `json:"profile"`
	Envelopes []timing.Envelope `json:"envelopes"`
}

// Options tunes the scheduler.
type Options struct {
	// BreakGapMs is the gap inserted per paragraph break.
	BreakGapMs float64
	// GapMs is the default breathing room between consecutive lines.
	GapMs float64
}

// DefaultOptions returns the stock scheduling gaps.
func DefaultOptions() Options {
	return Options{BreakGapMs: 650, GapMs: 120}
}

// Build schedules segments sequentially. Each segment's pause delays its
// start, holds extend its on-screen time after the words finish, and
// paragraph breaks insert larger gaps. Envelopes are allocated from the
// segment's profile pacing.
func Build(segments []script.Segment, reg *profile.Registry, opts Options) []Line {
	var lines []Line
	cursor := 0.0

	for i, seg := range segments {
		prof := reg.Lookup(seg.Profile)

		if i > 0 {
			cursor += opts.GapMs
		}
		cursor += float64(seg.Breaks) * opts.BreakGapMs
		cursor += float64(seg.PauseMs)

		dur := prof.LineDurationMs(seg.Text)
		line := Line{
			Segment:   seg,
			StartMs:   cursor,
			EndMs:     cursor + dur,
			HoldMs:    float64(seg.HoldMs),
			Profile:   prof,
			Envelopes: timing.Allocate(seg.Text, 0, dur, prof.Timing),
		}
		lines = append(lines, line)
		cursor = line.EndMs + line.HoldMs
	}

	return lines
}

// BuildFromCues schedules segments against an externally time-coded track.
// Segments and cues are matched in order; cue timing wins over the duration
// heuristic, so an author-scripted line and a transcript cue share the same
// downstream shape. Leftover segments (more script than cues) continue past
// the last cue with synthesized durations; leftover cues are ignored.
func BuildFromCues(segments []script.Segment, cues []subtitle.Cue, reg *profile.Registry, opts Options) []Line {
	var lines []Line
	cursor := 0.0

	for i, seg := range segments {
		prof := reg.Lookup(seg.Profile)

		if i < len(cues) {
			cue := cues[i]
			start := float64(cue.StartMs) + float64(seg.PauseMs)
			end := float64(cue.EndMs)
			if start > end {
				start = end
			}
			lines = append(lines, Line{
				Segment:   seg,
				StartMs:   start,
				EndMs:     end,
				HoldMs:    float64(seg.HoldMs),
				Profile:   prof,
				Envelopes: timing.Allocate(seg.Text, 0, end-start, prof.Timing),
			})
			cursor = end + float64(seg.HoldMs)
			continue
		}

		cursor += opts.GapMs
		cursor += float64(seg.Breaks)*opts.BreakGapMs + float64(seg.PauseMs)
		dur := prof.LineDurationMs(seg.Text)
		lines = append(lines, Line{
			Segment:   seg,
			StartMs:   cursor,
			EndMs:     cursor + dur,
			HoldMs:    float64(seg.HoldMs),
			Profile:   prof,
			Envelopes: timing.Allocate(seg.Text, 0, dur, prof.Timing),
		})
		cursor += dur + float64(seg.HoldMs)
	}

	return lines
}

// FromTranscript schedules caption lines straight from a word-level
// transcript: lines are grouped by width and every envelope carries the
// transcript's own timestamps shifted into the line-local base.
func FromTranscript(words []subtitle.TimedWord, maxChars int, prof profile.Profile) []Line {
	grouped := subtitle.BuildLines(words, maxChars)
	if len(grouped) == 0 {
		return nil
	}

	// Re-walk the words per grouped line so each keeps its own timing.
	var lines []Line
	idx := 0
	for _, gl := range grouped {
		count := len(strings.Fields(gl.Text))
		lineWords := make([]timing.Word, 0, count)
		for i := 0; i < count && idx < len(words); idx++ {
			w := words[idx]
			if strings.TrimSpace(w.Text) == "" {
				continue
			}
			lineWords = append(lineWords, timing.Word{
				Text:    strings.TrimSpace(w.Text),
				StartMs: w.Start * 1000,
				EndMs:   w.End * 1000,
			})
			i++
		}

		startMs := gl.Start * 1000
		lines = append(lines, Line{
			Segment:   script.Segment{Profile: prof.ID, Text: gl.Text},
			StartMs:   startMs,
			EndMs:     gl.End * 1000,
			Profile:   prof,
			Envelopes: timing.FromWords(lineWords, startMs),
		})
	}
	return lines
}
