// Package script parses the inline caption scripting language: plain text
// lines with bracketed pacing tokens ([PAUSE=ms], [HOLD=ms], [BREAK],
// [BREAK=n]) and #-prefixed profile directives. Parsing is forgiving by
// design: malformed tokens stay in the text as literals and nothing here
// ever returns an error.
package script

import (
	"strings"
)

// DefaultProfile is the sentinel profile active before any directive.
const DefaultProfile = "default"

// Deltas accumulates the pacing adjustments stripped from one or more lines.
type Deltas struct {
	PauseMs int
	HoldMs  int
	Breaks  int
}

// IsZero reports whether no pacing adjustment was collected.
func (d Deltas) IsZero() bool {
	return d.PauseMs == 0 && d.HoldMs == 0 && d.Breaks == 0
}

func (d Deltas) add(o Deltas) Deltas {
	return Deltas{
		PauseMs: d.PauseMs + o.PauseMs,
		HoldMs:  d.HoldMs + o.HoldMs,
		Breaks:  d.Breaks + o.Breaks,
	}
}

// Segment is one renderable caption line: cleaned text tagged with the
// profile active when it was emitted and the pacing deltas bound to it.
// Segments preserve source order and are immutable once emitted.
type Segment struct {
	Profile string `json:"profile"`
	Text    string `json:"text"`
	PauseMs int    `json:"pause_ms"`
	HoldMs  int    `json:"hold_ms"`
	Breaks  int    `json:"breaks"`
}

// NormalizeProfile canonicalizes a directive token: single-character tokens
// are upper-cased, longer tokens lower-cased, and an empty token maps to the
// default sentinel.
func NormalizeProfile(tok string) string {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return DefaultProfile
	}
	if len(tok) == 1 {
		return strings.ToUpper(tok)
	}
	return strings.ToLower(tok)
}

// Parse scans raw script lines in order and emits segments. The scan is a
// fold over (activeProfile, pendingDeltas): profile directives update the
// state without emitting, and pacing tokens on directive-only or token-only
// lines carry forward until the next line that produces visible text.
func Parse(lines []string, startProfile string) []Segment {
	active := startProfile
	if active == "" {
		active = DefaultProfile
	}

	var segments []Segment
	var pending Deltas

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			tok := line[1:]
			rest := ""
			if i := strings.IndexAny(tok, " \t"); i >= 0 {
				rest = strings.TrimSpace(tok[i+1:])
				tok = tok[:i]
			}
			active = NormalizeProfile(tok)
			line = rest
			if line == "" {
				continue
			}
		}

		text, d := StripControlTokens(line)
		if text == "" {
			// Token-only line: pacing binds forward to the next
			// rendered segment, never backward.
			pending = pending.add(d)
			continue
		}

		d = pending.add(d)
		segments = append(segments, Segment{
			Profile: active,
			Text:    text,
			PauseMs: d.PauseMs,
			HoldMs:  d.HoldMs,
			Breaks:  d.Breaks,
		})
		pending = Deltas{}
	}

	return segments
}
