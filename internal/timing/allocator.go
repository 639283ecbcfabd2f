// Package timing turns a caption line plus a time budget into per-word
// display envelopes. Two paths exist: synthesizing envelopes from weighted
// text length when no transcript is available, and shifting already
// timestamped words into a line-local base when one is. Both produce the
// same Envelope shape so the reveal stage has a single consumer.
package timing

import (
	"strings"
	"unicode"
)

// Envelope is one word's visible time window, in milliseconds relative to
// the line start.
type Envelope struct {
	Text    string  `json:"text"`
	StartMs float64 `json:"startMs"`
	EndMs   float64 `json:"endMs"`
}

// Word is an externally timestamped word in absolute milliseconds.
type Word struct {
	Text    string  `json:"text"`
	StartMs float64 `json:"startMs"`
	EndMs   float64 `json:"endMs"`
}

// Config holds the pacing knobs for the untimed allocation path.
type Config struct {
	// Extra nominal duration added per punctuation class.
	SentencePauseMs float64 `yaml:"sentence_pause_ms" json:"sentence_pause_ms"`
	ClausePauseMs   float64 `yaml:"clause_pause_ms" json:"clause_pause_ms"`
	DashPauseMs     float64 `yaml:"dash_pause_ms" json:"dash_pause_ms"`

	// Clamp band applied to each word after rescaling.
	MinWordMs float64 `yaml:"min_word_ms" json:"min_word_ms"`
	MaxWordMs float64 `yaml:"max_word_ms" json:"max_word_ms"`

	// OverlapFrac lets a word fade in before its predecessor ends,
	// as a fraction of the word's own duration. 0 disables blending.
	OverlapFrac float64 `yaml:"overlap_frac" json:"overlap_frac"`
}

// DefaultConfig returns the stock pacing used when no profile overrides it.
func DefaultConfig() Config {
	return Config{
		SentencePauseMs: 260,
		ClausePauseMs:   120,
		DashPauseMs:     180,
		MinWordMs:       90,
		MaxWordMs:       1400,
		OverlapFrac:     0.15,
	}
}

// Allocate distributes [startMs, endMs] across the whitespace-separated
// words of text. Weights are alphanumeric character counts (minimum 1),
// punctuation classes add their configured extra, and a duration-conserving
// rescale plus a final corrective pass guarantee that the first envelope
// starts exactly at 0 and the last ends exactly at endMs-startMs.
//
// Degenerate inputs never fail: empty text yields nil, a non-positive
// duration yields zero-length envelopes.
func Allocate(text string, startMs, endMs float64, cfg Config) []Envelope {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	duration := endMs - startMs
	if duration <= 0 {
		envs := make([]Envelope, len(tokens))
		for i, tok := range tokens {
			envs[i] = Envelope{Text: tok, StartMs: 0, EndMs: 0}
		}
		return envs
	}

	// Nominal durations: proportional share plus punctuation pause.
	weights := make([]float64, len(tokens))
	var totalWeight float64
	for i, tok := range tokens {
		weights[i] = float64(alnumCount(tok))
		totalWeight += weights[i]
	}

	nominal := make([]float64, len(tokens))
	var rawSum float64
	for i, tok := range tokens {
		d := weights[i] / totalWeight * duration
		switch Classify(tok) {
		case PauseSentence:
			d += cfg.SentencePauseMs
		case PauseClause:
			d += cfg.ClausePauseMs
		case PauseDash:
			d += cfg.DashPauseMs
		}
		nominal[i] = d
		rawSum += d
	}

	// Conserve the authoritative line length, then clamp per word.
	scale := duration / rawSum
	for i := range nominal {
		nominal[i] = clamp(nominal[i]*scale, cfg.MinWordMs, cfg.MaxWordMs)
	}

	// Lay out the cumulative cursor with overlap blending.
	envs := make([]Envelope, len(tokens))
	cursor := 0.0
	for i, tok := range tokens {
		start := cursor
		if i > 0 && cfg.OverlapFrac > 0 {
			start = cursor - cfg.OverlapFrac*nominal[i]
			if start < envs[i-1].StartMs {
				start = envs[i-1].StartMs
			}
		}
		cursor += nominal[i]
		envs[i] = Envelope{Text: tok, StartMs: start, EndMs: cursor}
	}

	// Clamping and overlap may have drifted the cursor off the line end;
	// one corrective rescale pins the final envelope exactly.
	if last := envs[len(envs)-1].EndMs; last > 0 && last != duration {
		factor := duration / last
		for i := range envs {
			envs[i].StartMs *= factor
			envs[i].EndMs *= factor
		}
	}
	envs[0].StartMs = 0
	envs[len(envs)-1].EndMs = duration

	return envs
}

// FromWords shifts pre-timed words into the line-local time base. Timing is
// already authoritative, so no pacing is reapplied; this path exists so a
// transcript-driven line and a scripted fallback line feed the same
// downstream consumer.
func FromWords(words []Word, lineStartMs float64) []Envelope {
	if len(words) == 0 {
		return nil
	}
	envs := make([]Envelope, len(words))
	for i, w := range words {
		envs[i] = Envelope{
			Text:    w.Text,
			StartMs: w.StartMs - lineStartMs,
			EndMs:   w.EndMs - lineStartMs,
		}
	}
	return envs
}

func alnumCount(tok string) int {
	n := 0
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	if lo > 0 && v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}
