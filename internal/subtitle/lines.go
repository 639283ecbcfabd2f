package subtitle

import (
	"strings"
)

// TimedWord is one transcript word with absolute media timestamps in seconds,
// as produced by the speech collaborator.
type TimedWord struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Line is a caption line grouped from consecutive transcript words.
// Start and End are absolute media time in seconds.
type Line struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// BuildLines groups words into caption lines, starting a new line whenever
// appending the next word would exceed maxChars. Words with empty text are
// dropped. A line's window spans its first word's start to its last word's
// end.
func BuildLines(words []TimedWord, maxChars int) []Line {
	if maxChars <= 0 {
		maxChars = 72
	}

	var lines []Line
	var current []TimedWord
	var currentLen int

	flush := func() {
		if len(current) == 0 {
			return
		}
		parts := make([]string, len(current))
		for i, w := range current {
			parts[i] = w.Text
		}
		end := current[len(current)-1].End
		if end < current[0].Start {
			end = current[0].Start
		}
		lines = append(lines, Line{
			Text:  strings.TrimSpace(strings.Join(parts, " ")),
			Start: current[0].Start,
			End:   end,
		})
		current = nil
		currentLen = 0
	}

	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		tentative := currentLen + len(text)
		if len(current) > 0 {
			tentative++ // joining space
		}
		if len(current) > 0 && tentative > maxChars {
			flush()
			tentative = len(text)
		}
		current = append(current, TimedWord{Text: text, Start: w.Start, End: w.End})
		currentLen = tentative
	}
	flush()

	return lines
}

// LinesToCues converts second-based lines into millisecond cues.
func LinesToCues(lines []Line) []Cue {
	cues := make([]Cue, len(lines))
	for i, l := range lines {
		cues[i] = Cue{
			StartMs: int(l.Start*1000 + 0.5),
			EndMs:   int(l.End*1000 + 0.5),
			Text:    l.Text,
		}
	}
	return cues
}
