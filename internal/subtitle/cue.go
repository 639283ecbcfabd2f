// Package subtitle reads and writes SRT caption tracks and groups
// word-level transcripts into caption lines. The parser is deliberately
// forgiving: malformed blocks are skipped, never fatal, so an externally
// authored track can always be loaded partially.
package subtitle

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Cue is one time-coded caption entry. StartMs <= EndMs.
type Cue struct {
	StartMs int    `json:"startMs"`
	EndMs   int    `json:"endMs"`
	Text    string `json:"text"`
}

var (
	timingRe = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2},\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2},\d{3})`)
	blockRe  = regexp.MustCompile(`\n{2,}`)
)

// ParseSRT parses SRT text into cues sorted ascending by start time.
// It tolerates a leading BOM, Windows/Unix line endings, out-of-order
// blocks and missing index lines. Blocks whose timing line does not match
// the expected pattern are skipped silently.
func ParseSRT(text string) []Cue {
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var cues []Cue
	for _, block := range blockRe.Split(text, -1) {
		block = strings.Trim(block, "\n")
		if strings.TrimSpace(block) == "" {
			continue
		}
		lines := strings.Split(block, "\n")

		idxLine := strings.TrimSpace(lines[0])
		hasIndex := isDigits(idxLine)
		timing := idxLine
		if hasIndex {
			if len(lines) < 2 {
				continue
			}
			timing = strings.TrimSpace(lines[1])
		}

		m := timingRe.FindStringSubmatch(timing)
		if m == nil {
			continue
		}

		startMs, err1 := ParseTimestamp(m[1])
		endMs, err2 := ParseTimestamp(m[2])
		if err1 != nil || err2 != nil {
			continue
		}

		textStart := 1
		if hasIndex {
			textStart = 2
		}
		var captionLines []string
		for _, l := range lines[textStart:] {
			if strings.TrimSpace(l) != "" {
				captionLines = append(captionLines, strings.TrimRight(l, " \t"))
			}
		}

		cues = append(cues, Cue{
			StartMs: startMs,
			EndMs:   endMs,
			Text:    strings.Join(captionLines, "\n"),
		})
	}

	sort.SliceStable(cues, func(i, j int) bool {
		return cues[i].StartMs < cues[j].StartMs
	})
	return cues
}

// ParseTimestamp converts an SRT timestamp (HH:MM:SS,mmm) to milliseconds.
func ParseTimestamp(ts string) (int, error) {
	var hh, mm, ss, ms int
	if _, err := fmt.Sscanf(ts, "%02d:%02d:%02d,%03d", &hh, &mm, &ss, &ms); err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", ts, err)
	}
	return ((hh*60+mm)*60+ss)*1000 + ms, nil
}

// FormatTimestamp renders milliseconds as an SRT timestamp. It is the exact
// inverse of ParseTimestamp for non-negative inputs under 100 hours.
func FormatTimestamp(ms int) string {
	if ms < 0 {
		ms = 0
	}
	hrs := ms / 3600000
	rem := ms % 3600000
	mins := rem / 60000
	rem %= 60000
	secs := rem / 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hrs, mins, secs, rem%1000)
}

// WriteSRT renders cues back to SRT block text with 1-based indices.
// WriteSRT(ParseSRT(x)) reproduces the time values of x exactly.
func WriteSRT(cues []Cue) string {
	var sb strings.Builder
	for i, cue := range cues {
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n",
			i+1, FormatTimestamp(cue.StartMs), FormatTimestamp(cue.EndMs), cue.Text)
	}
	return sb.String()
}

// ActiveAt returns the first cue whose window contains tMs, or nil.
func ActiveAt(cues []Cue, tMs int) *Cue {
	for i := range cues {
		if cues[i].StartMs <= tMs && tMs <= cues[i].EndMs {
			return &cues[i]
		}
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil && !strings.ContainsAny(s, "+-")
}
