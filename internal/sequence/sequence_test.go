package sequence

import (
	"math"
	"testing"

	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/profile"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/script"
	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/subtitle"
)

func TestBuild_OrderAndPacing(t *testing.T) {
	segments := script.Parse([]string{
		"Opening line",
		"#B Second line [PAUSE=120]",
		"[HOLD=200]",
		"#C Third line **bold** word",
	}, script.DefaultProfile)

	lines := Build(segments, profile.NewRegistry(), DefaultOptions())
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	if lines[0].StartMs != 0 {
		t.Errorf("first line starts at %v, want 0", lines[0].StartMs)
	}

	// Pause delays the second line beyond the inter-line gap.
	gapOnly := lines[0].EndMs + DefaultOptions().GapMs
	if lines[1].StartMs != gapOnly+120 {
		t.Errorf("second line start = %v, want %v", lines[1].StartMs, gapOnly+120)
	}

	// Hold carried by the third segment extends its dwell.
	if lines[2].HoldMs != 200 {
		t.Errorf("third line hold = %v, want 200", lines[2].HoldMs)
	}

	for i := 1; i < len(lines); i++ {
		if lines[i].StartMs < lines[i-1].EndMs {
			t.Errorf("line %d overlaps predecessor", i)
		}
	}
}

func TestBuild_BreaksInsertGap(t *testing.T) {
	segments := []script.Segment{
		{Profile: "default", Text: "one"},
		{Profile: "default", Text: "two", Breaks: 2},
	}
	opts := DefaultOptions()

	lines := Build(segments, profile.NewRegistry(), opts)
	gap := lines[1].StartMs - lines[0].EndMs
	want := opts.GapMs + 2*opts.BreakGapMs
	if gap != want {
		t.Errorf("paragraph gap = %v, want %v", gap, want)
	}
}

func TestBuild_EnvelopesCoverLine(t *testing.T) {
	segments := []script.Segment{{Profile: "default", Text: "alpha beta gamma"}}
	lines := Build(segments, profile.NewRegistry(), DefaultOptions())

	l := lines[0]
	if len(l.Envelopes) != 3 {
		t.Fatalf("expected 3 envelopes, got %d", len(l.Envelopes))
	}
	dur := l.EndMs - l.StartMs
	if got := l.Envelopes[2].EndMs; math.Abs(got-dur) > 1e-6 {
		t.Errorf("last envelope end = %v, want line duration %v", got, dur)
	}
}

func TestBuildFromCues_CueTimingWins(t *testing.T) {
	segments := []script.Segment{
		{Profile: "default", Text: "Hello world"},
		{Profile: "B", Text: "Second line"},
	}
	cues := []subtitle.Cue{
		{StartMs: 1000, EndMs: 2500, Text: "Hello world"},
		{StartMs: 3000, EndMs: 4000, Text: "Second line"},
	}

	lines := BuildFromCues(segments, cues, profile.NewRegistry(), DefaultOptions())
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].StartMs != 1000 || lines[0].EndMs != 2500 {
		t.Errorf("first line window = [%v,%v]", lines[0].StartMs, lines[0].EndMs)
	}
	if lines[1].Profile.ID != "B" {
		t.Errorf("profile = %q, want B", lines[1].Profile.ID)
	}
	if got := lines[0].Envelopes[len(lines[0].Envelopes)-1].EndMs; math.Abs(got-1500) > 1e-6 {
		t.Errorf("envelopes not fitted to cue window: last end %v, want 1500", got)
	}
}

func TestBuildFromCues_LeftoverSegmentsContinue(t *testing.T) {
	segments := []script.Segment{
		{Profile: "default", Text: "covered"},
		{Profile: "default", Text: "uncovered tail"},
	}
	cues := []subtitle.Cue{{StartMs: 0, EndMs: 1000, Text: "covered"}}

	lines := BuildFromCues(segments, cues, profile.NewRegistry(), DefaultOptions())
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[1].StartMs <= lines[0].EndMs {
		t.Errorf("tail line must start after last cue: %v <= %v", lines[1].StartMs, lines[0].EndMs)
	}
}

func TestFromTranscript_KeepsWordTimestamps(t *testing.T) {
	words := []subtitle.TimedWord{
		{Text: "Hello", Start: 0.0, End: 0.5},
		{Text: "world", Start: 0.5, End: 1.0},
		{Text: "again", Start: 1.0, End: 1.5},
	}

	lines := FromTranscript(words, 12, profile.Default())
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %+v", len(lines), lines)
	}

	first := lines[0]
	if first.StartMs != 0 || first.EndMs != 1000 {
		t.Errorf("first line window = [%v,%v]", first.StartMs, first.EndMs)
	}
	if len(first.Envelopes) != 2 {
		t.Fatalf("first line envelopes = %d, want 2", len(first.Envelopes))
	}
	// Authoritative timing passes through, shifted to the line base.
	if first.Envelopes[1].StartMs != 500 || first.Envelopes[1].EndMs != 1000 {
		t.Errorf("second envelope = %+v", first.Envelopes[1])
	}

	second := lines[1]
	if second.StartMs != 1000 {
		t.Errorf("second line start = %v", second.StartMs)
	}
	if second.Envelopes[0].StartMs != 0 {
		t.Errorf("second line first envelope = %+v", second.Envelopes[0])
	}
}

func TestFromTranscript_Empty(t *testing.T) {
	if lines := FromTranscript(nil, 72, profile.Default()); lines != nil {
		t.Fatalf("FromTranscript(nil) = %+v", lines)
	}
}
