package subtitle

import "testing"

func TestBuildLines_GroupsByMaxChars(t *testing.T) {
	words := []TimedWord{
		{Text: "Hello", Start: 0.0, End: 0.5},
		{Text: "world", Start: 0.5, End: 1.0},
		{Text: "again", Start: 1.0, End: 1.5},
	}

	lines := BuildLines(words, 12)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %+v", len(lines), lines)
	}
	if lines[0].Text != "Hello world" {
		t.Errorf("first line = %q", lines[0].Text)
	}
	if lines[0].Start != 0.0 || lines[0].End != 1.0 {
		t.Errorf("first line window = [%v,%v]", lines[0].Start, lines[0].End)
	}
	if lines[1].Text != "again" || lines[1].Start != 1.0 || lines[1].End != 1.5 {
		t.Errorf("second line = %+v", lines[1])
	}
}

func TestBuildLines_SingleLineWhenItFits(t *testing.T) {
	words := []TimedWord{
		{Text: "a", Start: 0, End: 1},
		{Text: "b", Start: 1, End: 2},
	}
	lines := BuildLines(words, 72)
	if len(lines) != 1 || lines[0].Text != "a b" {
		t.Fatalf("BuildLines = %+v", lines)
	}
}

func TestBuildLines_DropsEmptyWords(t *testing.T) {
	words := []TimedWord{
		{Text: "  ", Start: 0, End: 1},
		{Text: "kept", Start: 1, End: 2},
		{Text: "", Start: 2, End: 3},
	}
	lines := BuildLines(words, 72)
	if len(lines) != 1 || lines[0].Text != "kept" {
		t.Fatalf("BuildLines = %+v", lines)
	}
}

func TestBuildLines_NoWords(t *testing.T) {
	if lines := BuildLines(nil, 72); lines != nil {
		t.Fatalf("BuildLines(nil) = %+v, want nil", lines)
	}
}

func TestBuildLines_OverlongSingleWord(t *testing.T) {
	words := []TimedWord{{Text: "supercalifragilistic", Start: 0, End: 1}}
	lines := BuildLines(words, 5)
	if len(lines) != 1 || lines[0].Text != "supercalifragilistic" {
		t.Fatalf("BuildLines = %+v", lines)
	}
}

func TestLinesToCues(t *testing.T) {
	cues := LinesToCues([]Line{{Text: "hi", Start: 1.0005, End: 2.5}})
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue")
	}
	if cues[0].StartMs != 1001 || cues[0].EndMs != 2500 {
		t.Errorf("cue = %+v", cues[0])
	}
}
