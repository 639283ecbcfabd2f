package timing

import (
	"math"
	"strings"
	"testing"
)

const tol = 1e-6

func TestAllocate_TwoWordsCoverLine(t *testing.T) {
	envs := Allocate("Hello world", 0, 1000, DefaultConfig())
	if len(envs) != 2 {
		t.Fatalf("expected 2 envelopes, got %d", len(envs))
	}
	if envs[0].StartMs != 0 {
		t.Errorf("first start = %v, want 0", envs[0].StartMs)
	}
	if math.Abs(envs[1].EndMs-1000) > tol {
		t.Errorf("last end = %v, want exactly 1000", envs[1].EndMs)
	}
	if envs[0].Text != "Hello" || envs[1].Text != "world" {
		t.Errorf("texts = %q, %q", envs[0].Text, envs[1].Text)
	}
}

func TestAllocate_LastEndPinnedForManyDurations(t *testing.T) {
	cfg := DefaultConfig()
	text := "One two, three. Four — five six seven!"

	for _, dur := range []float64{137, 1000, 2400.5, 9999} {
		envs := Allocate(text, 0, dur, cfg)
		if len(envs) == 0 {
			t.Fatalf("no envelopes for duration %v", dur)
		}
		if envs[0].StartMs != 0 {
			t.Errorf("duration %v: first start = %v", dur, envs[0].StartMs)
		}
		if got := envs[len(envs)-1].EndMs; math.Abs(got-dur) > tol {
			t.Errorf("duration %v: last end = %v", dur, got)
		}
	}
}

func TestAllocate_MonotonicStarts(t *testing.T) {
	envs := Allocate("a bb ccc. dddd, e ff—", 0, 1500, DefaultConfig())
	for i := 1; i < len(envs); i++ {
		if envs[i].StartMs < envs[i-1].StartMs {
			t.Fatalf("starts not monotonic at %d: %v < %v", i, envs[i].StartMs, envs[i-1].StartMs)
		}
		if envs[i].EndMs > 1500+tol {
			t.Fatalf("envelope %d exceeds line end: %v", i, envs[i].EndMs)
		}
	}
}

func TestAllocate_OverlapMakesNeighborsCoexist(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OverlapFrac = 0.25
	envs := Allocate("alpha beta gamma", 0, 1200, cfg)

	for i := 1; i < len(envs); i++ {
		if envs[i].StartMs >= envs[i-1].EndMs {
			t.Errorf("word %d does not overlap its predecessor: start %v, prev end %v",
				i, envs[i].StartMs, envs[i-1].EndMs)
		}
	}
}

func TestAllocate_NoOverlapWhenDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OverlapFrac = 0
	envs := Allocate("alpha beta gamma", 0, 1200, cfg)

	for i := 1; i < len(envs); i++ {
		if math.Abs(envs[i].StartMs-envs[i-1].EndMs) > tol {
			t.Errorf("gap or overlap at %d: start %v, prev end %v", i, envs[i].StartMs, envs[i-1].EndMs)
		}
	}
}

func TestAllocate_PunctuationSlowsWord(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinWordMs = 0
	cfg.MaxWordMs = 0
	cfg.OverlapFrac = 0

	plain := Allocate("same word same", 0, 3000, cfg)
	punct := Allocate("same word. same", 0, 3000, cfg)

	plainDur := plain[1].EndMs - plain[1].StartMs
	punctDur := punct[1].EndMs - punct[1].StartMs
	if punctDur <= plainDur {
		t.Errorf("sentence-terminal word not slower: %v <= %v", punctDur, plainDur)
	}
}

func TestAllocate_ZeroDurationDegenerate(t *testing.T) {
	envs := Allocate("a b c", 500, 500, DefaultConfig())
	if len(envs) != 3 {
		t.Fatalf("expected 3 envelopes, got %d", len(envs))
	}
	for i, e := range envs {
		if e.StartMs != e.EndMs {
			t.Errorf("envelope %d not zero-length: %+v", i, e)
		}
	}
}

func TestAllocate_EmptyText(t *testing.T) {
	if envs := Allocate("   ", 0, 1000, DefaultConfig()); envs != nil {
		t.Fatalf("expected nil for empty text, got %+v", envs)
	}
}

func TestAllocate_SingleWord(t *testing.T) {
	envs := Allocate("solo", 0, 5000, DefaultConfig())
	if len(envs) != 1 {
		t.Fatalf("expected 1 envelope, got %d", len(envs))
	}
	if envs[0].StartMs != 0 || math.Abs(envs[0].EndMs-5000) > tol {
		t.Errorf("single word window = [%v,%v], want [0,5000]", envs[0].StartMs, envs[0].EndMs)
	}
}

func TestAllocate_LongerWordsGetMoreTime(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinWordMs = 0
	cfg.MaxWordMs = 0
	cfg.OverlapFrac = 0

	envs := Allocate("hi transcontinental", 0, 2000, cfg)
	short := envs[0].EndMs - envs[0].StartMs
	long := envs[1].EndMs - envs[1].StartMs
	if long <= short {
		t.Errorf("weighting broken: long %v <= short %v", long, short)
	}
}

func TestFromWords_ShiftsToLocalBase(t *testing.T) {
	words := []Word{
		{Text: "Hello", StartMs: 4000, EndMs: 4400},
		{Text: "world", StartMs: 4400, EndMs: 5000},
	}
	envs := FromWords(words, 4000)
	if envs[0].StartMs != 0 || envs[0].EndMs != 400 {
		t.Errorf("first envelope = %+v", envs[0])
	}
	if envs[1].StartMs != 400 || envs[1].EndMs != 1000 {
		t.Errorf("second envelope = %+v", envs[1])
	}
}

func TestFromWords_Empty(t *testing.T) {
	if envs := FromWords(nil, 0); envs != nil {
		t.Fatalf("FromWords(nil) = %+v", envs)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		tok  string
		want PauseClass
	}{
		{"word", PauseNone},
		{"end.", PauseSentence},
		{"really?!", PauseSentence},
		{"wait…", PauseSentence},
		{"so,", PauseClause},
		{"this;", PauseClause},
		{"note:", PauseClause},
		{"dash—", PauseDash},
		{"trailing-", PauseDash},
		{`quoted."`, PauseSentence},
		{"(done!)", PauseSentence},
		{`""`, PauseNone},
	}
	for _, tc := range tests {
		if got := Classify(tc.tok); got != tc.want {
			t.Errorf("Classify(%q) = %d, want %d", tc.tok, got, tc.want)
		}
	}
}

func TestAllocate_UnionReconstructsDuration(t *testing.T) {
	cfg := DefaultConfig()
	envs := Allocate(strings.Repeat("word ", 12), 0, 4000, cfg)

	// With overlap enabled each start is at or before the previous end,
	// so the union of windows is contiguous from 0 to the line end.
	for i := 1; i < len(envs); i++ {
		if envs[i].StartMs > envs[i-1].EndMs+tol {
			t.Fatalf("gap between envelope %d and %d", i-1, i)
		}
	}
	if envs[0].StartMs != 0 || math.Abs(envs[len(envs)-1].EndMs-4000) > tol {
		t.Fatalf("union does not span [0,4000]")
	}
}
