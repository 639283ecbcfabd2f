package subtitle

import (
	"reflect"
	"testing"
)

func TestParseSRT_TwoBlocks(t *testing.T) {
	text := "1\n00:00:01,000 --> 00:00:02,500\nHello world\n\n2\n00:00:03,000 --> 00:00:04,000\nSecond line"

	got := ParseSRT(text)
	want := []Cue{
		{StartMs: 1000, EndMs: 2500, Text: "Hello world"},
		{StartMs: 3000, EndMs: 4000, Text: "Second line"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseSRT = %+v, want %+v", got, want)
	}
}

func TestParseSRT_SortsByStart(t *testing.T) {
	text := "2\n00:00:03,000 --> 00:00:04,000\nlater\n\n1\n00:00:01,000 --> 00:00:02,000\nearlier"

	got := ParseSRT(text)
	if len(got) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(got))
	}
	if got[0].Text != "earlier" || got[1].Text != "later" {
		t.Errorf("cues not sorted by start: %+v", got)
	}
}

func TestParseSRT_ToleratesBOMAndCRLF(t *testing.T) {
	text := "\uFEFF1\r\n00:00:00,000 --> 00:00:01,000\r\nHello\r\n"

	got := ParseSRT(text)
	if len(got) != 1 || got[0].Text != "Hello" || got[0].EndMs != 1000 {
		t.Fatalf("ParseSRT = %+v", got)
	}
}

func TestParseSRT_MissingIndexLine(t *testing.T) {
	text := "00:00:05,250 --> 00:00:06,000\nNo index here"

	got := ParseSRT(text)
	if len(got) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(got))
	}
	if got[0].StartMs != 5250 {
		t.Errorf("StartMs = %d, want 5250", got[0].StartMs)
	}
}

func TestParseSRT_SkipsMalformedBlocks(t *testing.T) {
	text := "1\nnot a timing line\ngarbage\n\n2\n00:00:01,000 --> 00:00:02,000\nsurvivor\n\njust noise"

	got := ParseSRT(text)
	if len(got) != 1 || got[0].Text != "survivor" {
		t.Fatalf("malformed blocks not skipped: %+v", got)
	}
}

func TestParseSRT_MultilineCueText(t *testing.T) {
	text := "1\n00:00:00,000 --> 00:00:01,000\nfirst row\nsecond row"

	got := ParseSRT(text)
	if len(got) != 1 || got[0].Text != "first row\nsecond row" {
		t.Fatalf("ParseSRT = %+v", got)
	}
}

func TestParseSRT_Empty(t *testing.T) {
	if got := ParseSRT(""); got != nil {
		t.Fatalf("ParseSRT(\"\") = %+v, want nil", got)
	}
	if got := ParseSRT("\uFEFF \n\n"); got != nil {
		t.Fatalf("whitespace input = %+v, want nil", got)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	cases := []string{
		"00:00:00,000",
		"00:00:01,001",
		"00:01:30,500",
		"01:02:03,999",
		"10:59:59,010",
	}
	for _, ts := range cases {
		ms, err := ParseTimestamp(ts)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", ts, err)
		}
		if got := FormatTimestamp(ms); got != ts {
			t.Errorf("round trip %q -> %d -> %q", ts, ms, got)
		}
	}
}

func TestWriteSRT_RoundTrip(t *testing.T) {
	cues := []Cue{
		{StartMs: 0, EndMs: 1000, Text: "Hello"},
		{StartMs: 2000, EndMs: 3000, Text: "World"},
	}

	if got := ParseSRT(WriteSRT(cues)); !reflect.DeepEqual(got, cues) {
		t.Fatalf("round trip = %+v, want %+v", got, cues)
	}
}

func TestActiveAt(t *testing.T) {
	cues := []Cue{
		{StartMs: 0, EndMs: 1000, Text: "a"},
		{StartMs: 2000, EndMs: 3000, Text: "b"},
	}

	if cue := ActiveAt(cues, 500); cue == nil || cue.Text != "a" {
		t.Errorf("ActiveAt(500) = %+v", cue)
	}
	if cue := ActiveAt(cues, 1000); cue == nil || cue.Text != "a" {
		t.Errorf("ActiveAt(1000) inclusive end = %+v", cue)
	}
	if cue := ActiveAt(cues, 1500); cue != nil {
		t.Errorf("ActiveAt(1500) = %+v, want nil", cue)
	}
}
