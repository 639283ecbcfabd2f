package transcribe

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestParseResult_Valid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "result.json")

	data := Result{
		Language:  "en",
		ModelSize: "small",
		Words: []Word{
			{Text: "hello", Start: 0.0, End: 0.4},
			{Text: "world", Start: 0.4, End: 0.9},
		},
	}
	b, _ := json.Marshal(data)
	os.WriteFile(path, b, 0644)

	res, err := ParseResult(path)
	if err != nil {
		t.Fatalf("ParseResult error: %v", err)
	}
	if len(res.Words) != 2 {
		t.Fatalf("words = %d, want 2", len(res.Words))
	}
	if res.Words[1].Text != "world" || res.Words[1].End != 0.9 {
		t.Errorf("word[1] = %+v", res.Words[1])
	}
}

func TestParseResult_MissingWords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "result.json")

	os.WriteFile(path, []byte(`{"language":"en"}`), 0644)

	if _, err := ParseResult(path); err == nil {
		t.Fatal("expected error for missing words field")
	}
}

func TestParseResult_FileNotFound(t *testing.T) {
	if _, err := ParseResult(filepath.Join(t.TempDir(), "nonexistent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLimitedWriter_KeepsOnlyTail(t *testing.T) {
	var buf bytes.Buffer
	lw := &limitedWriter{w: &buf, limit: 10}

	lw.Write([]byte("hello"))
	if buf.String() != "hello" {
		t.Errorf("after short write got %q, want %q", buf.String(), "hello")
	}

	lw.Write([]byte(" world of test data"))
	got := buf.String()
	if len(got) > 10 {
		t.Errorf("buffer length %d exceeds limit 10", len(got))
	}

	want := " test data"
	if got != want {
		t.Errorf("after overflow got %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 5, "...world"},
	}
	for _, tt := range tests {
		got := truncate(tt.input, tt.maxLen)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestResolvePython_PreferredNotFound(t *testing.T) {
	_, err := resolvePython("/nonexistent/python999")
	if err == nil {
		t.Fatal("expected error for nonexistent python")
	}
}
