package captions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/subtitle"
)

// WordsMeta is the meta block of the canonical words JSON artifact.
type WordsMeta struct {
	SHA256       string `json:"sha256"`
	VideoRelPath string `json:"video_rel_path"`
	ModelSize    string `json:"model_size,omitempty"`
	Language     string `json:"language,omitempty"`
}

type wordsPayload struct {
	Meta  WordsMeta            `json:"meta"`
	Words []subtitle.TimedWord `json:"words"`
}

// WriteWordsJSON persists the canonical words json artifact.
func WriteWordsJSON(path string, meta WordsMeta, words []subtitle.TimedWord) error {
	data, err := json.MarshalIndent(wordsPayload{Meta: meta, Words: words}, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// ReadWordsJSON loads a words artifact back.
func ReadWordsJSON(path string) (WordsMeta, []subtitle.TimedWord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WordsMeta{}, nil, err
	}
	var payload wordsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return WordsMeta{}, nil, fmt.Errorf("cannot parse words artifact: %w", err)
	}
	return payload.Meta, payload.Words, nil
}

// WriteLinesTxt writes one caption line of plain text per row.
func WriteLinesTxt(path string, lines []subtitle.Line) error {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(strings.TrimSpace(l.Text))
		b.WriteByte('\n')
	}
	return writeFile(path, []byte(b.String()))
}

// WriteSRTFile writes the lines as an SRT caption file.
func WriteSRTFile(path string, lines []subtitle.Line) error {
	return writeFile(path, []byte(subtitle.WriteSRT(subtitle.LinesToCues(lines))))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
