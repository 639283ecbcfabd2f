package timing

import "strings"

// PauseClass tags the pacing weight a token earns from its trailing
// punctuation. The classification is closed: exactly one class per token.
type PauseClass int

const (
	PauseNone PauseClass = iota
	PauseClause
	PauseSentence
	PauseDash
)

// trailing wrappers that may follow the punctuation itself, e.g. `word."` or
// `done!)`; stripped before classification.
const closingWrappers = "\"'”’)]}»"

// Classify returns the pause class for a token based on its final
// punctuation. Sentence terminals win over clause marks, and dash tokens
// (trailing hyphen or em/en dash) form their own class.
func Classify(token string) PauseClass {
	token = strings.TrimRight(token, closingWrappers)
	if token == "" {
		return PauseNone
	}

	runes := []rune(token)
	switch runes[len(runes)-1] {
	case '.', '!', '?', '…':
		return PauseSentence
	case ',', ';', ':':
		return PauseClause
	case '-', '–', '—':
		return PauseDash
	default:
		return PauseNone
	}
}
