package script

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	pauseRe = regexp.MustCompile(`\[PAUSE=(\d+)\]`)
	holdRe  = regexp.MustCompile(`\[HOLD=(\d+)\]`)
	breakRe = regexp.MustCompile(`\[BREAK(?:=(\d+))?\]`)
)

// StripControlTokens removes the three bracketed token families from a line,
// replacing each occurrence with a single space, and returns the trimmed
// remainder plus the summed pause, hold and break totals. Tokens that do not
// match the expected shape (e.g. [PAUSE], [PAUSE=abc]) are left in place as
// literal text. The function is stateless and never fails.
func StripControlTokens(line string) (string, Deltas) {
	var d Deltas

	line = pauseRe.ReplaceAllStringFunc(line, func(m string) string {
		ms, _ := strconv.Atoi(pauseRe.FindStringSubmatch(m)[1])
		d.PauseMs += ms
		return " "
	})

	line = holdRe.ReplaceAllStringFunc(line, func(m string) string {
		ms, _ := strconv.Atoi(holdRe.FindStringSubmatch(m)[1])
		d.HoldMs += ms
		return " "
	})

	line = breakRe.ReplaceAllStringFunc(line, func(m string) string {
		if sub := breakRe.FindStringSubmatch(m)[1]; sub != "" {
			n, _ := strconv.Atoi(sub)
			d.Breaks += n
		} else {
			d.Breaks++
		}
		return " "
	})

	return strings.Join(strings.Fields(line), " "), d
}
