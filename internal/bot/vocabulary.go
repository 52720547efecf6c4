package bot

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// Vocabulary is the pool bots draw passwords and guesses from.
var Vocabulary = []string{
	"harbor", "lantern", "meadow", "copper", "violet", "thunder",
	"pepper", "falcon", "glacier", "marble", "orchid", "saddle",
}

// Describe lists every hint a bot could give about word, most general first.
func Describe(word string) []string {
	word = strings.ToLower(word)
	runes := []rune(word)
	if len(runes) == 0 {
		return nil
	}
	hints := []string{
		fmt.Sprintf("has %d letters", utf8.RuneCountInString(word)),
		fmt.Sprintf("starts with %c", runes[0]),
		fmt.Sprintf("ends with %c", runes[len(runes)-1]),
	}
	for i := 1; i < len(runes)-1; i++ {
		hints = append(hints, fmt.Sprintf("letter %d is %c", i+1, runes[i]))
	}
	return hints
}

// EntryFor builds a setup submission for word with n hints.
// Words too short to describe n ways are padded with repeated letter hints.
func EntryFor(word string, n int) ([]string, error) {
	all := Describe(word)
	if len(all) == 0 {
		return nil, fmt.Errorf("cannot describe empty word")
	}
	hints := make([]string, 0, n)
	for i := 0; len(hints) < n; i++ {
		hints = append(hints, all[i%len(all)])
	}
	return hints, nil
}

// Candidates returns the vocabulary words consistent with every given hint text.
func Candidates(vocabulary []string, hints []string) []string {
	out := []string{}
	for _, w := range vocabulary {
		described := Describe(w)
		ok := true
		for _, h := range hints {
			if !slices.Contains(described, h) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, w)
		}
	}
	return out
}
