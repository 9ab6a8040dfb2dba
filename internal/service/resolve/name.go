package resolve

import "regexp"

// namePattern captures the token immediately following a self-introduction
// phrase. The token is a maximal run of characters that are neither
// whitespace nor sentence punctuation.
var namePattern = regexp.MustCompile(`(?i)(?:my name is|i am called)\s+([^\s.,;?!]+)`)

// ExtractName returns the first name introduced via "my name is X" or
// "I am called X". Pure function, never fails.
func ExtractName(input string) (string, bool) {
	match := namePattern.FindStringSubmatch(input)
	if match == nil {
		return "", false
	}
	return match[1], true
}
