package nlu

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minInputLength = 5
	maxInputLength = 2000
)

var spaceRegexp = regexp.MustCompile(`\s+`)

// SanitizeInput trims and collapses whitespace, then checks the request
// text is usable before it is sent to the reasoning service.
func SanitizeInput(input string) (string, error) {
	input = strings.TrimSpace(input)
	input = spaceRegexp.ReplaceAllString(input, " ")

	if input == "" {
		return "", errors.New("request is empty")
	}
	if len(input) < minInputLength {
		return "", fmt.Errorf("request too short: minimum %d characters", minInputLength)
	}
	if len(input) > maxInputLength {
		return "", fmt.Errorf("request too long: maximum %d characters", maxInputLength)
	}
	if !utf8.ValidString(input) {
		return "", errors.New("invalid UTF-8 encoding")
	}
	return input, nil
}
