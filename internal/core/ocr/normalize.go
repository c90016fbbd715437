package ocr

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reMultiSpace = regexp.MustCompile(`\s+`)
	yoReplacer   = strings.NewReplacer("ё", "е", "Ё", "е")
)

// NormalizeLabel prepares text for vocabulary matching: NFC composition,
// lower case, "ё" folded to "е" and whitespace runs collapsed to one space.
func NormalizeLabel(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFC.String(s)
	s = strings.ToLower(s)
	s = yoReplacer.Replace(s)
	s = reMultiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
