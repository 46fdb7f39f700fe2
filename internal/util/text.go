package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

var (
	reSpaces      = regexp.MustCompile(`\s+`)
	reUnsafeFile  = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]+`)
	reUnsafeSheet = regexp.MustCompile(`[\\/:*?\[\]]+`)
)

const MaxSheetNameLen = 31

func NormalizeSpaces(input string) string {
	s := strings.ReplaceAll(input, "\u00A0", " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// FoldKey returns the comparison key used for headers, branches and brands:
// whitespace collapsed and Unicode case folded.
func FoldKey(input string) string {
	return cases.Fold().String(NormalizeSpaces(input))
}

func EqualFold(a, b string) bool {
	return FoldKey(a) == FoldKey(b)
}

// Words splits on anything that is not a letter or a digit.
func Words(input string) []string {
	return strings.FieldsFunc(input, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func CountLetters(input string) int {
	n := 0
	for _, r := range input {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

// SafeFileName keeps the branch readable in a file name: spaces become
// underscores and path separators or reserved characters are dropped.
func SafeFileName(input, fallback string) string {
	s := NormalizeSpaces(input)
	s = reUnsafeFile.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.Trim(s, "._")
	if s == "" {
		return fallback
	}
	return s
}

// SheetName applies the workbook rules for tab names: no reserved
// characters, no leading or trailing apostrophe, at most 31 characters.
func SheetName(input, fallback string) string {
	s := NormalizeSpaces(input)
	s = reUnsafeSheet.ReplaceAllString(s, "_")
	s = strings.Trim(s, "'")
	if s == "" {
		s = fallback
	}
	return TruncateRunes(s, MaxSheetNameLen)
}

func TruncateRunes(input string, max int) string {
	r := []rune(input)
	if len(r) <= max {
		return input
	}
	return string(r[:max])
}

func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
