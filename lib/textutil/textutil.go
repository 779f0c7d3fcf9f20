package textutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// CleanWhitespace collapses runs of whitespace into single spaces and
// trims the result.
func CleanWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

var slugStripRegex = regexp.MustCompile(`[^A-Za-z0-9\-_]`)

// Slug turns a meeting title into the identifier segment used in
// meeting ids: whitespace becomes underscores, anything outside
// [A-Za-z0-9-_] is dropped, and the result is lowercased.
func Slug(s string) string {
	underscored := whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), "_")
	return strings.ToLower(slugStripRegex.ReplaceAllString(underscored, ""))
}

func RemoveNonPrintable(s string) string {
	out := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			out.WriteRune(c)
		}
	}
	return out.String()
}

var longDateRegex = regexp.MustCompile(`[A-Z][a-z]{2,9}\.?\s+\d{1,2},?\s+\d{4}`)
var shortDateRegex = regexp.MustCompile(`\d{1,2}[\./-]\d{1,2}[\./-]\d{2,4}`)

// FindLongDate searches text for a date written out like
// "March 4, 2021" and parses it.
func FindLongDate(text string) (time.Time, bool) {
	match := longDateRegex.FindString(text)
	if match == "" {
		return time.Time{}, false
	}
	t, err := ParseLongDate(match)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FindDate matches either a written-out date or a numeric one like
// "3/4/2021" or "3-4-21".
func FindDate(text string) (time.Time, bool) {
	if t, ok := FindLongDate(text); ok {
		return t, true
	}
	match := shortDateRegex.FindString(text)
	if match == "" {
		return time.Time{}, false
	}
	parts := regexp.MustCompile(`[\./-]`).Split(match, -1)
	month, _ := strconv.Atoi(parts[0])
	day, _ := strconv.Atoi(parts[1])
	year, _ := strconv.Atoi(parts[2])
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// ParseLongDate parses dates like "March 4, 2021", "Mar. 4 2021".
func ParseLongDate(s string) (time.Time, error) {
	s = CleanWhitespace(strings.NewReplacer(",", "", ".", "").Replace(s))
	for _, layout := range []string{"January 2 2006", "Jan 2 2006"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %q", s)
}

var clockRegex = regexp.MustCompile(`(\d{1,2})(?::(\d{2}))?\s*([apAP])\.?\s?[mM]\.?`)

// FindClockTime searches text for a 12-hour clock time like "2 p.m."
// or "10:30AM" and returns the hour and minute in 24-hour form.
func FindClockTime(text string) (hour, minute int, ok bool) {
	groups := clockRegex.FindStringSubmatch(text)
	if groups == nil {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(groups[1])
	if err != nil || hour < 1 || hour > 12 {
		return 0, 0, false
	}
	if groups[2] != "" {
		minute, err = strconv.Atoi(groups[2])
		if err != nil || minute > 59 {
			return 0, 0, false
		}
	}
	if hour == 12 {
		hour = 0
	}
	if strings.EqualFold(groups[3], "p") {
		hour += 12
	}
	return hour, minute, true
}
