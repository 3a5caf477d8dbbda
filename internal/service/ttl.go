package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// birthPlaceCorrections expands the abbreviated city names OCR most often
// produces on the birth-place segment. Order matters: exact matches are
// tried before substring containment, and longer forms before shorter.
var birthPlaceCorrections = []struct {
	abbrev string
	full   string
}{
	{"JKT", "JAKARTA"},
	{"JKRTA", "JAKARTA"},
	{"JKR", "JAKARTA"},
	{"SBY", "SURABAYA"},
	{"SRBY", "SURABAYA"},
	{"BDG", "BANDUNG"},
	{"BDNG", "BANDUNG"},
	{"MDN", "MEDAN"},
	{"SMG", "SEMARANG"},
	{"DPS", "DENPASAR"},
	{"YGY", "YOGYAKARTA"},
	{"YOGYA", "YOGYAKARTA"},
	{"JOGJA", "YOGYAKARTA"},
}

var indonesianMonths = map[string]int{
	"JANUARI": 1, "FEBRUARI": 2, "MARET": 3, "APRIL": 4,
	"MEI": 5, "JUNI": 6, "JULI": 7, "AGUSTUS": 8,
	"SEPTEMBER": 9, "OKTOBER": 10, "NOVEMBER": 11, "DESEMBER": 12,
}

var (
	// One pattern per separator; RE2 has no back-references, so separator
	// consistency is enforced by compiling each variant.
	consistentSepDateRes = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2})-(\d{1,2})-(\d{2,4})`),
		regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{2,4})`),
		regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{2,4})`),
	}
	monthNameDateRe = regexp.MustCompile(`(\d{1,2})\s+([A-Z]+)\s+(\d{4})`)
	lenientDateRe   = regexp.MustCompile(`(\d{1,4})[-/.](\d{1,2})[-/.](\d{2,4})`)
	leadingPlaceRe  = regexp.MustCompile(`[A-Z][A-Z\s]*`)
	trailingSepRe   = regexp.MustCompile(`[,\-]+$`)
)

// ParsePlaceDate splits a combined place/date-of-birth blob into its two
// values. The date is returned as DD-MM-YYYY, or empty when no pattern
// yields a real calendar date; the place falls back to the leading run of
// uppercase text.
func ParsePlaceDate(text string) (place, date string) {
	text = strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(text, "\n", " ")))

	if m := findConsistentSepDate(text); m != "" {
		if d, ok := resolveNumericDate(m); ok {
			return extractPlace(text, m), d
		}
	}

	if m := monthNameDateRe.FindStringSubmatch(text); m != nil {
		if month, ok := indonesianMonths[m[2]]; ok {
			if d, ok := buildDate(m[1], strconv.Itoa(month), m[3]); ok {
				return extractPlace(text, m[0]), d
			}
		}
	}

	if m := lenientDateRe.FindString(text); m != "" {
		if d, ok := resolveNumericDate(m); ok {
			return extractPlace(text, m), d
		}
	}

	if m := leadingPlaceRe.FindString(text); m != "" {
		place = strings.TrimSpace(m)
		for _, c := range birthPlaceCorrections {
			if place == c.abbrev {
				return c.full, ""
			}
		}
		return place, ""
	}

	return text, ""
}

// findConsistentSepDate returns the leftmost match across the
// per-separator patterns.
func findConsistentSepDate(text string) string {
	best := ""
	bestStart := -1
	for _, re := range consistentSepDateRes {
		loc := re.FindStringIndex(text)
		if loc != nil && (bestStart < 0 || loc[0] < bestStart) {
			bestStart = loc[0]
			best = text[loc[0]:loc[1]]
		}
	}
	return best
}

// extractPlace removes the matched date substring and tidies the remainder.
func extractPlace(text, datePart string) string {
	place := strings.Replace(text, datePart, "", 1)
	place = multiSpaceRe.ReplaceAllString(strings.TrimSpace(place), " ")
	place = strings.TrimSpace(trailingSepRe.ReplaceAllString(place, ""))

	for _, c := range birthPlaceCorrections {
		if place == c.abbrev || strings.Contains(place, c.abbrev) {
			return c.full
		}
	}
	return place
}

// resolveNumericDate parses a D-M-Y numeric substring regardless of
// separator.
func resolveNumericDate(s string) (string, bool) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '/' || r == '.'
	})
	if len(parts) != 3 {
		return "", false
	}
	return buildDate(parts[0], parts[1], parts[2])
}

// buildDate validates day, month and 4-digit year and round-trips the
// combination through the calendar, rejecting impossible dates such as a
// 30th of February.
func buildDate(dayStr, monthStr, yearStr string) (string, bool) {
	day, err1 := strconv.Atoi(dayStr)
	month, err2 := strconv.Atoi(monthStr)
	year, err3 := strconv.Atoi(yearStr)
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return "", false
	}
	if year < 1900 || year > 2100 {
		return "", false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return "", false
	}
	return fmt.Sprintf("%02d-%02d-%04d", day, month, year), true
}
