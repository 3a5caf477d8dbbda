package service

import "testing"

func TestParsePlaceDate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantPlace string
		wantDate  string
	}{
		{"dash separators", "JAKARTA, 17-08-1995", "JAKARTA", "17-08-1995"},
		{"slash separators", "BANDUNG 01/12/1988", "BANDUNG", "01-12-1988"},
		{"dot separators", "SEMARANG, 5.3.1979", "SEMARANG", "05-03-1979"},
		{"single digit day and month", "MEDAN 7-4-2001", "MEDAN", "07-04-2001"},
		{"month name", "SURABAYA, 17 AGUSTUS 1990", "SURABAYA", "17-08-1990"},
		{"place abbreviation expanded", "JKT, 17-08-1995", "JAKARTA", "17-08-1995"},
		{"abbreviation inside place", "JKRTA 02-01-2000", "JAKARTA", "02-01-2000"},
		{"lowercase input uppercased", "bandung, 01-12-1988", "BANDUNG", "01-12-1988"},
		{"impossible calendar date skipped", "DEPOK 30-02-1990", "DEPOK", ""},
		{"no date at all", "YOGYAKARTA", "YOGYAKARTA", ""},
		{"bare abbreviation without date", "SBY", "SURABAYA", ""},
		{"newline treated as space", "DENPASAR,\n10-10-2010", "DENPASAR", "10-10-2010"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			place, date := ParsePlaceDate(tt.input)
			if place != tt.wantPlace || date != tt.wantDate {
				t.Errorf("ParsePlaceDate(%q) = (%q, %q), want (%q, %q)",
					tt.input, place, date, tt.wantPlace, tt.wantDate)
			}
		})
	}
}

func TestParsePlaceDateTwoDigitYearRejected(t *testing.T) {
	place, date := ParsePlaceDate("JAKARTA 17-08-95")
	if date != "" {
		t.Errorf("two-digit year should not resolve, got %q", date)
	}
	if place != "JAKARTA" {
		t.Errorf("place = %q, want JAKARTA", place)
	}
}
