package service

import (
	"testing"
	"time"
)

var nikNow = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func TestValidateNIK(t *testing.T) {
	idx := testIndex()

	tests := []struct {
		name string
		nik  string
		want bool
	}{
		{"valid male", "3171012503010001", true},
		{"valid female offset day", "3171014705030001", true},
		{"too short", "317101250390000", false},
		{"non digit", "31710125O3900001", false},
		{"unknown province", "9971012503900001", false},
		{"unknown regency", "3199012503900001", false},
		{"day zero", "3171010003900001", false},
		{"day above offset range", "3171017203900001", false},
		{"month zero", "3171012500900001", false},
		{"month thirteen", "3171012513900001", false},
		{"year too far ahead", "3171012503370001", false},
		{"year at clock skew bound", "3171012503360001", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateNIK(idx, tt.nik, nikNow); got != tt.want {
				t.Errorf("ValidateNIK(%q) = %v, want %v", tt.nik, got, tt.want)
			}
		})
	}
}

func TestDecodeNIK(t *testing.T) {
	rec, ok := DecodeNIK("3171014705030001", nikNow)
	if !ok {
		t.Fatal("expected decode to succeed")
	}
	if !rec.Female {
		t.Error("day 47 should decode as female")
	}
	if rec.Day != 7 || rec.Month != 5 || rec.Year != 2003 {
		t.Errorf("got %d-%d-%d, want 7-5-2003", rec.Day, rec.Month, rec.Year)
	}
	if rec.ProvinceCode != "31" || rec.RegencyCode != "3171" {
		t.Errorf("region codes = %s/%s, want 31/3171", rec.ProvinceCode, rec.RegencyCode)
	}
}

func TestDecodeNIKPivot(t *testing.T) {
	male, ok := DecodeNIK("3171012503900001", nikNow)
	if !ok {
		t.Fatal("expected decode to succeed")
	}
	if male.Female {
		t.Error("day 25 should decode as male")
	}
	if male.Year != 1990 {
		t.Errorf("year 90 should pivot to 1990, got %d", male.Year)
	}

	if _, ok := DecodeNIK("123", nikNow); ok {
		t.Error("short string should not decode")
	}
}
