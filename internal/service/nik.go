package service

import (
	"strconv"
	"time"

	"github.com/El-Ikhsan/ktp-extractor/internal/dataset"
	"github.com/El-Ikhsan/ktp-extractor/internal/models"
)

// ValidateNIK checks a 16-digit identity number structurally: known
// province and regency codes, a plausible encoded birth date and a 2-digit
// year no further than a decade past the reference time.
func ValidateNIK(idx *dataset.Index, nik string, now time.Time) bool {
	if len(nik) != 16 || !allDigits(nik) {
		return false
	}

	if !idx.HasProvinceCode(nik[:2]) {
		return false
	}
	if !idx.HasRegencyCode(nik[:4]) {
		return false
	}

	day, _ := strconv.Atoi(nik[6:8])
	if day < 1 || day > 71 {
		return false
	}

	month, _ := strconv.Atoi(nik[8:10])
	if month < 1 || month > 12 {
		return false
	}

	year, _ := strconv.Atoi(nik[10:12])
	if year > now.Year()%100+10 {
		return false
	}

	return true
}

// DecodeNIK extracts the demographic components of an identity number.
// A day above 40 encodes female sex; the true day is recovered by
// subtracting the offset. The 2-digit year pivots on the reference year:
// at or below it resolves to the 2000s, above it to the 1900s. Returns
// false when the string is not 16 digits.
func DecodeNIK(nik string, now time.Time) (models.NIKRecord, bool) {
	if len(nik) != 16 || !allDigits(nik) {
		return models.NIKRecord{}, false
	}

	day, _ := strconv.Atoi(nik[6:8])
	month, _ := strconv.Atoi(nik[8:10])
	year, _ := strconv.Atoi(nik[10:12])

	rec := models.NIKRecord{
		ProvinceCode: nik[:2],
		RegencyCode:  nik[:4],
		Month:        month,
	}

	if day > 40 {
		rec.Female = true
		day -= 40
	}
	rec.Day = day

	if year <= now.Year()%100 {
		rec.Year = 2000 + year
	} else {
		rec.Year = 1900 + year
	}

	return rec, true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
