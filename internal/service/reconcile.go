package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/El-Ikhsan/ktp-extractor/internal/models"
)

// ProvinceDKIJakarta is the fixed label written when the combined
// province/regency text names the capital region.
const ProvinceDKIJakarta = "PROVINSI DKI JAKARTA"

// Reconcile runs the cross-field pass on a completed field map. It derives
// sex and birth date from the identity number without overwriting values
// already resolved, splits the combined province/regency text, splits the
// place/date-of-birth blob and strips every value. The map is modified in
// place and returned.
func Reconcile(fields models.FieldMap, now time.Time) models.FieldMap {
	reconcileFromNIK(fields, now)
	splitProvinceRegency(fields)
	splitPlaceDate(fields)

	for key, value := range fields {
		fields[key] = strings.TrimSpace(value)
	}
	return fields
}

// reconcileFromNIK fills sex and birth date from a structurally plausible
// identity number. Sex already resolved to a canonical label is kept; the
// birth date is only filled when absent.
func reconcileFromNIK(fields models.FieldMap, now time.Time) {
	nik := fields[string(models.FieldNIK)]
	rec, ok := DecodeNIK(nik, now)
	if !ok {
		return
	}

	sex := fields[string(models.FieldGender)]
	if sex != GenderMale && sex != GenderFemale {
		if rec.Female {
			fields[string(models.FieldGender)] = GenderFemale
		} else {
			fields[string(models.FieldGender)] = GenderMale
		}
	}

	if fields[string(models.FieldBirthDate)] == "" {
		fields[string(models.FieldBirthDate)] = fmt.Sprintf("%02d-%02d-%04d", rec.Day, rec.Month, rec.Year)
	}
}

// splitProvinceRegency divides the combined header text on the KOTA or
// KABUPATEN keyword; JAKARTA is special-cased to the fixed capital-region
// province label.
func splitProvinceRegency(fields models.FieldMap) {
	combined := fields[string(models.FieldProvinceRegency)]
	province := combined
	regency := ""

	switch {
	case strings.Contains(combined, "KOTA"):
		before, after, _ := strings.Cut(combined, "KOTA")
		province = before
		regency = "KOTA " + strings.TrimSpace(after)
	case strings.Contains(combined, "KABUPATEN"):
		before, after, _ := strings.Cut(combined, "KABUPATEN")
		province = before
		regency = "KABUPATEN " + strings.TrimSpace(after)
	case strings.Contains(combined, "JAKARTA"):
		_, after, _ := strings.Cut(combined, "JAKARTA")
		province = ProvinceDKIJakarta
		regency = strings.TrimSpace(after)
	}

	fields[string(models.FieldProvince)] = strings.TrimSpace(province)
	fields[string(models.FieldRegency)] = strings.TrimSpace(regency)
}

// splitPlaceDate runs the composite parser on the place/date-of-birth blob.
// The place always wins; the parsed date only fills a still-missing birth
// date, so a NIK-derived date takes precedence.
func splitPlaceDate(fields models.FieldMap) {
	combined := fields[string(models.FieldPlaceDateOfBirth)]
	if combined == "" {
		return
	}

	place, date := ParsePlaceDate(combined)
	fields[string(models.FieldBirthPlace)] = place
	if fields[string(models.FieldBirthDate)] == "" {
		fields[string(models.FieldBirthDate)] = date
	}
}
