package service

import (
	"testing"
	"time"

	"github.com/El-Ikhsan/ktp-extractor/internal/models"
)

var reconcileNow = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func TestReconcileFillsFromNIK(t *testing.T) {
	fields := models.FieldMap{
		"nik":           "3171014705030001",
		"jenis_kelamin": "",
		"tgl_lahir":     "",
	}
	Reconcile(fields, reconcileNow)

	if got := fields["jenis_kelamin"]; got != GenderFemale {
		t.Errorf("jenis_kelamin = %q, want %q", got, GenderFemale)
	}
	if got := fields["tgl_lahir"]; got != "07-05-2003" {
		t.Errorf("tgl_lahir = %q, want 07-05-2003", got)
	}
}

func TestReconcileKeepsResolvedSex(t *testing.T) {
	fields := models.FieldMap{
		"nik":           "3171014705030001",
		"jenis_kelamin": GenderMale,
	}
	Reconcile(fields, reconcileNow)

	if got := fields["jenis_kelamin"]; got != GenderMale {
		t.Errorf("resolved sex overwritten: got %q", got)
	}
}

func TestReconcileKeepsExistingBirthDate(t *testing.T) {
	fields := models.FieldMap{
		"nik":                  "3171014705030001",
		"tgl_lahir":            "01-01-1999",
		"tempat_tanggal_lahir": "JAKARTA, 17-08-1995",
	}
	Reconcile(fields, reconcileNow)

	if got := fields["tgl_lahir"]; got != "01-01-1999" {
		t.Errorf("existing birth date overwritten: got %q", got)
	}
	if got := fields["tempat_lahir"]; got != "JAKARTA" {
		t.Errorf("tempat_lahir = %q, want JAKARTA", got)
	}
}

func TestReconcileSplitsProvinceRegency(t *testing.T) {
	tests := []struct {
		name         string
		combined     string
		wantProvince string
		wantRegency  string
	}{
		{"kota keyword", "JAWA BARAT KOTA BANDUNG", "JAWA BARAT", "KOTA BANDUNG"},
		{"kabupaten keyword", "JAWA TENGAH KABUPATEN KLATEN", "JAWA TENGAH", "KABUPATEN KLATEN"},
		{"jakarta special case", "PROVINSI DKI JAKARTA PUSAT", ProvinceDKIJakarta, "PUSAT"},
		{"no keyword", "BALI", "BALI", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := models.FieldMap{"provinsi_kabupaten": tt.combined}
			Reconcile(fields, reconcileNow)
			if got := fields["provinsi"]; got != tt.wantProvince {
				t.Errorf("provinsi = %q, want %q", got, tt.wantProvince)
			}
			if got := fields["kabupaten"]; got != tt.wantRegency {
				t.Errorf("kabupaten = %q, want %q", got, tt.wantRegency)
			}
		})
	}
}

func TestReconcileSplitsPlaceDate(t *testing.T) {
	fields := models.FieldMap{
		"tempat_tanggal_lahir": "SBY",
	}
	Reconcile(fields, reconcileNow)

	if got := fields["tempat_lahir"]; got != "SURABAYA" {
		t.Errorf("tempat_lahir = %q, want SURABAYA", got)
	}
	if got := fields["tgl_lahir"]; got != "" {
		t.Errorf("tgl_lahir = %q, want empty", got)
	}
}

func TestReconcileStripsValues(t *testing.T) {
	fields := models.FieldMap{
		"nama":   "  BUDI SANTOSO  ",
		"alamat": "   ",
	}
	Reconcile(fields, reconcileNow)

	if got := fields["nama"]; got != "BUDI SANTOSO" {
		t.Errorf("nama = %q, want stripped value", got)
	}
	if got := fields["alamat"]; got != "" {
		t.Errorf("alamat = %q, want empty", got)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	fields := models.FieldMap{
		"nik":                  "3171014705030001",
		"provinsi_kabupaten":   "JAWA BARAT KOTA BANDUNG",
		"tempat_tanggal_lahir": "BANDUNG, 01-12-1988",
	}
	Reconcile(fields, reconcileNow)

	snapshot := make(models.FieldMap, len(fields))
	for k, v := range fields {
		snapshot[k] = v
	}

	Reconcile(fields, reconcileNow)
	for k, v := range snapshot {
		if fields[k] != v {
			t.Errorf("second pass changed %s: %q -> %q", k, v, fields[k])
		}
	}
}
