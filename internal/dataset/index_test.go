package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data_agama.csv", "agama\nISLAM\nKRISTEN\nislam\n\nKATOLIK\n")
	writeFile(t, dir, "kode_provinsi.csv", "kode,provinsi\n31,DKI JAKARTA\n1,ACEH\n")
	writeFile(t, dir, "kode_kabupaten.csv", "kode_provinsi,kode_kabupaten,kabupaten_kota\n31,71,JAKARTA SELATAN\n1,2,TEST\n")

	idx := Load(dir)

	agama := idx.Category("agama")
	if len(agama) != 3 {
		t.Fatalf("agama entries = %v, want 3 deduplicated values", agama)
	}
	if agama[0] != "ISLAM" || agama[2] != "KATOLIK" {
		t.Errorf("agama = %v, want order preserved", agama)
	}

	// Missing categories degrade to empty, never fail the load.
	if got := idx.Category("pekerjaan"); got != nil {
		t.Errorf("missing category = %v, want nil", got)
	}
	if idx.LoadedCount() != 1 {
		t.Errorf("LoadedCount() = %d, want 1", idx.LoadedCount())
	}

	if !idx.HasProvinceCode("31") {
		t.Error("HasProvinceCode(31) = false, want true")
	}
	if !idx.HasProvinceCode("01") {
		t.Error("HasProvinceCode(01) = false, want single-digit code zero-padded")
	}
	if idx.HasProvinceCode("99") {
		t.Error("HasProvinceCode(99) = true, want false")
	}
	if !idx.HasRegencyCode("3171") {
		t.Error("HasRegencyCode(3171) = false, want true")
	}
	if !idx.HasRegencyCode("0102") {
		t.Error("HasRegencyCode(0102) = false, want component codes zero-padded")
	}
}

func TestLoadMissingDirectory(t *testing.T) {
	idx := Load(filepath.Join(t.TempDir(), "nope"))
	if idx == nil {
		t.Fatal("Load() = nil, want empty index")
	}
	if idx.LoadedCount() != 0 {
		t.Errorf("LoadedCount() = %d, want 0", idx.LoadedCount())
	}
	if got := idx.FindBestMatch("islam", "agama", DefaultThreshold); got != "ISLAM" {
		t.Errorf("FindBestMatch on empty index = %q, want uppercased input", got)
	}
}

func TestFindBestMatch(t *testing.T) {
	idx := NewIndex(map[string][]string{
		"agama":     {"ISLAM", "KRISTEN", "KATOLIK", "HINDU", "BUDDHA", "KHONGHUCU"},
		"pekerjaan": {"PELAJAR/MAHASISWA", "WIRASWASTA", "KARYAWAN SWASTA"},
	}, nil, nil)

	tests := []struct {
		name     string
		text     string
		category string
		want     string
	}{
		{"exact match", "ISLAM", "agama", "ISLAM"},
		{"exact match lowercased input", "islam", "agama", "ISLAM"},
		{"one glyph off", "1SLAM", "agama", "ISLAM"},
		{"ocr noise above threshold", "KR1STEN", "agama", "KRISTEN"},
		{"below threshold returns input", "ZZZZZ", "agama", "ZZZZZ"},
		{"unknown category returns input", "ISLAM", "bahasa", "ISLAM"},
		{"empty input", "   ", "agama", ""},
		{"longer entry", "KARYAWAN SWAST", "pekerjaan", "KARYAWAN SWASTA"},
		{"internal whitespace collapsed", "KARYAWAN   SWASTA", "pekerjaan", "KARYAWAN SWASTA"},
		{"tabs and newlines collapsed", "karyawan\tswasta\n", "pekerjaan", "KARYAWAN SWASTA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := idx.FindBestMatch(tt.text, tt.category, DefaultThreshold); got != tt.want {
				t.Errorf("FindBestMatch(%q, %q) = %q, want %q", tt.text, tt.category, got, tt.want)
			}
		})
	}
}

func TestFindBestMatchThreshold(t *testing.T) {
	idx := NewIndex(map[string][]string{"agama": {"ISLAM"}}, nil, nil)

	// "ASLAM" is one edit from "ISLAM": similarity 0.8.
	if got := idx.FindBestMatch("ASLAM", "agama", 0.9); got != "ASLAM" {
		t.Errorf("strict threshold = %q, want input unchanged", got)
	}
	if got := idx.FindBestMatch("ASLAM", "agama", 0.7); got != "ISLAM" {
		t.Errorf("default threshold = %q, want ISLAM", got)
	}
	// The score must strictly exceed the threshold.
	if got := idx.FindBestMatch("ASLAM", "agama", 0.8); got != "ASLAM" {
		t.Errorf("boundary threshold = %q, want input unchanged", got)
	}
}
