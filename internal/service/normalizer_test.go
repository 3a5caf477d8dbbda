package service

import (
	"testing"

	"github.com/El-Ikhsan/ktp-extractor/internal/dataset"
	"github.com/El-Ikhsan/ktp-extractor/internal/models"
)

func testIndex() *dataset.Index {
	return dataset.NewIndex(map[string][]string{
		"agama":             {"ISLAM", "KRISTEN", "KATOLIK", "HINDU", "BUDDHA", "KHONGHUCU"},
		"pekerjaan":         {"PELAJAR/MAHASISWA", "KARYAWAN SWASTA", "WIRASWASTA", "PEGAWAI NEGERI SIPIL"},
		"desa_kelurahan":    {"MENTENG", "GAMBIR"},
		"kecamatan":         {"MENTENG", "TANAH ABANG"},
		"provinsi":          {"DKI JAKARTA", "JAWA BARAT"},
		"kabupaten_kota":    {"JAKARTA PUSAT", "KOTA BANDUNG"},
		"status_perkawinan": {"KAWIN", "BELUM KAWIN", "CERAI HIDUP", "CERAI MATI"},
		"kewarganegaraan":   {"WNI", "WNA"},
		"golongan_darah":    {"A", "B", "AB", "O", "-"},
	}, map[string]string{
		"31": "DKI JAKARTA",
		"32": "JAWA BARAT",
	}, map[string]string{
		"3171": "JAKARTA PUSAT",
		"3273": "KOTA BANDUNG",
	})
}

func TestCleanNIK(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"sixteen digits pass through", "3171012503900001", "3171012503900001"},
		{"glyph confusions repaired", "3171O1250390000l", "3171012503900001"},
		{"embedded separators stripped", "3171 0125 0390 0001", "3171012503900001"},
		{"fifteen digits gain leading three", "171012503900001", "3171012503900001"},
		{"fourteen digits right padded", "71012503900001", "7101250390000100"},
		{"overlong truncated", "31710125039000019", "3171012503900001"},
		{"short run left unresolved", "12345", "12345"},
		{"empty stays empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanNIK(tt.input); got != tt.want {
				t.Errorf("CleanNIK(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanRTRW(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"canonical form kept", "003/005", "003/005"},
		{"short groups padded", "3/5", "003/005"},
		{"missing separator inferred", "003005", "003/005"},
		{"three digits become rt only", "004", "004/000"},
		{"two digits padded", "35", "035/000"},
		{"glyphs repaired", "OO3/OO5", "003/005"},
		{"empty defaults", "", "000/000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanRTRW(tt.input); got != tt.want {
				t.Errorf("CleanRTRW(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"digit glyphs become letters", "BUD1 SANT0S0", "BUDI SANTOSO"},
		{"lowercase uppercased", "budi santoso", "BUDI SANTOSO"},
		{"stray single letters dropped", "BUDI X SANTOSO", "BUDI SANTOSO"},
		{"initial words a and i kept", "A BUDI", "A BUDI"},
		{"trailing punctuation trimmed", "BUDI SANTOSO.,", "BUDI SANTOSO"},
		{"symbols stripped", "BUDI* SANTOSO#", "BUDI SANTOSO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanName(tt.input); got != tt.want {
				t.Errorf("CleanName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanAddress(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"dotted street abbreviation", "Jl. Merdeka No. 10", "JALAN MERDEKA NO 10"},
		{"bare street abbreviation", "JL KENANGA", "JALAN KENANGA"},
		{"gang expansion", "GG MAWAR 5", "GANG MAWAR 5"},
		{"zero before letter repaired", "JLN BL0K A", "JALAN BLOK A"},
		{"pipe becomes letter i", "JL C|NERE", "JALAN CINERE"},
		{"kampung expansion", "KP. RAMBUTAN", "KAMPUNG RAMBUTAN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanAddress(tt.input); got != tt.want {
				t.Errorf("CleanAddress(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanCitizenship(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"WNI", "WNI"},
		{"WNA", "WNA"},
		{"ASING", "WNA"},
		{"FOREIGN", "WNA"},
		{"WARGA NEGARA INDONESIA", "WNI"},
		{"HM", "WNI"},
		{"N", "WNI"},
		{"", "WNI"},
		{"garbage text", "WNI"},
	}
	for _, tt := range tests {
		if got := CleanCitizenship(tt.input); got != tt.want {
			t.Errorf("CleanCitizenship(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizerClean(t *testing.T) {
	n := NewNormalizer(testIndex(), 0.7)

	tests := []struct {
		name  string
		field models.FieldType
		input string
		want  string
	}{
		{"gender male variant", models.FieldGender, "laki", GenderMale},
		{"gender female variant", models.FieldGender, "WANITA", GenderFemale},
		{"gender unmatched passthrough", models.FieldGender, "LK", "LK"},
		{"blood type valid", models.FieldBloodType, "O+", "O+"},
		{"blood type bare letter", models.FieldBloodType, "AB", "AB"},
		{"blood type invalid", models.FieldBloodType, "XX", BloodTypeUnknown},
		{"marital belum", models.FieldMaritalStatus, "BELUM KAW1N", "BELUM KAWIN"},
		{"marital cerai mati", models.FieldMaritalStatus, "CERAI MATI", "CERAI MATI"},
		{"valid until lifetime", models.FieldValidUntil, "SEUMUR HIDUP", ValidUntilLifetime},
		{"valid until partial lifetime", models.FieldValidUntil, "seumur hdup", ValidUntilLifetime},
		{"valid until date digits", models.FieldValidUntil, "22-05-2025", "22-05-2025"},
		{"issue date stripped to digits", models.FieldIssueDate, "07-04-2016 bc", "07-04-2016"},
		{"composite field untouched", models.FieldPlaceDateOfBirth, "JAKARTA, 17-08-1990", "JAKARTA, 17-08-1990"},
		{"generic whitespace collapse", models.FieldReligion, "  IS   LAM  ", "IS LAM"},
		{"generic symbol strip", models.FieldOccupation, "WIRA*SWASTA", "WIRASWASTA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Clean(tt.field, tt.input); got != tt.want {
				t.Errorf("Clean(%s, %q) = %q, want %q", tt.field, tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizerFinalize(t *testing.T) {
	n := NewNormalizer(testIndex(), 0.7)

	tests := []struct {
		name  string
		field models.FieldType
		input string
		want  string
	}{
		{"religion fuzzy match", models.FieldReligion, "1SLAM", "ISLAM"},
		{"religion below threshold kept", models.FieldReligion, "XYZ", "XYZ"},
		{"occupation glyph tolerated", models.FieldOccupation, "PELAJAR/MAHAS1SWA", "PELAJAR/MAHASISWA"},
		{"village exact", models.FieldVillage, "MENTENG", "MENTENG"},
		{"village fuzzy", models.FieldVillage, "MENTANG", "MENTENG"},
		{"district fuzzy", models.FieldDistrict, "TANAH ABANC", "TANAH ABANG"},
		{"regency preferred over province", models.FieldProvinceRegency, "JAKARTA PUSAT", "JAKARTA PUSAT"},
		{"province exact", models.FieldProvinceRegency, "JAWA BARAT", "JAWA BARAT"},
		{"gender voted male", models.FieldGender, "LAK1-LAKI", GenderMale},
		{"gender voted female", models.FieldGender, "PEREMPUAH", GenderFemale},
		{"gender empty left for reconciliation", models.FieldGender, "", ""},
		{"marital fuzzy fallback", models.FieldMaritalStatus, "KAVIN", "KAWIN"},
		{"citizenship contains wni", models.FieldCitizenship, "WNI INDONESIA", "WNI"},
		{"blood default rh", models.FieldBloodType, "A", "A+"},
		{"blood explicit rh", models.FieldBloodType, "O -", "O-"},
		{"blood ab compound", models.FieldBloodType, "AB", "AB+"},
		{"blood unknown sentinel kept", models.FieldBloodType, "-", "-"},
		{"valid until lifetime", models.FieldValidUntil, "SEUMUR", ValidUntilLifetime},
		{"valid until date normalized", models.FieldValidUntil, "22/05/2025", "22-05-2025"},
		{"issue date accepted", models.FieldIssueDate, "07-04-2016", "07-04-2016"},
		{"issue date noise stripped", models.FieldIssueDate, "07-04-2016 ab", "07-04-2016"},
		{"issue date malformed blanked", models.FieldIssueDate, "742016", ""},
		{"nik recleaned", models.FieldNIK, "3171O12503900001", "3171012503900001"},
		{"name recleaned", models.FieldName, "BUD1 SANT0S0", "BUDI SANTOSO"},
		{"address recleaned", models.FieldAddress, "JL. MERDEKA NO. 10", "JALAN MERDEKA NO 10"},
		{"rtrw recleaned", models.FieldRTRW, "3/5", "003/005"},
		{"default collapses whitespace", models.FieldIssuePlace, " JAKARTA  PUSAT ", "JAKARTA PUSAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Finalize(tt.field, tt.input); got != tt.want {
				t.Errorf("Finalize(%s, %q) = %q, want %q", tt.field, tt.input, got, tt.want)
			}
		})
	}
}
