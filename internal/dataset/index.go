package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/rs/zerolog/log"
)

// DefaultThreshold is the similarity score a candidate must strictly exceed
// for a fuzzy match to replace the input.
const DefaultThreshold = 0.7

// categoryFiles maps dataset categories to their CSV source files. The first
// column of each file is taken as the canonical value list.
var categoryFiles = map[string]string{
	"pekerjaan":         "daftar_pekerjaan.csv",
	"desa_kelurahan":    "data_desakelurahan.csv",
	"kecamatan":         "data_kecamatan.csv",
	"kabupaten_kota":    "nama_kotakab.csv",
	"provinsi":          "data_provinsi.csv",
	"agama":             "data_agama.csv",
	"kewarganegaraan":   "data_kewarganegaraan.csv",
	"golongan_darah":    "data_goldar.csv",
	"status_perkawinan": "status_perkawinan.csv",
	"jenis_kelamin":     "jenis_kelamin.csv",
}

// Index holds the canonical reference datasets used for fuzzy field matching
// and the numeric region-code maps used for NIK validation. It is built once
// at startup and read-only afterwards, so concurrent reads need no locking.
type Index struct {
	datasets      map[string][]string
	provinceCodes map[string]string // 2-digit code -> province name
	regencyCodes  map[string]string // 4-digit code -> regency name
}

// Load builds the index from CSV files under dir. A missing or unreadable
// file degrades that category to an empty set with a logged warning; it is
// never a fatal error. Consumers treat "category unavailable" the same as
// "no match found".
func Load(dir string) *Index {
	idx := &Index{
		datasets:      make(map[string][]string, len(categoryFiles)),
		provinceCodes: make(map[string]string),
		regencyCodes:  make(map[string]string),
	}

	for category, filename := range categoryFiles {
		values, err := loadColumn(filepath.Join(dir, filename))
		if err != nil {
			log.Warn().Err(err).Str("category", category).Msg("Reference dataset unavailable")
			idx.datasets[category] = nil
			continue
		}
		idx.datasets[category] = values
		log.Info().Str("category", category).Int("entries", len(values)).Msg("Loaded reference dataset")
	}

	idx.loadRegionCodes(dir)
	return idx
}

// NewIndex builds an index directly from in-memory data. Used by tests and
// by callers that source reference data elsewhere.
func NewIndex(datasets map[string][]string, provinceCodes, regencyCodes map[string]string) *Index {
	if datasets == nil {
		datasets = make(map[string][]string)
	}
	if provinceCodes == nil {
		provinceCodes = make(map[string]string)
	}
	if regencyCodes == nil {
		regencyCodes = make(map[string]string)
	}
	return &Index{datasets: datasets, provinceCodes: provinceCodes, regencyCodes: regencyCodes}
}

// loadColumn reads the first column of a CSV file, skipping the header row,
// uppercasing and trimming values, and dropping duplicates and blanks.
func loadColumn(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	seen := make(map[string]bool)
	var values []string
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		v := strings.ToUpper(strings.TrimSpace(row[0]))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return values, nil
}

// loadRegionCodes reads the province and regency numeric-code maps used only
// by the NIK validator. Regency codes are the 2-digit province code followed
// by the 2-digit regency code within that province.
func (idx *Index) loadRegionCodes(dir string) {
	provRows, err := readRows(filepath.Join(dir, "kode_provinsi.csv"))
	if err != nil {
		log.Warn().Err(err).Msg("Province code map unavailable")
	} else {
		for _, row := range provRows {
			if len(row) < 2 {
				continue
			}
			code := zeroPad(strings.TrimSpace(row[0]), 2)
			idx.provinceCodes[code] = strings.ToUpper(strings.TrimSpace(row[1]))
		}
		log.Info().Int("entries", len(idx.provinceCodes)).Msg("Loaded province codes")
	}

	kabRows, err := readRows(filepath.Join(dir, "kode_kabupaten.csv"))
	if err != nil {
		log.Warn().Err(err).Msg("Regency code map unavailable")
	} else {
		for _, row := range kabRows {
			if len(row) < 3 {
				continue
			}
			provCode := zeroPad(strings.TrimSpace(row[0]), 2)
			kabCode := zeroPad(strings.TrimSpace(row[1]), 2)
			idx.regencyCodes[provCode+kabCode] = strings.ToUpper(strings.TrimSpace(row[2]))
		}
		log.Info().Int("entries", len(idx.regencyCodes)).Msg("Loaded regency codes")
	}
}

func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}
	return rows[1:], nil
}

func zeroPad(s string, width int) string {
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// FindBestMatch fuzzy-matches text against a dataset category. The input is
// uppercased and internal whitespace collapsed before comparison. An exact
// match returns immediately. Otherwise the entry with the highest
// normalized edit-distance similarity wins, but only if its score strictly
// exceeds threshold; below that the normalized input is returned
// unchanged. At equal scores the first-encountered entry wins.
func (idx *Index) FindBestMatch(text, category string, threshold float64) string {
	upper := strings.Join(strings.Fields(strings.ToUpper(text)), " ")
	if upper == "" {
		return upper
	}

	entries := idx.datasets[category]
	if len(entries) == 0 {
		return upper
	}

	best := upper
	bestScore := 0.0
	for _, entry := range entries {
		if entry == upper {
			return upper
		}
		score := levenshtein.Similarity(upper, entry, nil)
		if score > bestScore {
			bestScore = score
			best = entry
		}
	}

	if bestScore > threshold {
		return best
	}
	return upper
}

// Category returns the canonical value list for a category, or nil if the
// category is unknown or failed to load.
func (idx *Index) Category(name string) []string {
	return idx.datasets[name]
}

// Categories returns the known category names mapped to their entry counts.
func (idx *Index) Categories() map[string]int {
	counts := make(map[string]int, len(idx.datasets))
	for name, values := range idx.datasets {
		counts[name] = len(values)
	}
	return counts
}

// HasProvinceCode reports whether a 2-digit province code is known.
func (idx *Index) HasProvinceCode(code string) bool {
	_, ok := idx.provinceCodes[code]
	return ok
}

// HasRegencyCode reports whether a 4-digit regency code is known.
func (idx *Index) HasRegencyCode(code string) bool {
	_, ok := idx.regencyCodes[code]
	return ok
}

// LoadedCount returns how many categories loaded with at least one entry.
func (idx *Index) LoadedCount() int {
	n := 0
	for _, values := range idx.datasets {
		if len(values) > 0 {
			n++
		}
	}
	return n
}
