package service

import (
	"regexp"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/El-Ikhsan/ktp-extractor/internal/dataset"
	"github.com/El-Ikhsan/ktp-extractor/internal/models"
)

// Canonical values produced by the cleaners.
const (
	GenderMale         = "LAKI-LAKI"
	GenderFemale       = "PEREMPUAN"
	CitizenshipWNI     = "WNI"
	CitizenshipWNA     = "WNA"
	BloodTypeUnknown   = "-"
	ValidUntilLifetime = "SEUMUR HIDUP"
)

var (
	nonWhitelistRe     = regexp.MustCompile(`[^\w\s/\-.,]`)
	multiSpaceRe       = regexp.MustCompile(`\s+`)
	nonDigitRe         = regexp.MustCompile(`\D`)
	nonDigitSlashRe    = regexp.MustCompile(`[^\d/]`)
	nonDigitDashRe     = regexp.MustCompile(`[^\d-]`)
	ddmmyyyyRe         = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	bloodTypeRe        = regexp.MustCompile(`^(A|B|AB|O)[+\-]?$`)
	bloodExtractRe     = regexp.MustCompile(`(AB|[ABO])\s*([+\-]?)`)
	dateExtractRe      = regexp.MustCompile(`(\d{2}[-/]\d{2}[-/]\d{4})`)
	nameStripRe        = regexp.MustCompile(`[^A-Z\s.',\-]`)
	trailingPunctRe    = regexp.MustCompile(`[.,]+$`)
	zeroBeforeLetterRe = regexp.MustCompile(`0([A-Z])`)
)

// digitGlyphs repairs letter glyphs that OCR commonly produces in place of
// digits, applied before digit-counting on numeric fields.
var digitGlyphs = strings.NewReplacer(
	"O", "0", "o", "0",
	"l", "1", "I", "1",
	"Z", "2", "z", "2",
	"S", "5", "s", "5",
	"B", "8", "b", "8",
	"!", "1", ")", "1",
	"|", "1", "]", "1",
	"?", "7",
	"D", "0",
)

// letterGlyphs is the reverse repair for name fields, where digits are
// almost always misread letters.
var letterGlyphs = strings.NewReplacer(
	"1", "I", "0", "O", "5", "S", "3", "E",
	"4", "A", "7", "T", "8", "B", "2", "Z",
)

// addressAbbreviations are expanded on whole-word boundaries, in order.
// Dotted forms are listed before their bare counterparts so "KEL." does not
// first collapse to an unrelated token.
var addressAbbreviations = []struct {
	re   *regexp.Regexp
	full string
}{
	{regexp.MustCompile(`\bJL\.`), "JALAN"},
	{regexp.MustCompile(`\bJLN\b`), "JALAN"},
	{regexp.MustCompile(`\bJL\b`), "JALAN"},
	{regexp.MustCompile(`\bJALAN\.`), "JALAN"},
	{regexp.MustCompile(`\bGG\.`), "GANG"},
	{regexp.MustCompile(`\bGG\b`), "GANG"},
	{regexp.MustCompile(`\bGANG\.`), "GANG"},
	{regexp.MustCompile(`\bNO\.`), "NO"},
	{regexp.MustCompile(`\bNMR\b`), "NO"},
	{regexp.MustCompile(`\bNOMOR\b`), "NO"},
	{regexp.MustCompile(`\bRT\.`), "RT"},
	{regexp.MustCompile(`\bRW\.`), "RW"},
	{regexp.MustCompile(`\bKEL\.`), "KELURAHAN"},
	{regexp.MustCompile(`\bKEC\.`), "KECAMATAN"},
	{regexp.MustCompile(`\bDS\.`), "DESA"},
	{regexp.MustCompile(`\bKP\.`), "KAMPUNG"},
	{regexp.MustCompile(`\bKMP\b`), "KAMPUNG"},
}

// Normalizer cleans raw OCR text per field type. Cleaners never fail:
// malformed input yields a best-effort normalized form or an empty string.
type Normalizer struct {
	datasets  *dataset.Index
	threshold float64
}

// NewNormalizer constructs a Normalizer over the given reference index.
func NewNormalizer(idx *dataset.Index, threshold float64) *Normalizer {
	if threshold <= 0 {
		threshold = dataset.DefaultThreshold
	}
	return &Normalizer{datasets: idx, threshold: threshold}
}

// Clean applies the first-layer, syntax-enforcing cleaner for a field type.
// All branches first strip characters outside the small whitelist and
// collapse internal whitespace.
func (n *Normalizer) Clean(ft models.FieldType, text string) string {
	text = strings.TrimSpace(text)
	text = nonWhitelistRe.ReplaceAllString(text, "")
	text = multiSpaceRe.ReplaceAllString(text, " ")

	switch ft {
	case models.FieldNIK:
		return CleanNIK(text)

	case models.FieldRTRW:
		return CleanRTRW(text)

	case models.FieldBloodType:
		upper := strings.ToUpper(strings.TrimSpace(text))
		if bloodTypeRe.MatchString(upper) {
			return upper
		}
		return BloodTypeUnknown

	case models.FieldGender:
		return cleanGender(text)

	case models.FieldMaritalStatus:
		return cleanMaritalStatus(text)

	case models.FieldCitizenship:
		return CleanCitizenship(text)

	case models.FieldValidUntil:
		upper := strings.ToUpper(text)
		if strings.Contains(upper, "SEUMUR") || strings.Contains(upper, "HIDUP") {
			return ValidUntilLifetime
		}
		return cleanDateDigits(text)

	case models.FieldIssueDate:
		return cleanDateDigits(text)

	case models.FieldPlaceDateOfBirth:
		// Left intact for the composite parser; only whitespace collapsed.
		return strings.TrimSpace(text)

	default:
		return strings.TrimSpace(text)
	}
}

// Finalize applies the field-specific classification pass that runs after
// engine arbitration has chosen a cleaned result.
func (n *Normalizer) Finalize(ft models.FieldType, text string) string {
	switch ft {
	case models.FieldNIK:
		return CleanNIK(text)

	case models.FieldName:
		return CleanName(text)

	case models.FieldPlaceDateOfBirth:
		return text

	case models.FieldAddress:
		return CleanAddress(text)

	case models.FieldRTRW:
		return CleanRTRW(text)

	case models.FieldVillage:
		return n.matchDataset(text, "desa_kelurahan")

	case models.FieldDistrict:
		return n.matchDataset(text, "kecamatan")

	case models.FieldProvinceRegency:
		return n.matchProvinceRegency(text)

	case models.FieldOccupation:
		return n.matchDataset(text, "pekerjaan")

	case models.FieldGender:
		return voteGender(text)

	case models.FieldReligion:
		return n.matchDataset(text, "agama")

	case models.FieldMaritalStatus:
		upper := strings.ToUpper(strings.TrimSpace(text))
		if v := cleanMaritalStatus(upper); v != upper {
			return v
		}
		if upper == "KAWIN" || upper == "BELUM KAWIN" || upper == "CERAI HIDUP" || upper == "CERAI MATI" {
			return upper
		}
		return n.matchDataset(text, "status_perkawinan")

	case models.FieldCitizenship:
		upper := strings.ToUpper(strings.TrimSpace(text))
		if strings.Contains(upper, CitizenshipWNI) || strings.Contains(upper, "INDONESIA") {
			return CitizenshipWNI
		}
		if strings.Contains(upper, CitizenshipWNA) {
			return CitizenshipWNA
		}
		return n.matchDataset(text, "kewarganegaraan")

	case models.FieldBloodType:
		if m := bloodExtractRe.FindStringSubmatch(strings.ToUpper(text)); m != nil {
			rh := m[2]
			if rh == "" {
				rh = "+"
			}
			return m[1] + rh
		}
		return n.matchDataset(text, "golongan_darah")

	case models.FieldValidUntil:
		upper := strings.ToUpper(strings.TrimSpace(text))
		if strings.Contains(upper, "SEUMUR") || strings.Contains(upper, "HIDUP") {
			return ValidUntilLifetime
		}
		if m := dateExtractRe.FindString(text); m != "" {
			return strings.ReplaceAll(m, "/", "-")
		}
		return strings.TrimSpace(text)

	case models.FieldIssueDate:
		// The issue date has no composite parser behind it, so anything
		// that does not resolve to DD-MM-YYYY stays unresolved.
		date := cleanDateDigits(text)
		if ddmmyyyyRe.MatchString(date) {
			return date
		}
		return ""

	default:
		return multiSpaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	}
}

// CleanNIK repairs OCR glyph confusions, strips non-digits and applies the
// length rules: exactly 16 digits pass; 15 digits gain the common leading
// "3"; 14 digits are right-padded with zeros; anything else passes through
// un-padded and stays unresolved.
func CleanNIK(text string) string {
	nik := digitGlyphs.Replace(text)
	nik = nonDigitRe.ReplaceAllString(nik, "")

	switch {
	case len(nik) > 16:
		return nik[:16]
	case len(nik) == 16:
		return nik
	case len(nik) == 15:
		return "3" + nik
	case len(nik) == 14:
		return nik + "00"
	default:
		return nik
	}
}

// CleanRTRW enforces the two 3-digit-group format. A missing separator is
// inferred positionally from the raw digit count.
func CleanRTRW(text string) string {
	text = digitGlyphs.Replace(text)
	text = nonDigitSlashRe.ReplaceAllString(text, "")

	if strings.Contains(text, "/") {
		parts := strings.SplitN(text, "/", 2)
		rt := padGroup(parts[0])
		rw := "000"
		if len(parts) > 1 {
			rw = padGroup(parts[1])
		}
		return rt + "/" + rw
	}

	switch {
	case len(text) >= 6:
		return padGroup(text[:3]) + "/" + padGroup(text[3:6])
	case len(text) >= 3:
		return padGroup(text[:3]) + "/000"
	case text != "":
		return padGroup(text) + "/000"
	default:
		return "000/000"
	}
}

// padGroup zero-pads to 3 digits and truncates longer runs.
func padGroup(s string) string {
	for len(s) < 3 {
		s = "0" + s
	}
	return s[:3]
}

// CleanCitizenship collapses citizenship text to WNI or WNA. Single-letter
// OCR fragments and known misreads default to WNI; this mirrors field
// statistics on Indonesian KTPs where WNA is rare.
func CleanCitizenship(text string) string {
	upper := strings.ToUpper(strings.TrimSpace(text))

	switch upper {
	case CitizenshipWNI, "WARGA NEGARA INDONESIA":
		return CitizenshipWNI
	case CitizenshipWNA, "WARGA NEGARA ASING":
		return CitizenshipWNA
	}

	if strings.Contains(upper, CitizenshipWNI) || strings.Contains(upper, "INDONESIA") {
		return CitizenshipWNI
	}
	if strings.Contains(upper, CitizenshipWNA) || strings.Contains(upper, "ASING") || strings.Contains(upper, "FOREIGN") {
		return CitizenshipWNA
	}

	switch upper {
	case "HM", "WN", "W", "H", "M", "N", "NI", "I":
		return CitizenshipWNI
	}

	return CitizenshipWNI
}

// CleanName uppercases, repairs digit glyphs, strips to letters and the few
// punctuation marks names carry, drops stray single-letter tokens (except
// the words A and I) and trims trailing punctuation.
func CleanName(text string) string {
	text = multiSpaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	text = strings.ToUpper(text)
	text = letterGlyphs.Replace(text)
	text = nameStripRe.ReplaceAllString(text, "")

	words := strings.Fields(text)
	kept := words[:0]
	for _, w := range words {
		if len(w) > 1 || w == "A" || w == "I" {
			kept = append(kept, w)
		}
	}
	result := strings.Join(kept, " ")
	result = trailingPunctRe.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// CleanAddress uppercases, expands street abbreviations on whole-word
// boundaries and repairs the glyphs addresses commonly suffer.
func CleanAddress(text string) string {
	text = multiSpaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	text = strings.ToUpper(text)

	for _, abbr := range addressAbbreviations {
		text = abbr.re.ReplaceAllString(text, abbr.full)
	}

	text = strings.ReplaceAll(text, "|", "I")
	text = zeroBeforeLetterRe.ReplaceAllString(text, "O$1")
	return strings.TrimSpace(text)
}

// matchDataset normalizes whitespace and common glyphs, then routes the
// value through the reference-dataset fuzzy matcher.
func (n *Normalizer) matchDataset(text, category string) string {
	text = multiSpaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	text = strings.ToUpper(text)
	text = strings.ReplaceAll(text, "|", "I")
	text = zeroBeforeLetterRe.ReplaceAllString(text, "O$1")
	return n.datasets.FindBestMatch(text, category, n.threshold)
}

// matchProvinceRegency tries the combined province/regency text against both
// datasets and keeps the more complete result.
func (n *Normalizer) matchProvinceRegency(text string) string {
	regency := n.matchDataset(text, "kabupaten_kota")
	province := n.matchDataset(text, "provinsi")

	if len(regency) > len(province) {
		return regency
	}
	upper := strings.ToUpper(strings.TrimSpace(text))
	if province != upper {
		return province
	}
	return regency
}

func cleanGender(text string) string {
	upper := strings.ToUpper(text)
	if strings.Contains(upper, "LAKI") || strings.Contains(upper, "PRIA") {
		return GenderMale
	}
	if strings.Contains(upper, "PEREMPUAN") || strings.Contains(upper, "WANITA") {
		return GenderFemale
	}
	return text
}

// voteGender classifies non-empty gender text by edit distance against the
// two canonical labels. Empty text stays empty so reconciliation can fill
// it from the NIK.
func voteGender(text string) string {
	upper := strings.ToUpper(strings.TrimSpace(text))
	if upper == "" {
		return ""
	}
	if levenshtein.Distance(upper, GenderMale, nil) < levenshtein.Distance(upper, GenderFemale, nil) {
		return GenderMale
	}
	return GenderFemale
}

func cleanMaritalStatus(text string) string {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "BELUM"):
		return "BELUM KAWIN"
	case strings.Contains(upper, "CERAI"):
		if strings.Contains(upper, "HIDUP") {
			return "CERAI HIDUP"
		}
		if strings.Contains(upper, "MATI") {
			return "CERAI MATI"
		}
		return "CERAI"
	case strings.Contains(upper, "KAWIN"):
		return "KAWIN"
	}
	return text
}

// cleanDateDigits strips to digits and dashes. A DD-MM-YYYY shape is the
// resolved form; anything else is left for later stages to interpret.
func cleanDateDigits(text string) string {
	return nonDigitDashRe.ReplaceAllString(text, "")
}
