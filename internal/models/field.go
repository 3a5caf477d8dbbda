package models

// FieldType identifies one of the recognized KTP fields. The set is fixed:
// it mirrors the labels produced by the detection model and drives which
// cleaner and which reference dataset (if any) apply to the OCR output.
type FieldType string

const (
	FieldNIK              FieldType = "nik"
	FieldName             FieldType = "nama"
	FieldPlaceDateOfBirth FieldType = "tempat_tanggal_lahir"
	FieldGender           FieldType = "jenis_kelamin"
	FieldAddress          FieldType = "alamat"
	FieldRTRW             FieldType = "rt_rw"
	FieldVillage          FieldType = "kelurahan_desa"
	FieldDistrict         FieldType = "kecamatan"
	FieldProvinceRegency  FieldType = "provinsi_kabupaten"
	FieldReligion         FieldType = "agama"
	FieldMaritalStatus    FieldType = "status_perkawinan"
	FieldOccupation       FieldType = "pekerjaan"
	FieldCitizenship      FieldType = "kewarganegaraan"
	FieldBloodType        FieldType = "golongan_darah"
	FieldValidUntil       FieldType = "berlaku_hingga"
	FieldIssuePlace       FieldType = "tempat_diterbitkan"
	FieldIssueDate        FieldType = "tanggal_diterbitkan"

	// Derived fields produced by reconciliation, never by the detector.
	FieldBirthPlace FieldType = "tempat_lahir"
	FieldBirthDate  FieldType = "tgl_lahir"
	FieldProvince   FieldType = "provinsi"
	FieldRegency    FieldType = "kabupaten"
)

// detectorLabels maps detection-model class names to field types.
// Unknown labels are ignored by the extraction pipeline.
var detectorLabels = map[string]FieldType{
	"prov_kab":           FieldProvinceRegency,
	"nik":                FieldNIK,
	"nama":               FieldName,
	"ttl":                FieldPlaceDateOfBirth,
	"jk":                 FieldGender,
	"alamat":             FieldAddress,
	"rt_rw":              FieldRTRW,
	"kel_desa":           FieldVillage,
	"kecamatan":          FieldDistrict,
	"agama":              FieldReligion,
	"perkawinan":         FieldMaritalStatus,
	"pekerjaan":          FieldOccupation,
	"kwg":                FieldCitizenship,
	"berlaku_hingga":     FieldValidUntil,
	"gol_darah":          FieldBloodType,
	"tempat_diterbitkan": FieldIssuePlace,
	"tgl_diterbitkan":    FieldIssueDate,
}

// FieldTypeForLabel resolves a detector class name to a FieldType.
func FieldTypeForLabel(label string) (FieldType, bool) {
	ft, ok := detectorLabels[label]
	return ft, ok
}

// DetectedFieldTypes returns every field type the detector can produce,
// in a stable order. Used to pre-fill the result map so unresolved fields
// are always present as empty strings.
var DetectedFieldTypes = []FieldType{
	FieldProvinceRegency,
	FieldNIK,
	FieldName,
	FieldPlaceDateOfBirth,
	FieldGender,
	FieldAddress,
	FieldRTRW,
	FieldVillage,
	FieldDistrict,
	FieldReligion,
	FieldMaritalStatus,
	FieldOccupation,
	FieldCitizenship,
	FieldValidUntil,
	FieldBloodType,
	FieldIssuePlace,
	FieldIssueDate,
}

// BoundingBox is a rectangular region on the source image in pixel
// coordinates, as reported by the detection model.
type BoundingBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Detection is one located field instance from the detection model.
type Detection struct {
	Label      string      `json:"label"`
	Confidence float64     `json:"confidence"`
	Box        BoundingBox `json:"box"`
}

// CleanedField is a normalized field value with its originating detection
// confidence. An empty Value means the field could not be resolved.
type CleanedField struct {
	Type       FieldType
	Value      string
	Confidence float64
}

// NIKRecord is the decomposition of a 16-digit NIK. It is always derived
// from the raw string, never stored independently.
type NIKRecord struct {
	ProvinceCode string // first 2 digits
	RegencyCode  string // first 4 digits
	Day          int    // true day of month, +40 offset already removed
	Month        int
	Year         int // full 4-digit birth year after pivot
	Female       bool
}
