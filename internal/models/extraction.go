package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// FieldMap is the flat mapping from canonical field name to final string
// value for one document. Unresolved fields carry an empty string.
type FieldMap map[string]string

// Value implements driver.Valuer for database storage
func (m FieldMap) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner for database retrieval
func (m *FieldMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed for FieldMap")
	}
	return json.Unmarshal(b, m)
}

// ExtractionRecord is the persisted audit record for one extraction request.
type ExtractionRecord struct {
	ID               string    `db:"id" json:"id"`
	ClientID         int       `db:"client_id" json:"clientId"`
	Engine           string    `db:"engine" json:"engine"`
	NIK              string    `db:"nik" json:"nik"`
	Fields           FieldMap  `db:"fields" json:"fields"`
	NIKValid         bool      `db:"nik_valid" json:"nikValid"`
	ImageSHA256      string    `db:"image_sha256" json:"imageSha256"`
	DocumentURL      string    `db:"document_url" json:"documentUrl,omitempty"`
	ProcessingTimeMs int64     `db:"processing_time_ms" json:"processingTimeMs"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}

// ExtractRequest is the JSON request body for the extraction endpoint.
type ExtractRequest struct {
	Image  string `json:"image" binding:"required"`
	Engine string `json:"engine"`
}

// ExtractionMeta carries request-scoped metadata on extraction responses.
type ExtractionMeta struct {
	RequestID        string `json:"requestId"`
	Timestamp        string `json:"timestamp"`
	ProcessingTimeMs int64  `json:"processingTimeMs"`
	Engine           string `json:"engine"`
	Cached           bool   `json:"cached,omitempty"`
}
