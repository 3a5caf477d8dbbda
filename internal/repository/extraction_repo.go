package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/El-Ikhsan/ktp-extractor/internal/models"
)

// ExtractionRepository persists extraction audit records.
type ExtractionRepository struct {
	db *sqlx.DB
}

func NewExtractionRepository(db *sqlx.DB) *ExtractionRepository {
	return &ExtractionRepository{db: db}
}

// Create inserts a completed extraction record.
func (r *ExtractionRepository) Create(ctx context.Context, rec *models.ExtractionRecord) error {
	query := `INSERT INTO extraction_records
		(id, client_id, engine, nik, fields, nik_valid, image_sha256, document_url, processing_time_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.ClientID,
		rec.Engine,
		rec.NIK,
		rec.Fields,
		rec.NIKValid,
		rec.ImageSHA256,
		rec.DocumentURL,
		rec.ProcessingTimeMs,
		rec.CreatedAt,
	)
	return err
}

// GetByIDAndClientID loads a record scoped to its owning client. Returns
// (nil, nil) when no row matches.
func (r *ExtractionRepository) GetByIDAndClientID(ctx context.Context, id string, clientID int) (*models.ExtractionRecord, error) {
	var rec models.ExtractionRecord
	err := r.db.GetContext(ctx, &rec, `
		SELECT id, client_id, engine, nik, fields, nik_valid, image_sha256,
		       document_url, processing_time_ms, created_at
		FROM extraction_records
		WHERE id = $1 AND client_id = $2
	`, id, clientID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteOlderThan removes records created before the cutoff and returns the
// number of rows deleted. Used by the retention worker.
func (r *ExtractionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM extraction_records WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
