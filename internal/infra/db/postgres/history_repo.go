package postgres

import (
	"context"
	"database/sql"

	domain "github.com/hafizhrmd/cropscan/internal/domain/analysis"
)

// HistoryRepository is the Postgres variant; semantics match the MySQL one.
type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Init(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS analysis_history (
  id VARCHAR(64) NOT NULL PRIMARY KEY,
  filename VARCHAR(255) NOT NULL,
  disease_name VARCHAR(255) NOT NULL,
  disease_readable VARCHAR(255) NOT NULL,
  is_healthy SMALLINT NOT NULL DEFAULT 0,
  confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
  reasoning TEXT,
  severity VARCHAR(32) NULL,
  timestamp BIGINT NOT NULL
);`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

func (r *HistoryRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO analysis_history
  (id, filename, disease_name, disease_readable, is_healthy, confidence, reasoning, severity, timestamp)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`

	healthy := 0
	if a.IsHealthy {
		healthy = 1
	}
	var severity any
	if a.Severity != "" {
		severity = a.Severity
	}

	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.Filename, a.DiseaseName, a.DiseaseReadable,
		healthy, a.Confidence, a.Reasoning, severity, a.Timestamp,
	)
	return err
}

func (r *HistoryRepository) ListAll(ctx context.Context) ([]*domain.Analysis, error) {
	const q = `
SELECT id, filename, disease_name, disease_readable, is_healthy, confidence, reasoning, severity, timestamp
FROM analysis_history
ORDER BY timestamp DESC, id DESC;`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Analysis{}
	for rows.Next() {
		var a domain.Analysis
		var healthy int
		var severity sql.NullString
		if err := rows.Scan(
			&a.ID, &a.Filename, &a.DiseaseName, &a.DiseaseReadable,
			&healthy, &a.Confidence, &a.Reasoning, &severity, &a.Timestamp,
		); err != nil {
			return nil, err
		}
		a.IsHealthy = healthy != 0
		if severity.Valid {
			a.Severity = severity.String
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *HistoryRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM analysis_history;`)
	return err
}
