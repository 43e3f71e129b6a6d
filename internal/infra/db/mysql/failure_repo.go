package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/hafizhrmd/cropscan/internal/domain/classifyerrors"
)

type FailureRepository struct {
	db *sql.DB
}

func NewFailureRepository(db *sql.DB) *FailureRepository { return &FailureRepository{db: db} }

func (r *FailureRepository) Init(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS classify_failures (
  id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
  analysis_id VARCHAR(64) NOT NULL,
  message TEXT NOT NULL,
  created_at DATETIME NOT NULL
);`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

func (r *FailureRepository) Save(ctx context.Context, e *domain.ClassifyFailure) error {
	const q = `
INSERT INTO classify_failures (analysis_id, message, created_at)
VALUES (?,?,?);`

	msg := e.Message
	if strings.TrimSpace(msg) == "" {
		msg = "-"
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q, e.AnalysisID, msg, created)
	return err
}
