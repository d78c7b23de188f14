package uploads

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/client/models"
	"github.com/dmitrijs2005/gophmarket/internal/dbx"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Record(ctx context.Context, u *models.Upload) error {
	if u.Status == "" {
		u.Status = models.UploadActive
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.now().UTC()
	}

	query := `INSERT INTO uploads (public_id, draft_id, url, digest, size, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(public_id) DO UPDATE SET draft_id = excluded.draft_id,
				url = excluded.url,
				digest = excluded.digest,
				size = excluded.size,
				status = excluded.status`
	_, err := r.db.ExecContext(ctx, query, u.PublicID, u.DraftID, u.URL, u.Digest, u.Size,
		string(u.Status), u.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkOrphaned(ctx context.Context, draftID, url string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE uploads SET status = ? WHERE draft_id = ? AND url = ? AND status = ?`,
		string(models.UploadOrphaned), draftID, url, string(models.UploadActive))
	if err != nil {
		return 0, fmt.Errorf("failed to mark upload orphaned: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) query(ctx context.Context, where string, args ...any) ([]models.Upload, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT public_id, draft_id, url, digest, size, status, created_at FROM uploads WHERE `+where+
			` ORDER BY created_at, public_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select uploads: %w", err)
	}
	defer rows.Close()

	var result []models.Upload
	for rows.Next() {
		var (
			u       models.Upload
			status  string
			created string
		)
		if err := rows.Scan(&u.PublicID, &u.DraftID, &u.URL, &u.Digest, &u.Size, &status, &created); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		u.Status = models.UploadRecordStatus(status)
		if u.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("decode created_at of %s: %w", u.PublicID, err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ListByDraft(ctx context.Context, draftID string) ([]models.Upload, error) {
	return r.query(ctx, `draft_id = ?`, draftID)
}

func (r *SQLiteRepository) ListOrphans(ctx context.Context) ([]models.Upload, error) {
	return r.query(ctx, `status = ?`, string(models.UploadOrphaned))
}

func (r *SQLiteRepository) FindByDigest(ctx context.Context, digest string) ([]models.Upload, error) {
	return r.query(ctx, `digest = ? AND status = ?`, digest, string(models.UploadActive))
}
