package drafts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/client/models"
	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/dmitrijs2005/gophmarket/internal/dbx"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) stamp() string {
	return r.now().UTC().Format(timeLayout)
}

func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("encode images: %w", err)
	}
	return string(b), nil
}

func (r *SQLiteRepository) Create(ctx context.Context, d *models.Draft) error {
	images, err := encodeImages(d.Images)
	if err != nil {
		return err
	}
	ts := r.stamp()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO drafts (id, title, images, listing_id, updated_at) VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.Title, images, d.ListingID, ts)
	if err != nil {
		return fmt.Errorf("failed to insert draft: %w", err)
	}
	d.UpdatedAt, _ = time.Parse(timeLayout, ts)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDraft(s scanner) (*models.Draft, error) {
	var (
		d       models.Draft
		images  string
		updated string
	)
	if err := s.Scan(&d.ID, &d.Title, &images, &d.ListingID, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(images), &d.Images); err != nil {
		return nil, fmt.Errorf("decode images of draft %s: %w", d.ID, err)
	}
	t, err := time.Parse(timeLayout, updated)
	if err != nil {
		return nil, fmt.Errorf("decode updated_at of draft %s: %w", d.ID, err)
	}
	d.UpdatedAt = t
	return &d, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Draft, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, images, listing_id, updated_at FROM drafts WHERE id = ?`, id)
	d, err := scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("draft %s: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return d, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Draft, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, images, listing_id, updated_at FROM drafts ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select drafts: %w", err)
	}
	defer rows.Close()

	var result []models.Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) exec(ctx context.Context, what, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLiteRepository) SetImages(ctx context.Context, id string, images []string) error {
	encoded, err := encodeImages(images)
	if err != nil {
		return err
	}
	return r.exec(ctx, "update draft images",
		`UPDATE drafts SET images = ?, updated_at = ? WHERE id = ?`, encoded, r.stamp(), id)
}

func (r *SQLiteRepository) SetListing(ctx context.Context, id, listingID string) error {
	return r.exec(ctx, "update draft listing",
		`UPDATE drafts SET listing_id = ?, updated_at = ? WHERE id = ?`, listingID, r.stamp(), id)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, "delete draft", `DELETE FROM drafts WHERE id = ?`, id)
}
