// Package listings writes draft image lists to the hosted listings table.
package listings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophmarket/internal/common"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrPublishingDisabled is returned when no listings DSN is configured.
var ErrPublishingDisabled = fmt.Errorf("listings publishing disabled: %w", common.ErrNotConfigured)

// Store is the remote persistence collaborator for published image lists.
type Store interface {
	SetImages(ctx context.Context, listingID string, images []string) error
	Images(ctx context.Context, listingID string) ([]string, error)
	Close() error
}

// PostgresStore updates listings.images through database/sql with the pgx
// driver, which encodes []string as text[] in order.
type PostgresStore struct {
	db *sql.DB
}

// Open connects to dsn. An empty dsn yields ErrPublishingDisabled.
func Open(dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, ErrPublishingDisabled
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return NewPostgresStore(db), nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// SetImages replaces the image list of a listing. An unknown listing yields
// common.ErrorNotFound.
func (s *PostgresStore) SetImages(ctx context.Context, listingID string, images []string) error {
	if images == nil {
		images = []string{}
	}
	query := `UPDATE listings SET images = $1, updated_at = now() WHERE id = $2`
	res, err := s.db.ExecContext(ctx, query, images, listingID)
	if err != nil {
		return fmt.Errorf("failed to update listing images: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("listing %s: %w", listingID, common.ErrorNotFound)
	}
	return nil
}

// Images returns the stored image list of a listing.
func (s *PostgresStore) Images(ctx context.Context, listingID string) ([]string, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(to_jsonb(images), '[]'::jsonb)::text FROM listings WHERE id = $1`, listingID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("listing %s: %w", listingID, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select listing images: %w", err)
	}

	var images []string
	if err := json.Unmarshal([]byte(payload), &images); err != nil {
		return nil, fmt.Errorf("decode listing images: %w", err)
	}
	return images, nil
}
