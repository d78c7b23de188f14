package uploads

import (
	"context"

	"github.com/dmitrijs2005/gophmarket/internal/client/models"
)

// Repository describes the upload ledger.
type Repository interface {
	// Record inserts an upload, replacing a previous row with the same
	// public id.
	Record(ctx context.Context, u *models.Upload) error

	// MarkOrphaned flags every active row of draftID whose URL is url and
	// returns how many rows changed.
	MarkOrphaned(ctx context.Context, draftID, url string) (int64, error)

	// ListByDraft returns the rows of one draft, oldest first.
	ListByDraft(ctx context.Context, draftID string) ([]models.Upload, error)

	// ListOrphans returns every orphaned row, oldest first.
	ListOrphans(ctx context.Context) ([]models.Upload, error)

	// FindByDigest returns the active rows holding the same content.
	FindByDigest(ctx context.Context, digest string) ([]models.Upload, error)
}
