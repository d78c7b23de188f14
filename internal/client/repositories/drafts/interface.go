package drafts

import (
	"context"

	"github.com/dmitrijs2005/gophmarket/internal/client/models"
)

// Repository describes draft persistence. Lookups of unknown ids return
// common.ErrorNotFound.
type Repository interface {
	// Create inserts a new draft.
	Create(ctx context.Context, d *models.Draft) error

	// Get returns one draft.
	Get(ctx context.Context, id string) (*models.Draft, error)

	// List returns all drafts, most recently updated first.
	List(ctx context.Context) ([]models.Draft, error)

	// SetImages replaces the image list of a draft.
	SetImages(ctx context.Context, id string, images []string) error

	// SetListing records the remote listing a draft was published to.
	SetListing(ctx context.Context, id, listingID string) error

	// Delete removes a draft.
	Delete(ctx context.Context, id string) error
}
