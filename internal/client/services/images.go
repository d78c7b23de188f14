// Package services contains application services for the gophmarket client.
// ImageService binds an upload coordinator to the draft being edited: it
// loads files, keeps the draft's image list in step with every publication
// of the coordinator, records uploads in the local ledger and pushes the
// final list to the remote listings table.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/client/batch"
	"github.com/dmitrijs2005/gophmarket/internal/client/client"
	"github.com/dmitrijs2005/gophmarket/internal/client/listings"
	"github.com/dmitrijs2005/gophmarket/internal/client/models"
	"github.com/dmitrijs2005/gophmarket/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophmarket/internal/client/transport"
	"github.com/dmitrijs2005/gophmarket/internal/client/validation"
	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/dmitrijs2005/gophmarket/internal/dbx"
	"github.com/dmitrijs2005/gophmarket/internal/filex"
	"github.com/dmitrijs2005/gophmarket/internal/logging"
	"github.com/google/uuid"
)

// ErrNoDraft is returned by operations that need an open draft.
var ErrNoDraft = errors.New("no draft is open")

// ImageService defines the draft and image operations of the CLI.
//
// Contract:
//   - NewDraft / OpenDraft make a draft current and start a fresh upload
//     session seeded with its images.
//   - AddFiles, Retry, Cancel, Dismiss, Remove act on the current session.
//   - Publish writes the current image list to a remote listing.
//
// All blocking methods honour context cancellation.
type ImageService interface {
	NewDraft(ctx context.Context, title string) (*models.Draft, error)
	OpenDraft(ctx context.Context, id string) (*models.Draft, error)
	ResumeDraft(ctx context.Context) (*models.Draft, error)
	Current() *models.Draft
	Drafts(ctx context.Context) ([]models.Draft, error)

	AddFiles(ctx context.Context, paths []string) (batch.Outcome, error)
	Retry(ctx context.Context, slotID string) (batch.Outcome, error)
	Cancel(slotID string) error
	Dismiss(slotID string) error
	Remove(ctx context.Context, index int) (string, error)

	Slots() []models.UploadState
	Images() []string

	Publish(ctx context.Context, listingID string) error
	Orphans(ctx context.Context) ([]models.Upload, error)
}

// Deps are the collaborators of an ImageService. Compressor and Listings
// may be nil; a nil Listings disables Publish.
type Deps struct {
	DB         *sql.DB
	Uploader   transport.Uploader
	Compressor batch.Compressor
	Listings   listings.Store
	Logger     logging.Logger
	Options    batch.Options
	// Observer receives every coordinator notification after the draft has
	// been updated, e.g. a progress renderer.
	Observer batch.Observer
}

type session struct {
	draft models.Draft
	coord *batch.Coordinator
}

type imageService struct {
	deps  Deps
	repos *client.Repositories
	log   logging.Logger
	cur   atomic.Pointer[session]
}

// NewImageService constructs an ImageService over the local database.
func NewImageService(deps Deps) ImageService {
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	return &imageService{deps: deps, repos: client.NewRepositories(deps.DB), log: deps.Logger}
}

func (s *imageService) NewDraft(ctx context.Context, title string) (*models.Draft, error) {
	d := &models.Draft{ID: uuid.NewString(), Title: title, Images: []string{}}
	if err := s.repos.Drafts.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	return s.activate(ctx, d)
}

func (s *imageService) OpenDraft(ctx context.Context, id string) (*models.Draft, error) {
	d, err := s.repos.Drafts.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("open draft: %w", err)
	}
	return s.activate(ctx, d)
}

// ResumeDraft reopens the draft that was current in the previous run.
func (s *imageService) ResumeDraft(ctx context.Context) (*models.Draft, error) {
	id, err := s.repos.Metadata.Get(ctx, metadata.KeyCurrentDraft)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrNoDraft
		}
		return nil, err
	}
	return s.OpenDraft(ctx, id)
}

func (s *imageService) activate(ctx context.Context, d *models.Draft) (*models.Draft, error) {
	if err := s.repos.Metadata.Set(ctx, metadata.KeyCurrentDraft, d.ID); err != nil {
		return nil, fmt.Errorf("remember draft: %w", err)
	}

	observers := batch.Observers{s.persister(d.ID)}
	if s.deps.Observer != nil {
		observers = append(observers, s.deps.Observer)
	}
	coord := batch.New(s.deps.Uploader, s.deps.Compressor, s.log.With("draft", d.ID), s.deps.Options, d.Images, observers)
	s.cur.Store(&session{draft: *d, coord: coord})

	out := *d
	return &out, nil
}

// persister writes every published image list to the draft row.
func (s *imageService) persister(draftID string) batch.Observer {
	return batch.ObserverFuncs{Images: func(images []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repos.Drafts.SetImages(ctx, draftID, images); err != nil {
			s.log.Error(ctx, "failed to persist draft images", "draft", draftID, "error", err)
		}
	}}
}

func (s *imageService) session() (*session, error) {
	cur := s.cur.Load()
	if cur == nil {
		return nil, ErrNoDraft
	}
	return cur, nil
}

// Current returns the open draft with its live image list, or nil.
func (s *imageService) Current() *models.Draft {
	cur := s.cur.Load()
	if cur == nil {
		return nil
	}
	d := cur.draft
	d.Images = cur.coord.Images()
	return &d
}

func (s *imageService) Drafts(ctx context.Context) ([]models.Draft, error) {
	return s.repos.Drafts.List(ctx)
}

// AddFiles loads paths and submits them as one batch. Files above the size
// limit are not read; validation rejects them inside the batch.
func (s *imageService) AddFiles(ctx context.Context, paths []string) (batch.Outcome, error) {
	cur, err := s.session()
	if err != nil {
		return batch.Outcome{}, err
	}

	candidates := make([]models.Candidate, 0, len(paths))
	for _, p := range paths {
		c, err := filex.LoadCandidate(p, validation.MaxFileSize)
		if err != nil {
			return batch.Outcome{}, err
		}
		candidates = append(candidates, c)
	}

	out, err := cur.coord.Submit(ctx, candidates)
	if err != nil {
		return out, err
	}
	if err := s.record(ctx, cur.draft.ID, out.Uploaded); err != nil {
		return out, err
	}
	return out, nil
}

func (s *imageService) Retry(ctx context.Context, slotID string) (batch.Outcome, error) {
	cur, err := s.session()
	if err != nil {
		return batch.Outcome{}, err
	}
	out, err := cur.coord.Retry(ctx, slotID)
	if err != nil {
		return out, err
	}
	if err := s.record(ctx, cur.draft.ID, out.Uploaded); err != nil {
		return out, err
	}
	return out, nil
}

// record adds uploaded objects to the ledger in one transaction.
func (s *imageService) record(ctx context.Context, draftID string, uploaded []batch.UploadedImage) error {
	if len(uploaded) == 0 {
		return nil
	}
	err := dbx.WithTx(ctx, s.deps.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repos := client.NewRepositories(tx)
		for _, u := range uploaded {
			publicID := u.PublicID
			if publicID == "" {
				publicID = u.URL
			}
			if err := repos.Uploads.Record(ctx, &models.Upload{
				PublicID: publicID,
				DraftID:  draftID,
				URL:      u.URL,
				Digest:   u.Digest,
				Size:     u.Size,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record uploads: %w", err)
	}
	return nil
}

func (s *imageService) Cancel(slotID string) error {
	cur, err := s.session()
	if err != nil {
		return err
	}
	return cur.coord.Cancel(slotID)
}

func (s *imageService) Dismiss(slotID string) error {
	cur, err := s.session()
	if err != nil {
		return err
	}
	return cur.coord.Dismiss(slotID)
}

// Remove drops the image at index from the current draft. The remote object
// is kept and its ledger entry marked orphaned.
func (s *imageService) Remove(ctx context.Context, index int) (string, error) {
	cur, err := s.session()
	if err != nil {
		return "", err
	}
	url, err := cur.coord.Remove(index)
	if err != nil {
		return "", err
	}
	n, err := s.repos.Uploads.MarkOrphaned(ctx, cur.draft.ID, url)
	if err != nil {
		return url, err
	}
	if n == 0 {
		s.log.Debug(ctx, "removed image has no ledger entry", "url", url)
	}
	return url, nil
}

func (s *imageService) Slots() []models.UploadState {
	cur := s.cur.Load()
	if cur == nil {
		return nil
	}
	return cur.coord.Slots()
}

func (s *imageService) Images() []string {
	cur := s.cur.Load()
	if cur == nil {
		return nil
	}
	return cur.coord.Images()
}

// Publish writes the current image list to listingID and remembers the
// listing on the draft.
func (s *imageService) Publish(ctx context.Context, listingID string) error {
	if s.deps.Listings == nil {
		return listings.ErrPublishingDisabled
	}
	cur, err := s.session()
	if err != nil {
		return err
	}

	images := cur.coord.Images()
	if err := s.deps.Listings.SetImages(ctx, listingID, images); err != nil {
		return fmt.Errorf("publish listing %s: %w", listingID, err)
	}
	if err := s.repos.Drafts.SetListing(ctx, cur.draft.ID, listingID); err != nil {
		return fmt.Errorf("remember listing: %w", err)
	}
	next := *cur
	next.draft.ListingID = listingID
	s.cur.CompareAndSwap(cur, &next)
	s.log.Info(ctx, "draft published", "draft", cur.draft.ID, "listing", listingID, "images", len(images))
	return nil
}

func (s *imageService) Orphans(ctx context.Context) ([]models.Upload, error) {
	return s.repos.Uploads.ListOrphans(ctx)
}
