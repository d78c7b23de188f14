package batch

import (
	"context"
	"errors"
	"path"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/gophmarket/internal/client/models"
	"github.com/dmitrijs2005/gophmarket/internal/client/transport"
	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/dmitrijs2005/gophmarket/internal/logging"
	"github.com/google/uuid"
)

// Defaults applied when Options fields are zero.
const (
	DefaultMaxImages         = 5
	DefaultCompressThreshold = 1 * common.MiB
)

// Options tune a Coordinator.
type Options struct {
	// MaxImages caps visible slots: committed images, uploads in flight and
	// kept failures.
	MaxImages int
	// Compress enables the compressor for candidates larger than
	// CompressThreshold bytes.
	Compress          bool
	CompressThreshold int64
	// KeepFailed leaves failed slots visible, with their candidate, so they
	// can be retried or dismissed. Otherwise failures are dropped when their
	// batch completes.
	KeepFailed bool
}

func (o Options) withDefaults() Options {
	if o.MaxImages <= 0 {
		o.MaxImages = DefaultMaxImages
	}
	if o.CompressThreshold <= 0 {
		o.CompressThreshold = DefaultCompressThreshold
	}
	return o
}

// Compressor shrinks a candidate. On error the original is uploaded.
type Compressor interface {
	Compress(ctx context.Context, c models.Candidate) (models.Candidate, error)
}

// UploadedImage describes one successful upload of a batch or retry.
type UploadedImage struct {
	SlotID   string
	Name     string
	URL      string
	PublicID string
	// Size and Digest describe the bytes actually sent.
	Size   int64
	Digest string
}

// Failure describes one failed slot of a batch or retry.
type Failure struct {
	SlotID  string
	Name    string
	Reason  models.FailureReason
	Message string
}

// Outcome summarises a completed batch or retry. Images is the list that was
// published on completion.
type Outcome struct {
	Uploaded []UploadedImage
	Failures []Failure
	Images   []string
}

type slot struct {
	state     models.UploadState
	candidate *models.Candidate
	committed bool
	// batch is set while the slot belongs to a run that has not settled.
	batch  string
	cancel context.CancelFunc
}

type snapshot struct {
	version uint64
	slots   []slot
}

func (s *snapshot) states() []models.UploadState {
	out := make([]models.UploadState, len(s.slots))
	for i := range s.slots {
		out[i] = s.slots[i].state
	}
	return out
}

func (s *snapshot) images() []string {
	out := make([]string, 0, len(s.slots))
	for _, sl := range s.slots {
		if sl.committed && sl.state.Status == models.SlotSucceeded {
			out = append(out, sl.state.URL)
		}
	}
	return out
}

func indexOf(slots []slot, id string) int {
	return slices.IndexFunc(slots, func(s slot) bool { return s.state.ID == id })
}

var errNoChange = errors.New("no change")

// Coordinator runs upload batches for one editing session.
type Coordinator struct {
	uploader   transport.Uploader
	compressor Compressor
	log        logging.Logger
	opts       Options
	observer   Observer

	state atomic.Pointer[snapshot]
}

// New builds a coordinator whose list starts with initial, the images the
// caller already owns. compressor may be nil, which disables compression.
func New(uploader transport.Uploader, compressor Compressor, log logging.Logger, opts Options, initial []string, observer Observer) *Coordinator {
	if observer == nil {
		observer = NopObserver{}
	}
	if log == nil {
		log = logging.NewNop()
	}
	c := &Coordinator{
		uploader:   uploader,
		compressor: compressor,
		log:        log,
		opts:       opts.withDefaults(),
		observer:   observer,
	}

	slots := make([]slot, 0, len(initial))
	for _, u := range initial {
		slots = append(slots, slot{
			state: models.UploadState{
				ID:       uuid.NewString(),
				Name:     path.Base(u),
				URL:      u,
				Progress: 100,
				Status:   models.SlotSucceeded,
			},
			committed: true,
		})
	}
	c.state.Store(&snapshot{slots: slots})
	return c
}

// Options returns the effective options.
func (c *Coordinator) Options() Options {
	return c.opts
}

// Slots returns the current slot states in display order.
func (c *Coordinator) Slots() []models.UploadState {
	return c.state.Load().states()
}

// Images returns the committed image list.
func (c *Coordinator) Images() []string {
	return c.state.Load().images()
}

// Version is the version of the current slot snapshot.
func (c *Coordinator) Version() uint64 {
	return c.state.Load().version
}

// update applies fn to a private copy of the current slots and installs the
// result, retrying when another goroutine won the race. fn may run several
// times. Returning errNoChange leaves the state untouched.
func (c *Coordinator) update(fn func(slots []slot) ([]slot, error)) (*snapshot, error) {
	for {
		cur := c.state.Load()
		next, err := fn(slices.Clone(cur.slots))
		if errors.Is(err, errNoChange) {
			return cur, nil
		}
		if err != nil {
			return cur, err
		}
		ns := &snapshot{version: cur.version + 1, slots: next}
		if c.state.CompareAndSwap(cur, ns) {
			c.observer.SlotsChanged(ns.version, ns.states())
			return ns, nil
		}
	}
}

func (c *Coordinator) publish(s *snapshot) []string {
	images := s.images()
	c.observer.ImagesChanged(images)
	return images
}

// Submit uploads candidates as one batch and blocks until every slot is
// terminal. The ceiling check and the creation of placeholder slots happen
// in a single atomic step; a rejected submission leaves no slots behind.
func (c *Coordinator) Submit(ctx context.Context, candidates []models.Candidate) (Outcome, error) {
	if len(candidates) == 0 {
		return Outcome{}, ErrNoFiles
	}

	batchID := uuid.NewString()
	ids := make([]string, len(candidates))
	ctxs := make([]context.Context, len(candidates))
	placeholders := make([]slot, len(candidates))
	for i, cand := range candidates {
		cand.Data = slices.Clone(cand.Data)

		var cancel context.CancelFunc
		ctxs[i], cancel = context.WithCancel(ctx)
		ids[i] = uuid.NewString()
		placeholders[i] = slot{
			state: models.UploadState{
				ID:        ids[i],
				Name:      cand.Name,
				Uploading: true,
				Status:    models.SlotUploading,
			},
			candidate: &cand,
			batch:     batchID,
			cancel:    cancel,
		}
	}

	_, err := c.update(func(slots []slot) ([]slot, error) {
		if visible := len(slots); visible+len(placeholders) > c.opts.MaxImages {
			return nil, &LimitError{Max: c.opts.MaxImages, Remaining: max(0, c.opts.MaxImages-visible)}
		}
		return append(slots, placeholders...), nil
	})
	if err != nil {
		for _, p := range placeholders {
			p.cancel()
		}
		return Outcome{}, err
	}

	c.log.Info(ctx, "batch started", "batch", batchID, "files", len(candidates))

	results := make([]runResult, len(candidates))
	var wg sync.WaitGroup
	for i := range placeholders {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.run(ctxs[i], ids[i], *placeholders[i].candidate)
		}(i)
	}
	wg.Wait()

	settled, _ := c.update(func(slots []slot) ([]slot, error) {
		out := slots[:0]
		for _, s := range slots {
			if s.batch != batchID {
				out = append(out, s)
				continue
			}
			s = settle(s)
			if s.state.Status == models.SlotFailed && !c.opts.KeepFailed {
				continue
			}
			out = append(out, s)
		}
		return out, nil
	})

	out := Outcome{Images: c.publish(settled)}
	for i, r := range results {
		if r.result.Success() {
			out.Uploaded = append(out.Uploaded, r.uploaded(ids[i], candidates[i].Name))
			continue
		}
		out.Failures = append(out.Failures, Failure{
			SlotID:  ids[i],
			Name:    candidates[i].Name,
			Reason:  r.result.Err.Reason,
			Message: r.result.Err.Message,
		})
	}

	c.log.Info(ctx, "batch finished", "batch", batchID, "uploaded", len(out.Uploaded), "failed", len(out.Failures))
	return out, nil
}

// settle commits a terminal slot at the end of its run.
func settle(s slot) slot {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.batch = ""
	if s.state.Status == models.SlotSucceeded {
		s.committed = true
		s.candidate = nil
	}
	return s
}

// Retry re-runs a kept failed slot in place. On success the URL takes that
// slot's position in the list. The list is published when the retry ends.
func (c *Coordinator) Retry(ctx context.Context, slotID string) (Outcome, error) {
	runCtx, cancel := context.WithCancel(ctx)
	runID := "retry-" + uuid.NewString()

	var cand models.Candidate
	_, err := c.update(func(slots []slot) ([]slot, error) {
		i := indexOf(slots, slotID)
		if i < 0 {
			return nil, ErrSlotNotFound
		}
		s := slots[i]
		if s.state.Status != models.SlotFailed || s.candidate == nil || s.batch != "" {
			return nil, ErrNotRetryable
		}
		cand = *s.candidate
		s.state = models.UploadState{
			ID:        s.state.ID,
			Name:      s.state.Name,
			Uploading: true,
			Status:    models.SlotUploading,
		}
		s.batch = runID
		s.cancel = cancel
		slots[i] = s
		return slots, nil
	})
	if err != nil {
		cancel()
		return Outcome{}, err
	}

	r := c.run(runCtx, slotID, cand)

	settled, _ := c.update(func(slots []slot) ([]slot, error) {
		i := indexOf(slots, slotID)
		if i < 0 || slots[i].batch != runID {
			return nil, errNoChange
		}
		slots[i] = settle(slots[i])
		return slots, nil
	})
	cancel()

	out := Outcome{Images: c.publish(settled)}
	if r.result.Success() {
		out.Uploaded = []UploadedImage{r.uploaded(slotID, cand.Name)}
	} else {
		out.Failures = []Failure{{SlotID: slotID, Name: cand.Name, Reason: r.result.Err.Reason, Message: r.result.Err.Message}}
	}
	c.log.Info(ctx, "retry finished", "slot", slotID, "success", r.result.Success())
	return out, nil
}

// Cancel aborts one in-flight upload. The slot fails with a cancelled reason.
func (c *Coordinator) Cancel(slotID string) error {
	slots := c.state.Load().slots
	i := indexOf(slots, slotID)
	if i < 0 {
		return ErrSlotNotFound
	}
	if !slots[i].state.Uploading || slots[i].cancel == nil {
		return ErrNotInFlight
	}
	slots[i].cancel()
	return nil
}

// Dismiss drops a failed slot without retrying it.
func (c *Coordinator) Dismiss(slotID string) error {
	_, err := c.update(func(slots []slot) ([]slot, error) {
		i := indexOf(slots, slotID)
		if i < 0 {
			return nil, ErrSlotNotFound
		}
		if slots[i].state.Status != models.SlotFailed {
			return nil, ErrNotFailed
		}
		return slices.Delete(slots, i, i+1), nil
	})
	return err
}

// Remove deletes the image at position index of the published list and
// publishes the shortened list. The remote object is left untouched.
func (c *Coordinator) Remove(index int) (string, error) {
	var removed string
	s, err := c.update(func(slots []slot) ([]slot, error) {
		n := -1
		for i, sl := range slots {
			if !sl.committed || sl.state.Status != models.SlotSucceeded {
				continue
			}
			n++
			if n == index {
				removed = sl.state.URL
				return slices.Delete(slots, i, i+1), nil
			}
		}
		return nil, ErrIndexOutOfRange
	})
	if err != nil {
		return "", err
	}
	c.publish(s)
	return removed, nil
}
