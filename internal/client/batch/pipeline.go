package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophmarket/internal/client/models"
	"github.com/dmitrijs2005/gophmarket/internal/client/transport"
	"github.com/dmitrijs2005/gophmarket/internal/client/validation"
	"github.com/dmitrijs2005/gophmarket/internal/cryptox"
)

type runResult struct {
	result models.UploadResult
	size   int64
	digest string
}

func (r runResult) uploaded(slotID, name string) UploadedImage {
	return UploadedImage{
		SlotID:   slotID,
		Name:     name,
		URL:      r.result.URL,
		PublicID: r.result.PublicID,
		Size:     r.size,
		Digest:   r.digest,
	}
}

// run drives one candidate through validation, compression and upload, then
// records the terminal state on its slot. It never panics.
func (c *Coordinator) run(ctx context.Context, slotID string, cand models.Candidate) (r runResult) {
	defer func() {
		if p := recover(); p != nil {
			c.log.Error(ctx, "upload pipeline panicked", "slot", slotID, "panic", fmt.Sprint(p))
			r = runResult{result: models.Failed(models.ReasonInternal, "Unexpected error during upload")}
		}
		c.finish(slotID, r.result)
	}()

	if err := validation.Validate(&cand); err != nil {
		var verr *validation.Error
		msg := err.Error()
		if errors.As(err, &verr) {
			msg = verr.Message
		}
		return runResult{result: models.Failed(models.ReasonValidation, msg)}
	}

	cand = c.maybeCompress(ctx, slotID, cand)
	if ctx.Err() != nil {
		return runResult{result: models.Failed(models.ReasonCancelled, transport.MsgCancelled)}
	}

	progress := make(chan models.Progress)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for p := range progress {
			c.raiseProgress(slotID, p.Percentage)
		}
	}()
	// Runs before the recover above, so a panicking uploader still
	// releases the drain goroutine.
	defer func() {
		close(progress)
		<-drained
	}()

	res := c.uploader.Upload(ctx, cand, progress)

	r = runResult{result: res}
	if res.Success() {
		r.size = cand.Size
		r.digest = cryptox.Digest(cand.Data)
	}
	return r
}

func (c *Coordinator) maybeCompress(ctx context.Context, slotID string, cand models.Candidate) models.Candidate {
	if !c.opts.Compress || c.compressor == nil || cand.Size <= c.opts.CompressThreshold {
		return cand
	}
	out, err := c.compressor.Compress(ctx, cand)
	if err != nil {
		c.log.Warn(ctx, "compression failed, uploading original", "slot", slotID, "file", cand.Name, "error", err)
		return cand
	}
	c.log.Debug(ctx, "compressed", "slot", slotID, "from", cand.Size, "to", out.Size)
	return out
}

func (c *Coordinator) raiseProgress(slotID string, pct int) {
	_, _ = c.update(func(slots []slot) ([]slot, error) {
		i := indexOf(slots, slotID)
		if i < 0 || !slots[i].state.Uploading || pct <= slots[i].state.Progress {
			return nil, errNoChange
		}
		slots[i].state.Progress = min(pct, 100)
		return slots, nil
	})
}

func (c *Coordinator) finish(slotID string, res models.UploadResult) {
	_, _ = c.update(func(slots []slot) ([]slot, error) {
		i := indexOf(slots, slotID)
		if i < 0 || !slots[i].state.Uploading {
			return nil, errNoChange
		}
		st := &slots[i].state
		st.Uploading = false
		if res.Success() {
			st.Status = models.SlotSucceeded
			st.URL = res.URL
			st.PublicID = res.PublicID
			st.Progress = 100
			st.Error = ""
		} else {
			st.Status = models.SlotFailed
			st.Error = res.ErrorMessage()
		}
		return slots, nil
	})
}
