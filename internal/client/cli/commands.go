package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/client/batch"
	"github.com/dmitrijs2005/gophmarket/internal/client/models"
	"github.com/dmitrijs2005/gophmarket/internal/client/services"
)

// ErrAmbiguousSlot is returned when a slot prefix matches several slots.
var ErrAmbiguousSlot = errors.New("slot reference is ambiguous")

// status renders the prompt suffix for the current draft.
func (a *App) status() string {
	d := a.images.Current()
	if d == nil {
		return "(no draft)"
	}
	return fmt.Sprintf("(%s %d/%d)", d.Title, len(d.Images), a.maxImages)
}

func (a *App) Drafts(ctx context.Context) error {
	drafts, err := a.images.Drafts(ctx)
	if err != nil {
		return err
	}
	if len(drafts) == 0 {
		a.println("No drafts")
		return nil
	}

	cur := a.images.Current()
	for _, d := range drafts {
		marker := " "
		if cur != nil && cur.ID == d.ID {
			marker = "*"
		}
		listing := d.ListingID
		if listing == "" {
			listing = "-"
		}
		a.printf("%s %s  %-24s images=%d listing=%s updated=%s\n",
			marker, d.ID, d.Title, len(d.Images), listing, d.UpdatedAt.Local().Format(time.DateTime))
	}
	return nil
}

func (a *App) NewDraft(ctx context.Context, title string) error {
	if title == "" {
		title = "Untitled"
	}
	a.renderer.reset()
	d, err := a.images.NewDraft(ctx, title)
	if err != nil {
		return err
	}
	a.printf("Created draft %s (%s)\n", d.ID, d.Title)
	return nil
}

func (a *App) Open(ctx context.Context, id string) error {
	a.renderer.reset()
	d, err := a.images.OpenDraft(ctx, id)
	if err != nil {
		return err
	}
	a.printf("Opened draft %s (%s) with %d image(s)\n", d.ID, d.Title, len(d.Images))
	return nil
}

// Add uploads paths in the background. The summary is printed when the
// batch completes.
func (a *App) Add(ctx context.Context, paths []string) error {
	if a.images.Current() == nil {
		return services.ErrNoDraft
	}
	a.printf("Uploading %d file(s)...\n", len(paths))
	a.background(func() {
		out, err := a.images.AddFiles(ctx, paths)
		a.report(out, err)
	})
	return nil
}

// Upload adds paths to the current draft and waits for the batch. The
// outcome is printed; a rejected submission is returned untouched.
func (a *App) Upload(ctx context.Context, paths []string) (batch.Outcome, error) {
	out, err := a.images.AddFiles(ctx, paths)
	if err != nil {
		return out, err
	}
	a.report(out, nil)
	return out, nil
}

func (a *App) background(fn func()) {
	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		fn()
	}()
}

// report prints the outcome of a batch or retry.
func (a *App) report(out batch.Outcome, err error) {
	var limit *batch.LimitError
	switch {
	case errors.As(err, &limit):
		a.println(limit.Error())
		return
	case err != nil && len(out.Images) == 0 && len(out.Uploaded) == 0:
		a.println("Error:", err)
		return
	}

	for _, u := range out.Uploaded {
		a.printf("Uploaded %s: %s\n", u.Name, u.URL)
	}
	for _, f := range out.Failures {
		a.printf("Failed %s: %s\n", f.Name, f.Message)
	}
	if err != nil {
		a.println("Error:", err)
	}
}

func (a *App) Slots(_ context.Context) error {
	if a.images.Current() == nil {
		return services.ErrNoDraft
	}
	slots := a.images.Slots()
	if len(slots) == 0 {
		a.println("No upload slots")
		return nil
	}
	for i, s := range slots {
		a.printf("%d. %s  %s\n", i+1, shortID(s.ID), slotLine(s))
	}
	return nil
}

func (a *App) Images(_ context.Context) error {
	if a.images.Current() == nil {
		return services.ErrNoDraft
	}
	images := a.images.Images()
	if len(images) == 0 {
		a.println("No images")
		return nil
	}
	for i, u := range images {
		a.printf("%d. %s\n", i+1, u)
	}
	return nil
}

func (a *App) Retry(ctx context.Context, ref string) error {
	id, err := a.resolveSlot(ref)
	if err != nil {
		return err
	}
	a.background(func() {
		out, err := a.images.Retry(ctx, id)
		a.report(out, err)
	})
	return nil
}

func (a *App) Cancel(_ context.Context, ref string) error {
	id, err := a.resolveSlot(ref)
	if err != nil {
		return err
	}
	return a.images.Cancel(id)
}

func (a *App) Dismiss(_ context.Context, ref string) error {
	id, err := a.resolveSlot(ref)
	if err != nil {
		return err
	}
	if err := a.images.Dismiss(id); err != nil {
		return err
	}
	a.println("Dismissed")
	return nil
}

// Remove drops image n, counted from 1 as listed by Images.
func (a *App) Remove(ctx context.Context, n int) error {
	url, err := a.images.Remove(ctx, n-1)
	if err != nil {
		return err
	}
	a.printf("Removed %s (the stored object is kept)\n", url)
	return nil
}

func (a *App) Publish(ctx context.Context, listingID string) error {
	if a.publishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.publishTimeout)
		defer cancel()
	}
	if err := a.images.Publish(ctx, listingID); err != nil {
		return err
	}
	a.printf("Published %d image(s) to listing %s\n", len(a.images.Images()), listingID)
	return nil
}

func (a *App) Orphans(ctx context.Context) error {
	orphans, err := a.images.Orphans(ctx)
	if err != nil {
		return err
	}
	if len(orphans) == 0 {
		a.println("No orphaned uploads")
		return nil
	}
	for _, u := range orphans {
		a.printf("%s  draft=%s size=%d %s\n", u.PublicID, u.DraftID, u.Size, u.URL)
	}
	return nil
}

// resolveSlot maps a slot number or id prefix to a slot id.
func (a *App) resolveSlot(ref string) (string, error) {
	if a.images.Current() == nil {
		return "", services.ErrNoDraft
	}
	slots := a.images.Slots()
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(slots) {
			return "", batch.ErrSlotNotFound
		}
		return slots[n-1].ID, nil
	}

	match := ""
	for _, s := range slots {
		if s.ID == ref {
			return s.ID, nil
		}
		if strings.HasPrefix(s.ID, ref) {
			if match != "" {
				return "", ErrAmbiguousSlot
			}
			match = s.ID
		}
	}
	if match == "" {
		return "", batch.ErrSlotNotFound
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// slotLine describes a slot without a progress bar.
func slotLine(s models.UploadState) string {
	switch s.Status {
	case models.SlotUploading:
		return fmt.Sprintf("%s uploading %d%%", s.Name, s.Progress)
	case models.SlotSucceeded:
		return fmt.Sprintf("%s uploaded %s", s.Name, s.URL)
	default:
		return fmt.Sprintf("%s failed: %s", s.Name, s.Error)
	}
}
