// Package transport moves validated candidates to remote storage.
//
// Every implementation resolves each call to a models.UploadResult: a
// configuration gap, a rejected file, a network fault and a bad response are
// all reported as failure values, never as panics or returned errors.
package transport

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophmarket/internal/client/models"
	"github.com/dmitrijs2005/gophmarket/internal/client/validation"
)

// Messages reported in failure results.
const (
	MsgNotConfigured     = "Upload destination not configured. Please set cloud name and upload preset."
	MsgS3NotConfigured   = "Upload destination not configured. Please set bucket, region and public base URL."
	MsgMalformedResponse = "Failed to parse upload response"
	MsgStatusFormat      = "Upload failed with status %d"
	MsgNetwork           = "Network error during upload"
	MsgCancelled         = "Upload cancelled"
)

// Uploader sends one candidate and reports byte progress on the supplied
// channel, which may be nil. Percentages sent on progress never decrease.
// The channel is not written to after Upload returns.
type Uploader interface {
	Upload(ctx context.Context, c models.Candidate, progress chan<- models.Progress) models.UploadResult
}

// UploaderFunc adapts a function to Uploader.
type UploaderFunc func(ctx context.Context, c models.Candidate, progress chan<- models.Progress) models.UploadResult

func (f UploaderFunc) Upload(ctx context.Context, c models.Candidate, progress chan<- models.Progress) models.UploadResult {
	return f(ctx, c, progress)
}

// revalidate repeats the validator so a transport used without the
// coordinator still refuses bad input.
func revalidate(c models.Candidate) (models.UploadResult, bool) {
	if err := validation.Validate(&c); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			return models.Failed(models.ReasonValidation, verr.Message), false
		}
		return models.Failed(models.ReasonValidation, err.Error()), false
	}
	return models.UploadResult{}, true
}

// transportFailure classifies an error raised while the request was in
// flight.
func transportFailure(ctx context.Context, err error) models.UploadResult {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return models.Failed(models.ReasonCancelled, MsgCancelled)
	}
	return models.Failed(models.ReasonNetwork, MsgNetwork)
}
