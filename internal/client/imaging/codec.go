// Package imaging downsamples and recompresses images before upload.
//
// Decoding and encoding are reached through the Codec capability so the
// compressor can run against real codecs (StdCodec) or an in-memory fake
// (MemoryCodec) in tests.
package imaging

import (
	"context"
	"errors"
	"image"
)

var (
	ErrDecode           = errors.New("failed to load image")
	ErrEncode           = errors.New("failed to compress image")
	ErrCodecUnavailable = errors.New("image codec unavailable")
)

// Codec decodes and encodes images of a given media type.
type Codec interface {
	Decode(ctx context.Context, data []byte, mediaType string) (image.Image, error)
	// Encode serialises img in mediaType; quality is in (0, 1] and only
	// honoured by lossy formats.
	Encode(ctx context.Context, img image.Image, mediaType string, quality float64) ([]byte, error)
}
