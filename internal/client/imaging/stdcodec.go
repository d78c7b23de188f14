package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/webp"
)

// StdCodec implements Codec with the standard library codecs plus
// golang.org/x/image/webp for decoding. WebP encoding has no pure Go
// implementation and reports an error, which makes callers upload the
// original file.
type StdCodec struct{}

func (StdCodec) Decode(ctx context.Context, data []byte, mediaType string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := bytes.NewReader(data)
	switch mediaType {
	case "image/jpeg", "image/jpg":
		return jpeg.Decode(r)
	case "image/png":
		return png.Decode(r)
	case "image/gif":
		return gif.Decode(r)
	case "image/webp":
		return webp.Decode(r)
	default:
		return nil, fmt.Errorf("unsupported media type %q", mediaType)
	}
}

func (StdCodec) Encode(ctx context.Context, img image.Image, mediaType string, quality float64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch mediaType {
	case "image/jpeg", "image/jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality(quality)}); err != nil {
			return nil, err
		}
	case "image/png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "image/gif":
		if err := gif.Encode(&buf, img, &gif.Options{NumColors: 256}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("encoding %q is not supported", mediaType)
	}
	return buf.Bytes(), nil
}

// jpegQuality maps a (0, 1] quality factor onto libjpeg's 1..100 scale.
func jpegQuality(q float64) int {
	v := int(q*100 + 0.5)
	if v < 1 {
		return 1
	}
	if v > 100 {
		return 100
	}
	return v
}
