package imaging

import (
	"context"
	"fmt"
	"image"

	"github.com/dmitrijs2005/gophmarket/internal/client/models"
	"github.com/dmitrijs2005/gophmarket/internal/cryptox"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/draw"
)

// Defaults applied when Options fields are zero.
const (
	DefaultMaxWidth  = 1200
	DefaultQuality   = 0.85
	DefaultCacheSize = 32
)

// Options control downsampling and re-encoding.
type Options struct {
	MaxWidth int
	Quality  float64
}

func (o Options) withDefaults() Options {
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.Quality <= 0 || o.Quality > 1 {
		o.Quality = DefaultQuality
	}
	return o
}

// Compressor scales images wider than MaxWidth down to MaxWidth and
// re-encodes every image at Quality in its original media type.
type Compressor struct {
	codec Codec
	opts  Options
	cache *lru.Cache[string, models.Candidate]
}

// NewCompressor builds a compressor. cacheSize <= 0 disables result caching.
func NewCompressor(codec Codec, opts Options, cacheSize int) (*Compressor, error) {
	c := &Compressor{codec: codec, opts: opts.withDefaults()}
	if cacheSize > 0 {
		cache, err := lru.New[string, models.Candidate](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("compressor cache: %w", err)
		}
		c.cache = cache
	}
	return c, nil
}

// Compress returns a re-encoded copy of src with the same name and media
// type. When re-encoding does not make the file smaller src itself is
// returned. Errors wrap ErrDecode, ErrEncode or ErrCodecUnavailable.
func (c *Compressor) Compress(ctx context.Context, src models.Candidate) (models.Candidate, error) {
	if c == nil || c.codec == nil {
		return src, ErrCodecUnavailable
	}

	key := c.cacheKey(src)
	if c.cache != nil {
		if out, ok := c.cache.Get(key); ok {
			return out, nil
		}
	}

	img, err := c.codec.Decode(ctx, src.Data, src.MediaType)
	if err != nil {
		return src, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if img == nil {
		return src, ErrDecode
	}

	img = fitWidth(img, c.opts.MaxWidth)

	data, err := c.codec.Encode(ctx, img, src.MediaType, c.opts.Quality)
	if err != nil {
		return src, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	if len(data) == 0 {
		return src, ErrEncode
	}

	out := src
	if int64(len(data)) < src.Size {
		out = models.NewCandidate(src.Name, src.MediaType, data)
	}

	if c.cache != nil {
		c.cache.Add(key, out)
	}
	return out, nil
}

func (c *Compressor) cacheKey(src models.Candidate) string {
	return fmt.Sprintf("%s|%s|%d|%.3f", cryptox.Digest(src.Data), src.MediaType, c.opts.MaxWidth, c.opts.Quality)
}

// fitWidth scales img so its width is at most maxWidth, keeping the aspect
// ratio. Images already narrow enough are returned unchanged.
func fitWidth(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxWidth || w == 0 {
		return img
	}

	nh := (h*maxWidth + w/2) / w
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
