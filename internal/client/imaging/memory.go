package imaging

import (
	"context"
	"image"
	"sync/atomic"
)

// MemoryCodec is an in-memory Codec for tests: Decode returns Image (or
// DecodeErr) and Encode returns Encoded (or EncodeErr) without touching
// real codecs. The last image passed to Encode is kept for inspection.
type MemoryCodec struct {
	Image     image.Image
	Encoded   []byte
	DecodeErr error
	EncodeErr error

	encodeCalls atomic.Int32
	lastEncoded atomic.Pointer[image.Image]
}

func (m *MemoryCodec) Decode(_ context.Context, _ []byte, _ string) (image.Image, error) {
	if m.DecodeErr != nil {
		return nil, m.DecodeErr
	}
	return m.Image, nil
}

func (m *MemoryCodec) Encode(_ context.Context, img image.Image, _ string, _ float64) ([]byte, error) {
	m.encodeCalls.Add(1)
	m.lastEncoded.Store(&img)
	if m.EncodeErr != nil {
		return nil, m.EncodeErr
	}
	out := make([]byte, len(m.Encoded))
	copy(out, m.Encoded)
	return out, nil
}

// EncodeCalls returns how many times Encode ran.
func (m *MemoryCodec) EncodeCalls() int {
	return int(m.encodeCalls.Load())
}

// LastEncoded returns the image most recently handed to Encode.
func (m *MemoryCodec) LastEncoded() image.Image {
	p := m.lastEncoded.Load()
	if p == nil {
		return nil
	}
	return *p
}
