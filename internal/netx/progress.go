// Package netx contains HTTP upload helpers: multipart body construction and
// progress-tracked request bodies.
package netx

import (
	"bytes"
	"context"
	"sync"

	"github.com/dmitrijs2005/gophmarket/internal/client/models"
)

// ProgressReader serves an in-memory request body and reports how much of
// it has been consumed. Reports are only made when the rounded percentage
// grows within one pass over the body. Rewinding to the start begins a new
// pass, e.g. a retried request; Emitter keeps what observers see
// non-decreasing across passes.
type ProgressReader struct {
	r      *bytes.Reader
	total  int64
	last   int
	report func(models.Progress)
}

// NewProgressReader wraps body. report may be nil.
func NewProgressReader(body []byte, report func(models.Progress)) *ProgressReader {
	return &ProgressReader{r: bytes.NewReader(body), total: int64(len(body)), last: -1, report: report}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.report != nil && p.total > 0 {
		pr := models.NewProgress(p.total-int64(p.r.Len()), p.total)
		if pr.Percentage > p.last {
			p.last = pr.Percentage
			p.report(pr)
		}
	}
	return n, err
}

func (p *ProgressReader) Seek(offset int64, whence int) (int64, error) {
	pos, err := p.r.Seek(offset, whence)
	if err == nil && pos == 0 {
		p.last = -1
	}
	return pos, err
}

// Size is the full body length.
func (p *ProgressReader) Size() int64 {
	return p.total
}

// Emitter forwards progress to a caller supplied channel until Close. HTTP
// transports may read a request body after the round trip returned; Close
// guarantees nothing is sent once the upload has resolved.
type Emitter struct {
	mu     sync.Mutex
	ctx    context.Context
	ch     chan<- models.Progress
	last   int
	closed bool
}

// NewEmitter returns an emitter for ch. A nil ch makes Emit a no-op.
func NewEmitter(ctx context.Context, ch chan<- models.Progress) *Emitter {
	return &Emitter{ctx: ctx, ch: ch, last: -1}
}

// Emit delivers p unless its percentage is not above the last delivered
// one. It gives up if the context ends first.
func (e *Emitter) Emit(p models.Progress) {
	if e == nil || e.ch == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || p.Percentage <= e.last {
		return
	}
	select {
	case e.ch <- p:
		e.last = p.Percentage
	case <-e.ctx.Done():
	}
}

// Complete emits the final 100% observation for a body of total bytes if
// it has not been delivered yet.
func (e *Emitter) Complete(total int64) {
	if total <= 0 {
		total = 1
	}
	e.Emit(models.NewProgress(total, total))
}

// Close stops delivery. It is safe to call more than once.
func (e *Emitter) Close() {
	if e == nil {
		return
	}
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}
