package netx

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressReader_MonotonicAndComplete(t *testing.T) {
	body := bytes.Repeat([]byte("x"), 10_000)
	var got []int
	r := NewProgressReader(body, func(p models.Progress) {
		assert.Equal(t, int64(len(body)), p.Total)
		got = append(got, p.Percentage)
	})

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Len(t, out, len(body))

	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i], got[i-1])
	}
	assert.Equal(t, 100, got[len(got)-1])
}

func TestProgressReader_RewindStartsNewPass(t *testing.T) {
	body := bytes.Repeat([]byte("y"), 1000)
	var passes [][]int
	r := NewProgressReader(body, func(p models.Progress) {
		passes[len(passes)-1] = append(passes[len(passes)-1], p.Percentage)
	})

	for i := 0; i < 2; i++ {
		if i > 0 {
			_, err := r.Seek(0, io.SeekStart)
			require.NoError(t, err)
		}
		passes = append(passes, nil)
		_, err := io.Copy(io.Discard, r)
		require.NoError(t, err)
	}

	require.Len(t, passes, 2)
	assert.Equal(t, passes[0], passes[1], "each pass reports from the start")
	assert.Equal(t, 100, passes[1][len(passes[1])-1])
	assert.Equal(t, int64(1000), r.Size())
}

func TestProgressReader_RewindThroughEmitterDoesNotRegress(t *testing.T) {
	body := bytes.Repeat([]byte("z"), 4096)
	ch := make(chan models.Progress, 512)
	e := NewEmitter(context.Background(), ch)
	r := NewProgressReader(body, e.Emit)

	buf := make([]byte, 1024)
	_, err := r.Read(buf)
	require.NoError(t, err)
	_, err = r.Read(buf)
	require.NoError(t, err)
	_, err = r.Seek(0, io.SeekStart)
	require.NoError(t, err)
	for err == nil {
		_, err = r.Read(buf)
	}
	require.ErrorIs(t, err, io.EOF)
	e.Close()
	close(ch)

	var got []int
	for p := range ch {
		got = append(got, p.Percentage)
	}
	assert.Equal(t, []int{25, 50, 75, 100}, got)
}

func TestEmitter_DeliversUntilClosed(t *testing.T) {
	ch := make(chan models.Progress, 4)
	e := NewEmitter(context.Background(), ch)

	e.Emit(models.NewProgress(1, 2))
	e.Close()
	e.Close()
	e.Emit(models.NewProgress(2, 2))

	require.Len(t, ch, 1)
	assert.Equal(t, 50, (<-ch).Percentage)
}

func TestEmitter_DropsNonIncreasing(t *testing.T) {
	ch := make(chan models.Progress, 8)
	e := NewEmitter(context.Background(), ch)

	e.Emit(models.NewProgress(3, 10))
	e.Emit(models.NewProgress(3, 10))
	e.Emit(models.NewProgress(1, 10))
	e.Complete(10)
	e.Complete(10)
	close(ch)

	var got []int
	for p := range ch {
		got = append(got, p.Percentage)
	}
	assert.Equal(t, []int{30, 100}, got)
}

func TestEmitter_GivesUpOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	e := NewEmitter(ctx, make(chan models.Progress))

	done := make(chan struct{})
	go func() {
		e.Emit(models.NewProgress(1, 1))
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked after cancellation")
	}
}

func TestEmitter_NilSafe(t *testing.T) {
	var e *Emitter
	e.Emit(models.Progress{})
	e.Close()
	NewEmitter(context.Background(), nil).Emit(models.Progress{})
}

func TestBuildMultipart_FieldsAndFile(t *testing.T) {
	body, ct, err := BuildMultipart(
		FormFile{Field: "file", FileName: "a.png", ContentType: "image/png", Data: []byte("PNGDATA")},
		Field{Name: "upload_preset", Value: "unsigned"},
		Field{Name: "folder", Value: "svg-marketplace"},
	)
	require.NoError(t, err)

	mt, params, err := mime.ParseMediaType(ct)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mt)

	mr := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	form, err := mr.ReadForm(1 << 20)
	require.NoError(t, err)

	assert.Equal(t, []string{"unsigned"}, form.Value["upload_preset"])
	assert.Equal(t, []string{"svg-marketplace"}, form.Value["folder"])
	require.Len(t, form.File["file"], 1)
	fh := form.File["file"][0]
	assert.Equal(t, "a.png", fh.Filename)
	assert.Equal(t, "image/png", fh.Header.Get("Content-Type"))

	f, err := fh.Open()
	require.NoError(t, err)
	data, _ := io.ReadAll(f)
	assert.Equal(t, "PNGDATA", string(data))
}
