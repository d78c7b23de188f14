package cli

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophmarket/internal/client/models"
	"github.com/stretchr/testify/assert"
)

func uploading(id, name string, p int) models.UploadState {
	return models.UploadState{ID: id, Name: name, Uploading: true, Progress: p, Status: models.SlotUploading}
}

func TestRenderer_TransitionLines(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(&buf, false, 80)

	seed := models.UploadState{ID: "s0", Name: "old.png", URL: "https://cdn/old.png", Progress: 100, Status: models.SlotSucceeded}

	r.SlotsChanged(1, []models.UploadState{seed, uploading("s1", "a.png", 0), uploading("s2", "b.png", 0)})
	r.SlotsChanged(2, []models.UploadState{seed, uploading("s1", "a.png", 50), uploading("s2", "b.png", 0)})
	r.SlotsChanged(3, []models.UploadState{seed,
		{ID: "s1", Name: "a.png", URL: "https://cdn/a.png", Progress: 100, Status: models.SlotSucceeded},
		{ID: "s2", Name: "b.png", Error: "Network error during upload", Status: models.SlotFailed},
	})
	r.ImagesChanged([]string{"https://cdn/old.png", "https://cdn/a.png"})

	assert.Equal(t, "a.png uploading 0%\n"+
		"b.png uploading 0%\n"+
		"a.png uploaded https://cdn/a.png\n"+
		"b.png failed: Network error during upload\n"+
		"Draft has 2 image(s)\n", buf.String())
}

func TestRenderer_DropsStaleVersions(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(&buf, false, 80)

	r.SlotsChanged(5, []models.UploadState{uploading("s1", "a.png", 10)})
	r.SlotsChanged(4, []models.UploadState{{ID: "s1", Name: "a.png", Status: models.SlotFailed, Error: "late"}})

	assert.Equal(t, "a.png uploading 10%\n", buf.String())

	r.reset()
	buf.Reset()
	r.SlotsChanged(1, []models.UploadState{uploading("t1", "c.png", 0)})
	assert.Equal(t, "c.png uploading 0%\n", buf.String())
}

func TestRenderer_RetryShowsAgain(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(&buf, false, 80)

	failed := models.UploadState{ID: "s1", Name: "a.png", Status: models.SlotFailed, Error: "Upload cancelled"}
	r.SlotsChanged(1, []models.UploadState{failed})
	r.SlotsChanged(2, []models.UploadState{uploading("s1", "a.png", 0)})

	assert.Equal(t, "a.png uploading 0%\n", buf.String())
}

func TestRenderer_LiveBars(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(&buf, true, 80)

	r.SlotsChanged(1, []models.UploadState{uploading("s1", "a.png", 0), uploading("s2", "b.png", 0)})
	first := buf.String()
	assert.Equal(t, 2, strings.Count(first, "\x1b[2K"))
	assert.NotContains(t, first, "\x1b[2A")
	assert.Contains(t, first, "[....................]   0%")

	buf.Reset()
	r.SlotsChanged(2, []models.UploadState{uploading("s1", "a.png", 50)})
	second := buf.String()
	assert.True(t, strings.HasPrefix(second, "\x1b[2A"), "cursor moves back over the previous block")
	assert.Contains(t, second, "[##########..........]  50%")
	assert.Equal(t, 2, strings.Count(second, "\x1b[2K"), "the dropped slot line is cleared")
}

func TestRenderer_BarTruncatesToWidth(t *testing.T) {
	r := newRenderer(&bytes.Buffer{}, true, 30)
	line := r.bar(models.UploadState{Name: strings.Repeat("n", 40), Status: models.SlotSucceeded, URL: "https://cdn/x.png"})

	assert.Equal(t, 29, len([]rune(line)))
	assert.True(t, strings.HasSuffix(line, "~"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab~", truncate("abcd", 3))
	assert.Equal(t, "a", truncate("abcd", 1))
	assert.Equal(t, "", truncate("abcd", 0))
}

func TestTerminalWidth(t *testing.T) {
	orig := termSize
	t.Cleanup(func() { termSize = orig })

	assert.Equal(t, 80, terminalWidth(&bytes.Buffer{}))

	termSize = func(int) (int, int, error) { return 132, 40, nil }
	assert.Equal(t, 132, terminalWidth(os.Stdout))

	termSize = func(int) (int, int, error) { return 0, 0, errors.New("not a terminal") }
	assert.Equal(t, 80, terminalWidth(os.Stdout))
}

func TestIsTerminal_Buffer(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))
}
