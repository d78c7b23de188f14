package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophmarket/internal/client/models"
	"golang.org/x/term"
)

const (
	barWidth  = 20
	nameWidth = 24
)

// termSize is a test seam for term.GetSize.
var termSize = term.GetSize

type fdWriter interface {
	Fd() uintptr
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(fdWriter)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderer draws coordinator progress. In live mode it redraws one bar per
// slot in place; otherwise it prints a line whenever a slot changes status.
type renderer struct {
	mu      sync.Mutex
	out     io.Writer
	live    bool
	width   int
	version uint64
	last    map[string]models.SlotStatus
	drawn   int
}

// terminalWidth returns the column count of w, or 80 when w is not a
// terminal.
func terminalWidth(w io.Writer) int {
	if f, ok := w.(fdWriter); ok {
		if cols, _, err := termSize(int(f.Fd())); err == nil && cols > 0 {
			return cols
		}
	}
	return 80
}

func newRenderer(out io.Writer, live bool, width int) *renderer {
	return &renderer{out: out, live: live, width: width, last: map[string]models.SlotStatus{}}
}

// reset forgets the previous session. Versions restart with every
// coordinator.
func (r *renderer) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.version = 0
	r.last = map[string]models.SlotStatus{}
	r.drawn = 0
}

func (r *renderer) SlotsChanged(version uint64, slots []models.UploadState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if version <= r.version {
		return
	}
	r.version = version

	if r.live {
		r.draw(slots)
	} else {
		r.transitions(slots)
	}

	next := make(map[string]models.SlotStatus, len(slots))
	for _, s := range slots {
		next[s.ID] = s.Status
	}
	r.last = next
}

func (r *renderer) ImagesChanged(images []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "Draft has %d image(s)\n", len(images))
	r.drawn = 0
}

// transitions prints slots that appeared as uploads or changed status.
// Slots first seen in a terminal state are images the draft already had.
func (r *renderer) transitions(slots []models.UploadState) {
	for _, s := range slots {
		prev, seen := r.last[s.ID]
		if (!seen && s.Status == models.SlotUploading) || (seen && prev != s.Status) {
			fmt.Fprintln(r.out, slotLine(s))
		}
	}
}

func (r *renderer) draw(slots []models.UploadState) {
	if r.drawn > 0 {
		fmt.Fprintf(r.out, "\x1b[%dA", r.drawn)
	}
	for _, s := range slots {
		fmt.Fprintf(r.out, "\x1b[2K%s\n", r.bar(s))
	}
	for i := len(slots); i < r.drawn; i++ {
		fmt.Fprint(r.out, "\x1b[2K\n")
	}
	r.drawn = max(r.drawn, len(slots))
}

func (r *renderer) bar(s models.UploadState) string {
	name := truncate(s.Name, nameWidth)
	var line string
	switch s.Status {
	case models.SlotUploading:
		filled := min(barWidth, max(0, s.Progress*barWidth/100))
		line = fmt.Sprintf("%-*s [%s%s] %3d%%", nameWidth, name,
			strings.Repeat("#", filled), strings.Repeat(".", barWidth-filled), s.Progress)
	case models.SlotSucceeded:
		line = fmt.Sprintf("%-*s done %s", nameWidth, name, s.URL)
	default:
		line = fmt.Sprintf("%-*s failed: %s", nameWidth, name, s.Error)
	}
	return truncate(line, r.width-1)
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	if n == 1 {
		return string(rs[:1])
	}
	return string(rs[:n-1]) + "~"
}
