package location

import (
	"context"
	"sync"

	"github.com/secmon-lab/isogap/pkg/domain/interfaces"
	"github.com/secmon-lab/isogap/pkg/domain/model"
)

// History is an in-process location with browser-like history. Every
// change, whether pushed by the application or caused by the user, is
// reported to the subscribers.
type History struct {
	mu          sync.Mutex
	entries     []string
	cursor      int
	subscribers []interfaces.LocationChangeFunc
}

var _ interfaces.History = &History{}

// NewHistory starts a history at initial ("/" when empty)
func NewHistory(initial string) *History {
	return &History{
		entries: []string{model.NormalizeLocation(initial)},
	}
}

func (h *History) CurrentLocation() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.cursor]
}

func (h *History) OnChange(fn interfaces.LocationChangeFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers = append(h.subscribers, fn)
}

// NavigateTo pushes location as a new entry
func (h *History) NavigateTo(ctx context.Context, location string) {
	h.push(ctx, location)
}

// Visit is a location change made by the user, e.g. opening a bookmark
func (h *History) Visit(ctx context.Context, location string) {
	h.push(ctx, location)
}

// Back moves one entry back. It returns false at the first entry.
func (h *History) Back(ctx context.Context) bool {
	return h.move(ctx, -1)
}

// Forward moves one entry forward. It returns false at the last entry.
func (h *History) Forward(ctx context.Context) bool {
	return h.move(ctx, 1)
}

func (h *History) CanBack() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor > 0
}

func (h *History) CanForward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor < len(h.entries)-1
}

// Entries returns a copy of the history entries and the cursor position
func (h *History) Entries() ([]string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	entries := make([]string, len(h.entries))
	copy(entries, h.entries)
	return entries, h.cursor
}

func (h *History) push(ctx context.Context, location string) {
	loc := model.NormalizeLocation(location)

	h.mu.Lock()
	if h.entries[h.cursor] == loc {
		h.mu.Unlock()
		return
	}
	h.entries = append(h.entries[:h.cursor+1], loc)
	h.cursor = len(h.entries) - 1
	subscribers := h.snapshot()
	h.mu.Unlock()

	notify(ctx, subscribers, loc)
}

func (h *History) move(ctx context.Context, delta int) bool {
	h.mu.Lock()
	next := h.cursor + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.cursor = next
	loc := h.entries[next]
	subscribers := h.snapshot()
	h.mu.Unlock()

	notify(ctx, subscribers, loc)
	return true
}

func (h *History) snapshot() []interfaces.LocationChangeFunc {
	subscribers := make([]interfaces.LocationChangeFunc, len(h.subscribers))
	copy(subscribers, h.subscribers)
	return subscribers
}

// subscribers run without the history lock so they may call back into it
func notify(ctx context.Context, subscribers []interfaces.LocationChangeFunc, loc string) {
	for _, fn := range subscribers {
		fn(ctx, loc)
	}
}
