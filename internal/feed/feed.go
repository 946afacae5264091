package feed

import (
	"context"
	"fmt"
	"sync"

	"photomap-backend/internal/models"
	"photomap-backend/internal/store"
)

// State is the explicit loading state of a feed. It replaces the
// loading/loadingMore/hasMore boolean triple of the reference client, whose
// illegal combinations (both loads in flight at once) are unrepresentable
// here.
type State int

const (
	Idle State = iota
	LoadingFirst
	Ready
	LoadingMore
	Exhausted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case LoadingFirst:
		return "loading_first"
	case Ready:
		return "ready"
	case LoadingMore:
		return "loading_more"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}

// Pager is the slice of the photo store the feed needs.
type Pager interface {
	PageByOwner(ctx context.Context, ownerID int, after *store.Cursor, limit int) ([]models.Photo, error)
}

// Feed is a cursor-paginated view over one owner's photos, newest first.
// At most one load is in flight per feed; a second call while one is pending
// is ignored, not queued. A failed load leaves state, cursor and the result
// set exactly as they were, so the caller can simply retry.
type Feed struct {
	mu       sync.Mutex
	pager    Pager
	pageSize int

	state  State
	cursor *store.Cursor
	photos []models.Photo
}

// DefaultPageSize matches the reference client's page of 10.
const DefaultPageSize = 10

func New(pager Pager, pageSize int) *Feed {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Feed{pager: pager, pageSize: pageSize, state: Idle}
}

// LoadFirst fetches the first page for ownerID, replacing any current result
// set. It is a no-op while another load is in flight.
func (f *Feed) LoadFirst(ctx context.Context, ownerID int) ([]models.Photo, error) {
	f.mu.Lock()
	if f.state == LoadingFirst || f.state == LoadingMore {
		f.mu.Unlock()
		return nil, nil
	}
	prev := f.state
	f.state = LoadingFirst
	f.mu.Unlock()

	page, err := f.pager.PageByOwner(ctx, ownerID, nil, f.pageSize)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = prev
		return nil, fmt.Errorf("load first page: %w", err)
	}

	f.photos = append([]models.Photo(nil), page...)
	f.cursor = nil
	if len(page) > 0 {
		c := store.CursorFor(page[len(page)-1])
		f.cursor = &c
	}
	if len(page) < f.pageSize {
		f.state = Exhausted
	} else {
		f.state = Ready
	}
	return page, nil
}

// LoadNext fetches the page after the current cursor and appends it. It is a
// no-op when the feed is exhausted, idle, or already loading.
func (f *Feed) LoadNext(ctx context.Context, ownerID int) ([]models.Photo, error) {
	f.mu.Lock()
	if f.state != Ready {
		f.mu.Unlock()
		return nil, nil
	}
	f.state = LoadingMore
	after := f.cursor
	f.mu.Unlock()

	page, err := f.pager.PageByOwner(ctx, ownerID, after, f.pageSize)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = Ready
		return nil, fmt.Errorf("load next page: %w", err)
	}

	f.photos = append(f.photos, page...)
	if len(page) > 0 {
		c := store.CursorFor(page[len(page)-1])
		f.cursor = &c
	}
	if len(page) < f.pageSize {
		f.state = Exhausted
	} else {
		f.state = Ready
	}
	return page, nil
}

// State returns the current loading state.
func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Exhausted reports whether all pages have been fetched.
func (f *Feed) Exhausted() bool {
	return f.State() == Exhausted
}

// Photos returns a copy of everything fetched so far, in feed order.
func (f *Feed) Photos() []models.Photo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Photo(nil), f.photos...)
}
