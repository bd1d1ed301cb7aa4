package artworks

import (
	"errors"
	"sync"
)

// CommentSource supplies comment pages in creation order; satisfied by Store.
type CommentSource interface {
	CommentsPage(artworkId string, after *Cursor, limit int, descending bool) ([]CommentResponse, error)
}

// Order selects the direction comments accumulate in: summary surfaces read the
// newest first, reading surfaces the oldest first.
type Order int

const (
	NewestFirst Order = iota
	OldestFirst
)

const (
	// DefaultInitialLimit keeps the first page a teaser
	DefaultInitialLimit = 2
	// DefaultPageSize governs every "show more" batch after the first
	DefaultPageSize = 10
)

// ErrRequestInFlight rejects a page load that overlaps a pending one; allowing both
// would append the same page twice.
var ErrRequestInFlight = errors.New("a comment page request is already in flight")

/*
CommentPager accumulates an artwork's comments one page at a time: a small first
page for the initial render, larger ones as the reader asks for more.

The pager holds no authoritative state, only the latest observed window over the
source, and is reusable across artworks through LoadFirstPage or Reset. Newly
authored comments are deliberately never injected locally: they arrive through the
live notification path, and a local insert would duplicate them moments later.
*/
type CommentPager struct {
	source       CommentSource
	order        Order
	initialLimit int
	pageSize     int

	mu        sync.Mutex
	artworkId string
	comments  []CommentResponse
	cursor    *Cursor
	loading   bool
}

func NewCommentPager(source CommentSource, order Order, initialLimit, pageSize int) *CommentPager {
	if initialLimit <= 0 {
		initialLimit = DefaultInitialLimit
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &CommentPager{
		source:       source,
		order:        order,
		initialLimit: initialLimit,
		pageSize:     pageSize,
		comments:     make([]CommentResponse, 0, initialLimit),
	}
}

// LoadFirstPage fetches up to the initial limit of comments for the given artwork and
// replaces the pager's state wholesale. The cursor points at the last fetched comment,
// or is cleared when the page came up short, signalling the end of the stream.
// On failure the previous state is retained, and the caller may simply retry.
func (p *CommentPager) LoadFirstPage(artworkId string) ([]CommentResponse, error) {
	if err := p.beginLoad(); err != nil {
		return nil, err
	}

	fetched, err := p.source.CommentsPage(artworkId, nil, p.initialLimit, p.order == NewestFirst)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false

	if err != nil {
		return nil, err
	}

	p.artworkId = artworkId
	p.comments = append(make([]CommentResponse, 0, len(fetched)), fetched...)
	p.cursor = trailingCursor(fetched, p.initialLimit)
	return p.snapshot(), nil
}

// LoadNextPage appends the next batch of comments, in the same order as the first
// page. When the cursor is absent, either because no page was ever loaded or because
// a prior page reached the end, the call is a no-op and performs no fetch.
func (p *CommentPager) LoadNextPage() ([]CommentResponse, error) {
	if err := p.beginLoad(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	var cursor = p.cursor
	var artworkId = p.artworkId
	p.mu.Unlock()

	if cursor == nil {
		p.endLoad()
		return p.Comments(), nil
	}

	fetched, err := p.source.CommentsPage(artworkId, cursor, p.pageSize, p.order == NewestFirst)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false

	if err != nil {
		return nil, err
	}

	// appended wholesale: ordering and disjointness are the source's guarantees
	p.comments = append(p.comments, fetched...)
	p.cursor = trailingCursor(fetched, p.pageSize)
	return p.snapshot(), nil
}

// RemoveLocal drops one comment from the loaded sequence by identifier, for
// optimistic removal after a confirmed delete. The cursor and the remaining order
// are left untouched, and no re-fetch occurs.
func (p *CommentPager) RemoveLocal(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.comments {
		if p.comments[i].Id == id {
			p.comments = append(p.comments[:i], p.comments[i+1:]...)
			return true
		}
	}
	return false
}

// Comments returns a copy of the loaded sequence.
func (p *CommentPager) Comments() []CommentResponse {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

// HasMore reports whether another page might be available.
func (p *CommentPager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor != nil
}

// Reset clears the pager for reuse with another artwork.
func (p *CommentPager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.artworkId = ""
	p.comments = p.comments[:0]
	p.cursor = nil
}

func (p *CommentPager) beginLoad() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loading {
		return ErrRequestInFlight
	}
	p.loading = true
	return nil
}

func (p *CommentPager) endLoad() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
}

func (p *CommentPager) snapshot() []CommentResponse {
	return append(make([]CommentResponse, 0, len(p.comments)), p.comments...)
}

// trailingCursor derives the next cursor from a fetched page: the last comment marks
// the position, unless the short page signals exhaustion.
func trailingCursor(fetched []CommentResponse, limit int) *Cursor {
	if len(fetched) < limit {
		return nil
	}
	var last = fetched[len(fetched)-1]
	return &Cursor{Date: last.Date, Id: last.Id}
}
