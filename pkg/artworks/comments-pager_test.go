package artworks

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/artistry/webapi/pkg/ntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCommentSource serves pages from an in-memory, newest-first sequence, honouring
// the same strictly-after cursor contract as the store.
type fakeCommentSource struct {
	mu       sync.Mutex
	comments []CommentResponse
	calls    int
	err      error
	blocked  chan struct{} // when set, CommentsPage waits for the channel to close
}

func (s *fakeCommentSource) CommentsPage(artworkId string, after *Cursor, limit int, descending bool) ([]CommentResponse, error) {
	s.mu.Lock()
	s.calls++
	var blocked = s.blocked
	s.mu.Unlock()

	if blocked != nil {
		<-blocked
	}

	if s.err != nil {
		return nil, s.err
	}

	var start = 0
	if after != nil {
		for i, comment := range s.comments {
			if comment.Id == after.Id {
				start = i + 1
				break
			}
		}
	}

	var page = make([]CommentResponse, 0, limit)
	for i := start; i < len(s.comments) && len(page) < limit; i++ {
		page = append(page, s.comments[i])
	}
	return page, nil
}

func newFakeSource(count int) *fakeCommentSource {
	var source fakeCommentSource
	var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	// newest first, as the store returns them for the default order
	for i := count - 1; i >= 0; i-- {
		source.comments = append(source.comments, CommentResponse{
			Id:          fmt.Sprintf("comment-%02d", i),
			AuthorAlias: "critic",
			AuthorName:  "A Critic",
			Comment:     fmt.Sprintf("remark %d", i),
			Date:        ntime.FromTime(base.Add(time.Duration(i) * time.Minute)),
		})
	}
	return &source
}

func TestPagerFirstPageShorterThanLimit(t *testing.T) {
	source := newFakeSource(1)
	pager := NewCommentPager(source, NewestFirst, 2, 10)

	comments, err := pager.LoadFirstPage("artwork")
	require.NoError(t, err)
	assert.Len(t, comments, 1)
	assert.False(t, pager.HasMore())
}

func TestPagerNextPageWithoutCursorIsNoOp(t *testing.T) {
	source := newFakeSource(5)
	pager := NewCommentPager(source, NewestFirst, 2, 10)

	// nothing loaded yet: no collaborator call must occur
	comments, err := pager.LoadNextPage()
	require.NoError(t, err)
	assert.Empty(t, comments)
	assert.Zero(t, source.calls)
}

func TestPagerTwoTierProgression(t *testing.T) {
	source := newFakeSource(12)
	pager := NewCommentPager(source, NewestFirst, 2, 10)

	comments, err := pager.LoadFirstPage("artwork")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.True(t, pager.HasMore())
	assert.Equal(t, "comment-11", comments[0].Id)

	comments, err = pager.LoadNextPage()
	require.NoError(t, err)
	require.Len(t, comments, 12)

	// a full page can't distinguish exhaustion: the cursor stays set
	assert.True(t, pager.HasMore())

	// the next fetch comes up empty and clears the cursor
	comments, err = pager.LoadNextPage()
	require.NoError(t, err)
	require.Len(t, comments, 12)
	assert.False(t, pager.HasMore())

	// further calls no longer reach the collaborator
	callsSoFar := source.calls
	_, err = pager.LoadNextPage()
	require.NoError(t, err)
	assert.Equal(t, callsSoFar, source.calls)

	// pages never reorder nor deduplicate: the accumulated ids stay unique
	var seen = make(map[string]struct{})
	for _, comment := range comments {
		_, duplicated := seen[comment.Id]
		assert.False(t, duplicated, "duplicated comment %s", comment.Id)
		seen[comment.Id] = struct{}{}
	}
}

func TestPagerFailedLoadKeepsLastGoodState(t *testing.T) {
	source := newFakeSource(12)
	pager := NewCommentPager(source, NewestFirst, 2, 10)

	_, err := pager.LoadFirstPage("artwork")
	require.NoError(t, err)

	source.err = errors.New("transport failure")
	_, err = pager.LoadNextPage()
	require.Error(t, err)

	// the loaded window and the cursor both survive, ready for a retry
	assert.Len(t, pager.Comments(), 2)
	assert.True(t, pager.HasMore())

	source.err = nil
	comments, err := pager.LoadNextPage()
	require.NoError(t, err)
	assert.Len(t, comments, 12)
}

func TestPagerRejectsOverlappingLoads(t *testing.T) {
	source := newFakeSource(12)
	source.blocked = make(chan struct{})
	pager := NewCommentPager(source, NewestFirst, 2, 10)

	var background = make(chan error)
	go func() {
		_, err := pager.LoadFirstPage("artwork")
		background <- err
	}()

	// wait for the background load to reach the collaborator
	require.Eventually(t, func() bool {
		source.mu.Lock()
		defer source.mu.Unlock()
		return source.calls == 1
	}, time.Second, time.Millisecond)

	_, err := pager.LoadNextPage()
	assert.ErrorIs(t, err, ErrRequestInFlight)

	close(source.blocked)
	require.NoError(t, <-background)
}

func TestPagerRemoveLocal(t *testing.T) {
	source := newFakeSource(4)
	pager := NewCommentPager(source, NewestFirst, 2, 10)

	_, err := pager.LoadFirstPage("artwork")
	require.NoError(t, err)

	require.True(t, pager.RemoveLocal("comment-03"))
	assert.False(t, pager.RemoveLocal("comment-03"), "a removed comment can't be removed twice")

	comments := pager.Comments()
	require.Len(t, comments, 1)
	assert.Equal(t, "comment-02", comments[0].Id)

	// removal leaves the cursor untouched: the next page resumes where it would have
	assert.True(t, pager.HasMore())
	comments, err = pager.LoadNextPage()
	require.NoError(t, err)
	assert.Equal(t, "comment-01", comments[1].Id)
}

func TestPagerOldestFirstOrder(t *testing.T) {
	source := newFakeSource(3)
	// flip the fake's sequence to oldest first, as an ascending store would return it
	for i, j := 0, len(source.comments)-1; i < j; i, j = i+1, j-1 {
		source.comments[i], source.comments[j] = source.comments[j], source.comments[i]
	}

	pager := NewCommentPager(source, OldestFirst, 2, 10)
	comments, err := pager.LoadFirstPage("artwork")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "comment-00", comments[0].Id)
	assert.Equal(t, "comment-01", comments[1].Id)
}

func TestPagerResetClearsState(t *testing.T) {
	source := newFakeSource(5)
	pager := NewCommentPager(source, NewestFirst, 2, 10)

	_, err := pager.LoadFirstPage("artwork")
	require.NoError(t, err)
	require.True(t, pager.HasMore())

	pager.Reset()
	assert.Empty(t, pager.Comments())
	assert.False(t, pager.HasMore())

	// a reset pager behaves as a fresh one for another parent
	_, err = pager.LoadNextPage()
	require.NoError(t, err)
	assert.Empty(t, pager.Comments())
}
