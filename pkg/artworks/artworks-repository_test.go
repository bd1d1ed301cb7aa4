package artworks

import (
	"fmt"
	"testing"
	"time"

	"github.com/artistry/webapi/pkg/ntime"
	"github.com/artistry/webapi/pkg/storage/sqlite"
	"github.com/artistry/webapi/pkg/users"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	storage, err := sqlite.New(logrus.New(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })
	return NewStore(storage.Connection)
}

func registerTestUser(t *testing.T, store *Store, alias string) string {
	t.Helper()
	repository := users.NewRepository(store.Connection)
	user, err := repository.Register(users.AddUserData{
		Alias:    alias,
		Email:    alias + "@example.org",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	return user.Id
}

func TestAddAndGetArtwork(t *testing.T) {
	store := newTestStore(t)
	authorId := registerTestUser(t, store, "frida")

	id, _, err := store.AddArtwork(AddArtworkData{
		Title:       "The Two Fridas",
		Description: "double self portrait",
		PictureURL:  "https://cdn.example.org/fridas.jpg",
		Tags:        []string{"Surrealism", "Self Portrait"},
	}, authorId)
	require.NoError(t, err)

	artwork, err := store.GetArtwork(id, "")
	require.NoError(t, err)
	assert.Equal(t, "The Two Fridas", artwork.Title)
	assert.Equal(t, "frida", artwork.Author.Alias)

	// tags are stored lower-cased, in submission order
	assert.Equal(t, []string{"surrealism", "self portrait"}, artwork.Tags)
	assert.Zero(t, artwork.Likes)
	assert.Zero(t, artwork.Views)
	assert.False(t, artwork.Liked)
}

func TestGetArtworkNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetArtwork("no-such-id", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchMatchesWholeTokensOnly(t *testing.T) {
	store := newTestStore(t)
	authorId := registerTestUser(t, store, "frida")

	id, _, err := store.AddArtwork(AddArtworkData{
		Title:       "Abstract  Art",
		Description: "a cracked  texture",
		PictureURL:  "https://cdn.example.org/abstract.jpg",
		Tags:        []string{"African Heritage"},
	}, authorId)
	require.NoError(t, err)

	for term, matches := range map[string]bool{
		"abstract":         true,
		"Abstract":         true, // terms are normalised before lookup
		"african heritage": true,
		"african":          false, // multi-word tags match as phrases only
		"abstr":            false, // no prefix search
		"":                 false,
	} {
		previews, err := store.SearchArtworks(term)
		require.NoError(t, err)
		if matches {
			require.Len(t, previews, 1, "term %q", term)
			assert.Equal(t, id, previews[0].Id)
		} else {
			assert.Empty(t, previews, "term %q", term)
		}
	}
}

func TestUpdateArtworkRecomputesIndex(t *testing.T) {
	store := newTestStore(t)
	authorId := registerTestUser(t, store, "frida")

	id, _, err := store.AddArtwork(AddArtworkData{
		Title:      "Old Title",
		PictureURL: "https://cdn.example.org/one.jpg",
		Tags:       []string{"vintage"},
	}, authorId)
	require.NoError(t, err)

	require.NoError(t, store.UpdateArtwork(id, authorId, UpdateArtworkData{
		Title:      "Fresh Title",
		PictureURL: "https://cdn.example.org/one.jpg",
		Tags:       []string{"modern"},
	}))

	// stale tokens are gone, new ones resolve
	for term, matches := range map[string]bool{"old": false, "vintage": false, "fresh": true, "modern": true} {
		previews, err := store.SearchArtworks(term)
		require.NoError(t, err)
		assert.Equal(t, matches, len(previews) == 1, "term %q", term)
	}
}

func TestUpdateArtworkDeniedToStrangers(t *testing.T) {
	store := newTestStore(t)
	authorId := registerTestUser(t, store, "frida")
	strangerId := registerTestUser(t, store, "diego")

	id, _, err := store.AddArtwork(AddArtworkData{
		Title:      "Mine",
		PictureURL: "https://cdn.example.org/mine.jpg",
	}, authorId)
	require.NoError(t, err)

	assert.ErrorIs(t, store.UpdateArtwork(id, strangerId, UpdateArtworkData{
		Title:      "Defaced",
		PictureURL: "https://cdn.example.org/mine.jpg",
	}), ErrNotFound)
	assert.False(t, store.DeleteArtwork(id, strangerId))
	assert.True(t, store.DeleteArtwork(id, authorId))
}

func TestLikes(t *testing.T) {
	store := newTestStore(t)
	authorId := registerTestUser(t, store, "frida")
	admirerId := registerTestUser(t, store, "diego")

	id, _, err := store.AddArtwork(AddArtworkData{
		Title:      "Viva la Vida",
		PictureURL: "https://cdn.example.org/sandias.jpg",
	}, authorId)
	require.NoError(t, err)

	require.NoError(t, store.AddLike(admirerId, id))
	assert.ErrorIs(t, store.AddLike(admirerId, id), ErrNotModified)
	assert.ErrorIs(t, store.AddLike(admirerId, "no-such-artwork"), ErrNotFound)

	likes, comments, err := store.Counts(id)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)
	assert.Zero(t, comments)

	artwork, err := store.GetArtwork(id, admirerId)
	require.NoError(t, err)
	assert.True(t, artwork.Liked)

	require.NoError(t, store.RemoveLike(admirerId, id))
	assert.ErrorIs(t, store.RemoveLike(admirerId, id), ErrNotFound)
}

func TestViewsRecordedForVisitorsOnly(t *testing.T) {
	store := newTestStore(t)
	authorId := registerTestUser(t, store, "frida")
	visitorId := registerTestUser(t, store, "diego")

	id, _, err := store.AddArtwork(AddArtworkData{
		Title:      "Roots",
		PictureURL: "https://cdn.example.org/roots.jpg",
	}, authorId)
	require.NoError(t, err)

	// anonymous and owner visits leave no trace; repeated visits count once
	for _, requester := range []string{"", authorId, visitorId, visitorId} {
		_, err = store.GetArtwork(id, requester)
		require.NoError(t, err)
	}

	artwork, err := store.GetArtwork(id, "")
	require.NoError(t, err)
	assert.Equal(t, 1, artwork.Views)
}

func TestCommentsPageKeysetPagination(t *testing.T) {
	store := newTestStore(t)
	authorId := registerTestUser(t, store, "frida")
	criticId := registerTestUser(t, store, "diego")

	artworkId, _, err := store.AddArtwork(AddArtworkData{
		Title:      "The Wounded Deer",
		PictureURL: "https://cdn.example.org/deer.jpg",
	}, authorId)
	require.NoError(t, err)

	// seed twelve comments a minute apart, so the creation order is unambiguous
	var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		_, err = store.Connection.Exec(`
			INSERT INTO artwork_comments (id, artwork, user, comment, date) VALUES (?, ?, ?, ?, ?)`,
			fmt.Sprintf("comment-%02d", i), artworkId, criticId, fmt.Sprintf("remark %d", i),
			base.Add(time.Duration(i)*time.Minute).Format(time.RFC3339))
		require.NoError(t, err)
	}

	// first page: a two comment teaser, newest first
	page, err := store.CommentsPage(artworkId, nil, 2, true)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "comment-11", page[0].Id)
	assert.Equal(t, "comment-10", page[1].Id)

	// second page resumes strictly after the teaser's last comment
	cursor := &Cursor{Date: page[1].Date, Id: page[1].Id}
	page, err = store.CommentsPage(artworkId, cursor, 10, true)
	require.NoError(t, err)
	require.Len(t, page, 10)
	assert.Equal(t, "comment-09", page[0].Id)
	assert.Equal(t, "comment-00", page[9].Id)

	// the stream is exhausted
	cursor = &Cursor{Date: page[9].Date, Id: page[9].Id}
	page, err = store.CommentsPage(artworkId, cursor, 10, true)
	require.NoError(t, err)
	assert.Empty(t, page)

	// ascending reads walk the same comments in reverse
	page, err = store.CommentsPage(artworkId, nil, 3, false)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, "comment-00", page[0].Id)
}

func TestCommentsPageBreaksTiesById(t *testing.T) {
	store := newTestStore(t)
	authorId := registerTestUser(t, store, "frida")

	artworkId, _, err := store.AddArtwork(AddArtworkData{
		Title:      "Moses",
		PictureURL: "https://cdn.example.org/moses.jpg",
	}, authorId)
	require.NoError(t, err)

	// four comments sharing one timestamp: pagination must neither skip nor repeat
	var date = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC).Format(time.RFC3339)
	for _, id := range []string{"a", "b", "c", "d"} {
		_, err = store.Connection.Exec(`
			INSERT INTO artwork_comments (id, artwork, user, comment, date) VALUES (?, ?, ?, 'same moment', ?)`,
			id, artworkId, authorId, date)
		require.NoError(t, err)
	}

	var collected []string
	var cursor *Cursor
	for {
		page, err := store.CommentsPage(artworkId, cursor, 2, true)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		for _, comment := range page {
			collected = append(collected, comment.Id)
		}
		last := page[len(page)-1]
		cursor = &Cursor{Date: last.Date, Id: last.Id}
	}

	assert.Equal(t, []string{"d", "c", "b", "a"}, collected)
}

func TestAddCommentToMissingArtwork(t *testing.T) {
	store := newTestStore(t)
	userId := registerTestUser(t, store, "frida")

	_, _, err := store.AddComment(userId, "no-such-artwork", CommentData{Comment: "lost words"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCommentRequiresAuthorship(t *testing.T) {
	store := newTestStore(t)
	authorId := registerTestUser(t, store, "frida")
	criticId := registerTestUser(t, store, "diego")

	artworkId, _, err := store.AddArtwork(AddArtworkData{
		Title:      "Self Portrait with Thorn Necklace",
		PictureURL: "https://cdn.example.org/thorns.jpg",
	}, authorId)
	require.NoError(t, err)

	commentId, _, err := store.AddComment(criticId, artworkId, CommentData{Comment: "striking"})
	require.NoError(t, err)

	assert.ErrorIs(t, store.DeleteComment(authorId, commentId), ErrNotFound)
	require.NoError(t, store.DeleteComment(criticId, commentId))
}

func TestAnalyticsTallyArtworkActivity(t *testing.T) {
	store := newTestStore(t)
	repository := users.NewRepository(store.Connection)
	authorId := registerTestUser(t, store, "frida")
	visitorId := registerTestUser(t, store, "diego")

	artworkId, _, err := store.AddArtwork(AddArtworkData{
		Title:      "Memory, the Heart",
		PictureURL: "https://cdn.example.org/memory.jpg",
	}, authorId)
	require.NoError(t, err)

	_, err = store.GetArtwork(artworkId, visitorId)
	require.NoError(t, err)
	require.NoError(t, store.AddLike(visitorId, artworkId))
	_, _, err = store.AddComment(visitorId, artworkId, CommentData{Comment: "unforgettable"})
	require.NoError(t, err)
	require.NoError(t, repository.AddDonation("frida", users.DonationData{
		Amount:   40,
		Currency: "USD",
		Status:   "success",
	}))

	analytics, err := repository.GetAnalytics(authorId)
	require.NoError(t, err)
	assert.Equal(t, 1, analytics.Views)
	assert.Equal(t, 1, analytics.Likes)
	assert.Equal(t, 1, analytics.Comments)
	assert.Equal(t, 40.0, analytics.Earnings)
}

func TestCursorRoundTrip(t *testing.T) {
	var date = time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	original := Cursor{Date: ntime.FromTime(date), Id: "comment-07"}

	parsed, err := ParseCursor(original.String())
	require.NoError(t, err)
	assert.Equal(t, original.Id, parsed.Id)
	assert.Equal(t, original.Date.String(), parsed.Date.String())

	for _, malformed := range []string{"", "no separator", "not-a-date~id", "2025-03-01T12:30:00Z~"} {
		_, err = ParseCursor(malformed)
		assert.Error(t, err, "cursor %q", malformed)
	}
}
