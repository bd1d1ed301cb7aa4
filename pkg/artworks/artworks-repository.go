package artworks

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/artistry/webapi/pkg/ntime"
	"github.com/artistry/webapi/pkg/rest"
	"github.com/artistry/webapi/pkg/search"
)

type ArtworkRepository interface {
	AddArtwork(data AddArtworkData, authorId string) (id string, added ntime.NTime, err error)
	UpdateArtwork(artworkId, requesterId string, data UpdateArtworkData) error
	DeleteArtwork(artworkId, userId string) bool
	GetArtwork(artworkId, requesterId string) (*Artwork, error)
	GetFeed(pageSize int) ([]ArtworkPreview, error)
	SearchArtworks(term string) ([]ArtworkPreview, error)
	GetUserArtworks(alias string) ([]ArtworkPreview, error)

	AddLike(userId, artworkId string) error
	RemoveLike(userId, artworkId string) error
	Counts(artworkId string) (likes, comments int, err error)

	AddComment(userId, artworkId string, data CommentData) (string, ntime.NTime, error)
	DeleteComment(userId, commentId string) error
	CommentsPage(artworkId string, after *Cursor, limit int, descending bool) ([]CommentResponse, error)
}

type Store struct {
	Connection *sql.DB
}

var (
	ErrNotFound    = errors.New("not found")
	ErrNotModified = errors.New("not modified")
)

// NewStore returns an artwork repository, or store, which wraps the necessary
// dependencies and provides relevant interface implementations.
func NewStore(connection *sql.DB) *Store {
	return &Store{connection}
}

func closeRows(rows *sql.Rows) {
	_ = rows.Close()
}

// AddArtwork persists the artwork's metadata, its ordered tags and the search index
// derived from them, in a single transaction.
func (ar *Store) AddArtwork(data AddArtworkData, authorId string) (string, ntime.NTime, error) {

	var id = rest.MustGetNewUUID()
	var now = ntime.Now()

	tx, err := ar.Connection.Begin()
	if err != nil {
		return id, now, err
	}

	// rolling back after a transaction commit results in a safe NOP
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.Exec(`
		INSERT INTO artworks(id, title, description, picture_url, author_id, added, updated)
		VALUES(?, ?, ?, ?, ?, ?, ?)`,
		id, data.Title, data.Description, data.PictureURL, authorId, now, now); err != nil {
		return id, now, err
	}

	if err = writeTagsAndIndex(tx, id, data.Title, data.Description, data.Tags); err != nil {
		return id, now, err
	}

	return id, now, tx.Commit()
}

// UpdateArtwork rewrites the editable fields, replacing tags and search index
// wholesale; the index is always recomputed when any of its inputs changes.
func (ar *Store) UpdateArtwork(artworkId, requesterId string, data UpdateArtworkData) error {

	tx, err := ar.Connection.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
		UPDATE artworks SET title = ?, description = ?, picture_url = ?, updated = ?
		WHERE id = ? AND author_id = ?`,
		data.Title, data.Description, data.PictureURL, ntime.Now(), artworkId, requesterId)
	if err != nil {
		return err
	}

	// unauthorised edits and missing artworks alike trigger a not found error,
	// denying information about existing resources
	if affected, e := res.RowsAffected(); e != nil {
		return e
	} else if affected == 0 {
		return ErrNotFound
	}

	if _, err = tx.Exec(`DELETE FROM artwork_tags WHERE artwork = ?`, artworkId); err != nil {
		return err
	}
	if _, err = tx.Exec(`DELETE FROM search_index WHERE artwork = ?`, artworkId); err != nil {
		return err
	}
	if err = writeTagsAndIndex(tx, artworkId, data.Title, data.Description, data.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// writeTagsAndIndex stores lower-cased tags in submission order and the derived
// search tokens; it expects fresh rows, with stale ones already removed.
func writeTagsAndIndex(tx *sql.Tx, artworkId, title, description string, tags []string) error {

	var lowered = make([]string, 0, len(tags))
	for position, tag := range tags {
		var tagToken = strings.ToLower(tag)
		lowered = append(lowered, tagToken)
		if _, err := tx.Exec(`
			INSERT INTO artwork_tags (artwork, position, tag) VALUES (?, ?, ?)`,
			artworkId, position, tagToken); err != nil {
			return err
		}
	}

	for _, token := range search.BuildIndex(title, description, lowered) {
		if _, err := tx.Exec(`
			INSERT INTO search_index (artwork, token) VALUES (?, ?)`, artworkId, token); err != nil {
			return err
		}
	}
	return nil
}

// DeleteArtwork will remove the artwork and its dependent rows, returning a negative
// result in case:
//   - the artwork doesn't exist
//   - the artwork isn't owned by the specified user
func (ar *Store) DeleteArtwork(artworkId, userId string) bool {
	result, err := ar.Connection.Exec(`
		DELETE FROM artworks WHERE artworks.id = ? AND author_id = ?`,
		artworkId,
		userId,
	)
	if err != nil {
		return false
	}
	results, err := result.RowsAffected()
	if err != nil || results != 1 {
		return false
	}
	return true
}

// GetArtwork fetches artwork details along with freshly computed like, comment and
// view counts. Authenticated visits by non-owners are recorded as views; a failed
// view write never fails the read.
func (ar *Store) GetArtwork(artworkId, requesterId string) (*Artwork, error) {
	var artwork = Artwork{Id: artworkId}
	var authorId string

	if err := ar.Connection.QueryRow(`
		SELECT
			alias, name, coalesce(photo_url, ''), users.id,
			title, coalesce(description, ''), picture_url, added, artworks.updated,
			(SELECT count(*) FROM artwork_likes WHERE artwork = ?) as likes,
			(SELECT count(*) FROM artwork_comments WHERE artwork = ?) as comments,
			(SELECT count(*) FROM artwork_views WHERE artwork = ?) as views,
			(SELECT EXISTS (SELECT TRUE FROM artwork_likes WHERE artwork = ? AND user = ?)) as liked
		FROM artworks JOIN users ON artworks.author_id = users.id
		WHERE artworks.id = ?`,
		artworkId, artworkId, artworkId, artworkId, requesterId, artworkId).Scan(
		&artwork.Author.Alias,
		&artwork.Author.Name,
		&artwork.Author.PhotoUrl,
		&authorId,
		&artwork.Title,
		&artwork.Description,
		&artwork.PictureURL,
		&artwork.Added,
		&artwork.Updated,
		&artwork.Likes,
		&artwork.Comments,
		&artwork.Views,
		&artwork.Liked,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var err error
	if artwork.Tags, err = ar.getTags(artworkId); err != nil {
		return nil, err
	}

	if requesterId != "" && requesterId != authorId {
		_, _ = ar.Connection.Exec(`
			INSERT OR IGNORE INTO artwork_views (artwork, user, date) VALUES (?, ?, ?)`,
			artworkId, requesterId, ntime.Now())
	}

	return &artwork, nil
}

func (ar *Store) getTags(artworkId string) ([]string, error) {
	rows, err := ar.Connection.Query(`
		SELECT tag FROM artwork_tags WHERE artwork = ? ORDER BY position`, artworkId)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var tags = make([]string, 0)
	var tag string
	for rows.Next() {
		if err = rows.Scan(&tag); err != nil {
			return tags, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// GetFeed returns the latest artworks in reverse chronological order, for the home feed.
func (ar *Store) GetFeed(pageSize int) ([]ArtworkPreview, error) {
	rows, err := ar.Connection.Query(`
		SELECT artworks.id, title, picture_url, alias,
			(SELECT count(*) FROM artwork_likes WHERE artwork = artworks.id) as likes,
			(SELECT count(*) FROM artwork_comments WHERE artwork = artworks.id) as comments,
			added
		FROM artworks JOIN users ON artworks.author_id = users.id
		ORDER BY added DESC LIMIT ?`,
		pageSize,
	)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)
	return scanPreviews(rows)
}

// SearchArtworks performs an exact token containment lookup against the search index;
// terms match whole tokens only, as derived by the search package.
func (ar *Store) SearchArtworks(term string) ([]ArtworkPreview, error) {
	rows, err := ar.Connection.Query(`
		SELECT artworks.id, title, picture_url, alias,
			(SELECT count(*) FROM artwork_likes WHERE artwork = artworks.id) as likes,
			(SELECT count(*) FROM artwork_comments WHERE artwork = artworks.id) as comments,
			added
		FROM artworks JOIN users ON artworks.author_id = users.id
		WHERE artworks.id IN (SELECT artwork FROM search_index WHERE token = ?)
		ORDER BY added DESC`,
		search.NormaliseTerm(term),
	)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)
	return scanPreviews(rows)
}

// GetUserArtworks returns all artworks uploaded by the target user, newest first.
func (ar *Store) GetUserArtworks(alias string) ([]ArtworkPreview, error) {
	rows, err := ar.Connection.Query(`
		SELECT artworks.id, title, picture_url, alias,
			(SELECT count(*) FROM artwork_likes WHERE artwork = artworks.id) as likes,
			(SELECT count(*) FROM artwork_comments WHERE artwork = artworks.id) as comments,
			added
		FROM artworks JOIN users ON artworks.author_id = users.id
		WHERE alias = ?
		ORDER BY added DESC`,
		alias,
	)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)
	return scanPreviews(rows)
}

func scanPreviews(rows *sql.Rows) ([]ArtworkPreview, error) {
	// default capacity set to the feed's page size
	var previews = make([]ArtworkPreview, 0, 30)
	for rows.Next() {
		var preview ArtworkPreview
		if err := rows.Scan(
			&preview.Id,
			&preview.Title,
			&preview.PictureURL,
			&preview.AuthorAlias,
			&preview.Likes,
			&preview.Comments,
			&preview.Added,
		); err != nil {
			return previews, err
		}
		previews = append(previews, preview)
	}
	return previews, rows.Err()
}

// AddLike records the user among the artwork's likes; liking twice isn't an error
// worth reporting, but is flagged to avoid pointless snapshot broadcasts.
func (ar *Store) AddLike(userId, artworkId string) error {
	res, err := ar.Connection.Exec(`
		INSERT OR IGNORE INTO artwork_likes (artwork, user, date)
		SELECT id, ?, ? FROM artworks WHERE id = ?`,
		userId, ntime.Now(), artworkId)
	if err != nil {
		return err
	}

	if changed, e := res.RowsAffected(); e != nil {
		return e
	} else if changed == 0 {
		// either a duplicate like or a missing artwork
		if exists, e := ar.existsArtwork(artworkId); e != nil {
			return e
		} else if !exists {
			return ErrNotFound
		}
		return ErrNotModified
	}
	return nil
}

func (ar *Store) RemoveLike(userId, artworkId string) error {
	res, err := ar.Connection.Exec(`
		DELETE FROM artwork_likes WHERE artwork = ? AND user = ?`,
		artworkId, userId)
	if err != nil {
		return err
	}

	if deleted, e := res.RowsAffected(); e != nil {
		return e
	} else if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

func (ar *Store) existsArtwork(artworkId string) (exists bool, err error) {
	err = ar.Connection.QueryRow(`SELECT EXISTS (SELECT TRUE FROM artworks WHERE id = ?)`,
		artworkId).Scan(&exists)
	return exists, err
}

// Counts computes the current like and comment tallies, which feed the live snapshot
// notifications; each snapshot is self-consistent and replaces the previous wholesale.
func (ar *Store) Counts(artworkId string) (likes, comments int, err error) {
	err = ar.Connection.QueryRow(`
		SELECT
			(SELECT count(*) FROM artwork_likes WHERE artwork = ?),
			(SELECT count(*) FROM artwork_comments WHERE artwork = ?)`,
		artworkId, artworkId).Scan(&likes, &comments)
	return likes, comments, err
}
