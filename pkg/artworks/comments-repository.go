package artworks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/artistry/webapi/pkg/ntime"
	"github.com/artistry/webapi/pkg/rest"
)

// Cursor marks a position in an artwork's comment stream: the creation date and
// identifier of the last fetched comment. Clients treat its encoded form as opaque.
type Cursor struct {
	Date ntime.NTime
	Id   string
}

// String encodes the cursor for clients to echo back in the `after` query parameter.
func (c Cursor) String() string {
	return c.Date.String() + "~" + c.Id
}

// ParseCursor decodes a client supplied cursor token.
func ParseCursor(raw string) (cursor Cursor, err error) {
	date, id, found := strings.Cut(raw, "~")
	if !found || id == "" {
		return cursor, errors.New("malformed pagination cursor")
	}
	if cursor.Date, err = ntime.Parse(date); err != nil {
		return cursor, fmt.Errorf("malformed pagination cursor date: %w", err)
	}
	cursor.Id = id
	return cursor, nil
}

func (ar *Store) AddComment(userId, artworkId string, data CommentData) (string, ntime.NTime, error) {
	var id = rest.MustGetNewUUID()
	var date = ntime.Now()
	res, err := ar.Connection.Exec(`
		INSERT INTO artwork_comments (id, artwork, user, comment, date)
		SELECT ?, id, ?, ?, ? FROM artworks WHERE id = ?`,
		id, userId, data.Comment, date, artworkId)
	if err != nil {
		return id, date, err
	}

	// no affected rows signals a missing artwork
	if added, e := res.RowsAffected(); e != nil {
		return id, date, e
	} else if added == 0 {
		return id, date, ErrNotFound
	}
	return id, date, nil
}

// DeleteComment removes the comment, provided the requester authored it.
func (ar *Store) DeleteComment(userId, commentId string) error {
	result, err := ar.Connection.Exec(`DELETE FROM artwork_comments WHERE id = ? AND user = ?`, commentId, userId)
	if err != nil {
		return err
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if deleted != 1 {
		return ErrNotFound
	}
	return err
}

/*
CommentsPage fetches up to `limit` comments, ordered by creation date, starting
strictly after the given cursor, or from the stream's edge when the cursor is nil.

Keyset pagination on the (date, id) pair keeps pages stable in the face of
insertions and deletions around the cursor, where numeric offsets would drift.
Ties on equal dates break on the comment identifier, in the same direction as the
date ordering, so successive pages neither skip nor repeat comments.
*/
func (ar *Store) CommentsPage(artworkId string, after *Cursor, limit int, descending bool) ([]CommentResponse, error) {

	var query strings.Builder
	var arguments = []any{artworkId}

	query.WriteString(`
		SELECT artwork_comments.id, alias, name, comment, date FROM artwork_comments
		JOIN users ON artwork_comments.user = users.id
		WHERE artwork = ?`)

	if after != nil {
		if descending {
			query.WriteString(` AND (date < ? OR (date = ? AND artwork_comments.id < ?))`)
		} else {
			query.WriteString(` AND (date > ? OR (date = ? AND artwork_comments.id > ?))`)
		}
		arguments = append(arguments, after.Date, after.Date, after.Id)
	}

	if descending {
		query.WriteString(` ORDER BY date DESC, artwork_comments.id DESC LIMIT ?`)
	} else {
		query.WriteString(` ORDER BY date ASC, artwork_comments.id ASC LIMIT ?`)
	}
	arguments = append(arguments, limit)

	rows, err := ar.Connection.Query(query.String(), arguments...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	// always returning a collection, no matter whether the artwork exists
	var comments = make([]CommentResponse, 0, limit)
	for rows.Next() {
		var comment CommentResponse
		if err = rows.Scan(&comment.Id, &comment.AuthorAlias, &comment.AuthorName,
			&comment.Comment, &comment.Date); err != nil {
			return comments, err
		}
		comments = append(comments, comment)
	}

	return comments, rows.Err()
}
