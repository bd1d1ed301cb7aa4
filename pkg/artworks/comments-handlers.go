package artworks

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/artistry/webapi/pkg/auth"
	JSON "github.com/artistry/webapi/pkg/json-utilities"
	"github.com/artistry/webapi/pkg/live"
	"github.com/artistry/webapi/pkg/ntime"
	"github.com/artistry/webapi/pkg/rest"
)

func registerCommentHandlers(engine rest.Engine, ar ArtworkRepository, hub *live.Hub, authed func(http.Handler) http.Handler) {
	engine.Post("/artworks/:id/comments", addComment(ar, hub), authed)
	engine.Delete("/artworks/:id/comments/:commentId", deleteComment(ar, hub), authed)
	engine.Get("/artworks/:id/comments", getComments(ar))
}

func addComment(ar ArtworkRepository, hub *live.Hub) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var artworkId = rest.GetParam(request, "id")

		data, err := JSON.DecodeValidate[CommentData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		var session = auth.MustGetUser(request)

		id, date, err := ar.AddComment(session.UserId, artworkId, data)
		switch {
		case err == nil:
			broadcastCounts(ar, hub, artworkId)
			JSON.Created(writer, struct {
				Id   string
				Date ntime.NTime
			}{
				Id:   id,
				Date: date,
			})
		case errors.Is(err, ErrNotFound):
			JSON.NotFound(writer, "Artwork not found")
		default:
			JSON.InternalServerError(writer, err)
		}
	}
}

func deleteComment(ar ArtworkRepository, hub *live.Hub) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var session = auth.MustGetUser(request)
		var artworkId = rest.GetParam(request, "id")
		var commentId = rest.GetParam(request, "commentId")

		if commentId == "" {
			JSON.BadRequest(writer)
			return
		}

		// authors may only remove their own comments; anything else is a not found
		switch err := ar.DeleteComment(session.UserId, commentId); {
		case err == nil:
			broadcastCounts(ar, hub, artworkId)
			JSON.NoContent(writer)
		case errors.Is(err, ErrNotFound):
			JSON.NotFound(writer, "Comment not found")
		default:
			JSON.InternalServerError(writer, err)
		}
	}
}

// commentsPageResponse returns one comment page along with the cursor marking where
// the next request should resume; a null cursor signals the end of the stream.
type commentsPageResponse struct {
	Comments []CommentResponse
	Cursor   string `json:",omitempty"`
}

/*
getComments handles the GET "/artworks/:id/comments" route, with query parameters:

  - limit: page size, capped at 50; defaults to 2 for the first page and 10 for
    subsequent ones, matching the teaser-then-batches reveal of the viewing surfaces
  - after: the cursor returned by the previous page; absent for the first page
  - dir: "asc" for reading order, "desc" (default) for newest first
*/
func getComments(ar ArtworkRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var artworkId = rest.GetParam(request, "id")
		var params = request.URL.Query()

		var descending = true
		switch params.Get("dir") {
		case "", "desc":
		case "asc":
			descending = false
		default:
			JSON.BadRequestWithMessage(writer, "dir must be either asc or desc")
			return
		}

		var after *Cursor
		if raw := params.Get("after"); raw != "" {
			cursor, err := ParseCursor(raw)
			if err != nil {
				JSON.BadRequestWithMessage(writer, err.Error())
				return
			}
			after = &cursor
		}

		var limit = DefaultInitialLimit
		if after != nil {
			limit = DefaultPageSize
		}
		if raw := params.Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 50 {
				JSON.BadRequestWithMessage(writer, "limit must fall between 1 and 50")
				return
			}
			limit = parsed
		}

		comments, err := ar.CommentsPage(artworkId, after, limit, descending)
		if err != nil {
			JSON.InternalServerError(writer, err)
			return
		}

		var response = commentsPageResponse{Comments: comments}
		if len(comments) == limit {
			var last = comments[len(comments)-1]
			response.Cursor = Cursor{Date: last.Date, Id: last.Id}.String()
		}

		JSON.Ok(writer, response)
	}
}
