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
	"github.com/artistry/webapi/pkg/users"
)

const defaultFeedSize = 30

func RegisterHandlers(engine rest.Engine, ar ArtworkRepository, ur users.UserRepository, notary *auth.Notary, hub *live.Hub) {
	var authed = auth.Auth(notary, ur)
	var identified = auth.Identify(notary, ur)

	engine.Post("/artworks", addArtwork(ar), authed)
	engine.Get("/artworks", getArtworks(ar))
	engine.Get("/artworks/:id", getArtwork(ar), identified)
	engine.Put("/artworks/:id", updateArtwork(ar), authed)
	engine.Delete("/artworks/:id", deleteArtwork(ar), authed)

	engine.Put("/artworks/:id/likes", addLike(ar, hub), authed)
	engine.Delete("/artworks/:id/likes", removeLike(ar, hub), authed)

	engine.Get("/users/:alias/artworks", getUserArtworks(ar))

	registerCommentHandlers(engine, ar, hub, authed)
}

func addArtwork(ar ArtworkRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		// parse and validate the artwork data
		data, err := JSON.DecodeValidate[AddArtworkData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		var session = auth.MustGetUser(request)

		id, added, err := ar.AddArtwork(data, session.UserId)
		if err != nil {
			JSON.InternalServerError(writer, err)
			return
		}

		JSON.Created(writer, struct {
			Id    string
			Added ntime.NTime
		}{
			Id:    id,
			Added: added,
		})
	}
}

// getArtworks serves both the home feed and token searches, depending on the
// presence of the `q` query parameter.
func getArtworks(ar ArtworkRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var params = request.URL.Query()

		if term := params.Get("q"); term != "" {
			if previews, err := ar.SearchArtworks(term); err != nil {
				JSON.InternalServerError(writer, err)
			} else {
				JSON.Ok(writer, previews)
			}
			return
		}

		var pageSize = defaultFeedSize
		if raw := params.Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 100 {
				JSON.BadRequestWithMessage(writer, "limit must fall between 1 and 100")
				return
			}
			pageSize = parsed
		}

		if previews, err := ar.GetFeed(pageSize); err != nil {
			JSON.InternalServerError(writer, err)
		} else {
			JSON.Ok(writer, previews)
		}
	}
}

func getArtwork(ar ArtworkRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var artworkId = rest.GetParam(request, "id")
		if artworkId == "" {
			JSON.BadRequest(writer)
			return
		}

		// anonymous visitors get an empty requester id: no view gets recorded
		var requesterId, _ = auth.GetUserId(request)

		artwork, err := ar.GetArtwork(artworkId, requesterId)
		switch {
		case err == nil:
			JSON.Ok(writer, artwork)
		case errors.Is(err, ErrNotFound):
			JSON.NotFound(writer, "Artwork not found")
		default:
			JSON.InternalServerError(writer, err)
		}
	}
}

func updateArtwork(ar ArtworkRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var artworkId = rest.GetParam(request, "id")

		data, err := JSON.DecodeValidate[UpdateArtworkData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		var session = auth.MustGetUser(request)

		// issues a not found response regardless of authorisation issues, denying
		// information about existing resources
		switch err = ar.UpdateArtwork(artworkId, session.UserId, data); {
		case err == nil:
			JSON.NoContent(writer)
		case errors.Is(err, ErrNotFound):
			JSON.NotFound(writer, "Artwork not found")
		default:
			JSON.InternalServerError(writer, err)
		}
	}
}

func deleteArtwork(ar ArtworkRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var session = auth.MustGetUser(request)
		var artworkId = rest.GetParam(request, "id")

		if artworkId == "" {
			JSON.BadRequest(writer)
			return
		}

		if deleted := ar.DeleteArtwork(artworkId, session.UserId); deleted {
			JSON.NoContent(writer)
		} else {
			JSON.BadRequest(writer)
		}
	}
}

func addLike(ar ArtworkRepository, hub *live.Hub) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var session = auth.MustGetUser(request)
		var artworkId = rest.GetParam(request, "id")

		switch err := ar.AddLike(session.UserId, artworkId); {
		case err == nil:
			broadcastCounts(ar, hub, artworkId)
			JSON.NoContent(writer)
		case errors.Is(err, ErrNotModified):
			// a repeated like is an idempotent success, sans notification
			JSON.NoContent(writer)
		case errors.Is(err, ErrNotFound):
			JSON.NotFound(writer, "Artwork not found")
		default:
			JSON.InternalServerError(writer, err)
		}
	}
}

func removeLike(ar ArtworkRepository, hub *live.Hub) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var session = auth.MustGetUser(request)
		var artworkId = rest.GetParam(request, "id")

		switch err := ar.RemoveLike(session.UserId, artworkId); {
		case err == nil:
			broadcastCounts(ar, hub, artworkId)
			JSON.NoContent(writer)
		case errors.Is(err, ErrNotFound):
			JSON.NotFound(writer, "Like not found")
		default:
			JSON.InternalServerError(writer, err)
		}
	}
}

func getUserArtworks(ar ArtworkRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var alias = rest.GetParam(request, "alias")
		if err := users.ValidateUserAlias(alias); err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		if previews, err := ar.GetUserArtworks(alias); err != nil {
			JSON.InternalServerError(writer, err)
		} else {
			JSON.Ok(writer, previews)
		}
	}
}

// broadcastCounts pushes a fresh full snapshot of the artwork's tallies to live
// subscribers; a failed computation merely skips the notification, as subscribers
// will receive a consistent snapshot on the next change.
func broadcastCounts(ar ArtworkRepository, hub *live.Hub, artworkId string) {
	if likes, comments, err := ar.Counts(artworkId); err == nil {
		hub.Broadcast(live.Snapshot{
			ArtworkId: artworkId,
			Likes:     likes,
			Comments:  comments,
			Date:      ntime.Now(),
		})
	}
}
