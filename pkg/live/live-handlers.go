package live

import (
	"net/http"

	JSON "github.com/artistry/webapi/pkg/json-utilities"
	"github.com/artistry/webapi/pkg/ntime"
	"github.com/artistry/webapi/pkg/rest"
	"github.com/gorilla/websocket"
)

// SnapshotSource computes the current tallies of an artwork; satisfied by the
// artworks store.
type SnapshotSource interface {
	Counts(artworkId string) (likes, comments int, err error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// cross origin browsing contexts are legitimate clients, same as the REST routes
	CheckOrigin: func(r *http.Request) bool { return true },
}

func RegisterHandlers(engine rest.Engine, hub *Hub, source SnapshotSource) {
	engine.Get("/artworks/:id/live", stream(hub, source))
}

// stream upgrades the request to a websocket session and forwards the artwork's
// snapshots until the peer goes away. An initial snapshot is always sent, so freshly
// attached clients needn't race a mutation to learn the current tallies.
func stream(hub *Hub, source SnapshotSource) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var artworkId = rest.GetParam(request, "id")
		var logger = rest.GetLogger(request)

		likes, comments, err := source.Counts(artworkId)
		if err != nil {
			JSON.InternalServerError(writer, err)
			return
		}

		connection, err := upgrader.Upgrade(writer, request, nil)
		if err != nil {
			// Upgrade already replied with an error status
			logger.WithError(err).Debug("websocket upgrade refused")
			return
		}
		defer func() { _ = connection.Close() }()

		id, snapshots := hub.Register(artworkId)
		defer hub.Unregister(artworkId, id)

		// the read pump discards client messages but detects closures; its termination
		// flags the session as dead, so snapshots arriving later are discarded rather
		// than written to a torn down connection
		var closed = make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, readErr := connection.ReadMessage(); readErr != nil {
					return
				}
			}
		}()

		if err = connection.WriteJSON(Snapshot{
			ArtworkId: artworkId,
			Likes:     likes,
			Comments:  comments,
			Date:      ntime.Now(),
		}); err != nil {
			return
		}

		for {
			select {
			case snapshot, open := <-snapshots:
				if !open {
					return
				}
				if err = connection.WriteJSON(snapshot); err != nil {
					return
				}
			case <-closed:
				return
			}
		}
	}
}
