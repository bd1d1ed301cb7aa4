package rest

import (
	"github.com/gofrs/uuid"
	"github.com/julienschmidt/httprouter"
	"net/http"
)

// GetParam extracts a named route parameter, i.e. `id` from "/artworks/:id".
func GetParam(request *http.Request, name string) string {
	return httprouter.ParamsFromContext(request.Context()).ByName(name)
}

// MustGetNewUUID returns a new v4 UUID string, panicking when the random source fails.
func MustGetNewUUID() string {
	id, err := uuid.NewV4()
	if err != nil {
		panic(err)
	}
	return id.String()
}
