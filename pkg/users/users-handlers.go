package users

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/artistry/webapi/pkg/auth"
	JSON "github.com/artistry/webapi/pkg/json-utilities"
	"github.com/artistry/webapi/pkg/rest"
)

func RegisterHandlers(engine rest.Engine, ur UserRepository, notary *auth.Notary) {
	engine.Post("/users", addUser(ur))
	engine.Get("/users/:alias", getUser(ur))

	engine.Put("/profile/name", updateName(ur), auth.Auth(notary, ur))
	engine.Put("/profile/photo", updatePhoto(ur), auth.Auth(notary, ur))

	// donations are recorded by the checkout collaborator's redirect callback, which
	// carries no session; the payment happened regardless of who reports it
	engine.Post("/users/:alias/donations", addDonation(ur))
	engine.Get("/profile/donations", getDonations(ur), auth.Auth(notary, ur))
	engine.Get("/profile/analytics", getAnalytics(ur), auth.Auth(notary, ur))
}

func addUser(ur UserRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		// parse and validate the user data
		data, err := JSON.DecodeValidate[AddUserData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		newUser, err := ur.Register(data)
		switch {
		case err == nil:
			JSON.Created(writer, newUser)
		case errors.Is(err, ErrAliasTaken):
			JSON.Conflict(writer, fmt.Sprintf("Username %s is already taken", data.Alias))
		case errors.Is(err, ErrEmailTaken):
			JSON.Conflict(writer, "Email is already in use")
		default:
			JSON.InternalServerError(writer, err)
		}
	}
}

func getUser(ur UserRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var alias = rest.GetParam(request, "alias")
		if err := ValidateUserAlias(alias); err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		user, err := ur.GetUserByAlias(alias)
		switch {
		case err == nil:
			JSON.Ok(writer, user)
		case errors.Is(err, ErrNotFound):
			JSON.NotFound(writer, fmt.Sprintf("User %s doesn't exist", alias))
		default:
			JSON.InternalServerError(writer, err)
		}
	}
}

func updateName(ur UserRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var session = auth.MustGetUser(request)

		data, err := JSON.DecodeValidate[UpdateNameData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		if err = ur.UpdateName(session.UserId, data.Name); err != nil {
			JSON.InternalServerError(writer, err)
			return
		}

		JSON.NoContent(writer)
	}
}

func updatePhoto(ur UserRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var session = auth.MustGetUser(request)

		data, err := JSON.DecodeValidate[UpdatePhotoData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		if err = ur.UpdatePhoto(session.UserId, data.PhotoUrl); err != nil {
			JSON.InternalServerError(writer, err)
			return
		}

		JSON.NoContent(writer)
	}
}

// addDonation handles the POST "/users/:alias/donations" route.
func addDonation(ur UserRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var alias = rest.GetParam(request, "alias")
		if err := ValidateUserAlias(alias); err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		data, err := JSON.DecodeValidate[DonationData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		switch err = ur.AddDonation(alias, data); {
		case err == nil:
			JSON.Created(writer, nil)
		case errors.Is(err, ErrNotFound):
			JSON.NotFound(writer, fmt.Sprintf("User %s doesn't exist", alias))
		default:
			JSON.InternalServerError(writer, err)
		}
	}
}

func getDonations(ur UserRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var session = auth.MustGetUser(request)

		if donations, err := ur.GetDonations(session.UserId); err != nil {
			JSON.InternalServerError(writer, err)
		} else {
			JSON.Ok(writer, donations)
		}
	}
}

func getAnalytics(ur UserRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var session = auth.MustGetUser(request)

		if analytics, err := ur.GetAnalytics(session.UserId); err != nil {
			JSON.InternalServerError(writer, err)
		} else {
			JSON.Ok(writer, analytics)
		}
	}
}
