package auth

import (
	"errors"
	"net/http"

	JSON "github.com/artistry/webapi/pkg/json-utilities"
	"github.com/artistry/webapi/pkg/rest"
	"golang.org/x/crypto/bcrypt"
)

// CredentialsVerifier fetches the stored credentials matching an email address;
// implemented by the users repository.
type CredentialsVerifier interface {
	GetCredentials(email string) (id, alias, hashedPassword string, err error)
}

func RegisterHandlers(engine rest.Engine, notary *Notary, verifier CredentialsVerifier) {
	engine.Post("/sessions", signIn(notary, verifier))
}

// signIn handles the POST "/sessions" route, exchanging valid credentials for a bearer token.
func signIn(notary *Notary, verifier CredentialsVerifier) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		data, err := JSON.DecodeValidate[SignInData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		id, alias, hashedPassword, err := verifier.GetCredentials(data.Email)
		if err != nil {
			// an unknown email yields the same response as a bad password
			if errors.Is(err, ErrInvalidCredentials) {
				JSON.Unauthorised(writer)
			} else {
				JSON.InternalServerError(writer, err)
			}
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(data.Password)) != nil {
			JSON.Unauthorised(writer)
			return
		}

		token, err := notary.IssueToken(id, alias)
		if err != nil {
			JSON.InternalServerError(writer, err)
			return
		}

		JSON.Created(writer, SessionResponse{Token: token, Id: id, Alias: alias})
	}
}
