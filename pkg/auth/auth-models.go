package auth

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Session identifies the authenticated account behind a request. It's resolved once by
// the middleware and passed along explicitly in the request context; consumers read it,
// never mutate it.
type Session struct {
	UserId string
	Alias  string
}

type SignInData struct {
	Email    string
	Password string
}

func (data SignInData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Email, validation.Required, is.Email),
		validation.Field(&data.Password, validation.Required),
	)
}

// SessionResponse carries the freshly signed bearer token to the client.
type SessionResponse struct {
	Token string
	Id    string
	Alias string
}
