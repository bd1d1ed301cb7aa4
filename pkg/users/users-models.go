package users

import (
	"regexp"
	"time"

	"github.com/artistry/webapi/pkg/ntime"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// aliases span 3-20 characters, letters, digits and underscores only; stored lower-cased
var aliasPattern = regexp.MustCompile(`^\w+$`)
var aliasRules = []validation.Rule{validation.Required, validation.Length(3, 20), validation.Match(aliasPattern)}
var nameRules = []validation.Rule{validation.Length(3, 50)}

type User struct {
	Id       string
	Alias    string
	Name     string
	Email    string
	PhotoUrl string
	Created  time.Time
	Updated  time.Time
}

type AddUserData struct {
	Alias    string
	Name     string
	Email    string
	Password string
}

func (data AddUserData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Alias, aliasRules...),
		validation.Field(&data.Name, nameRules...),
		validation.Field(&data.Email, validation.Required, is.Email),
		validation.Field(&data.Password, validation.Required, validation.Length(6, 50)),
	)
}

type UpdateNameData struct {
	Name string
}

func (data UpdateNameData) Validate() error {
	return validation.ValidateStruct(&data, validation.Field(&data.Name, append(nameRules, validation.Required)...))
}

type UpdatePhotoData struct {
	PhotoUrl string
}

func (data UpdatePhotoData) Validate() error {
	return validation.ValidateStruct(&data, validation.Field(&data.PhotoUrl, validation.Required, is.URL))
}

func ValidateUserAlias(alias string) error {
	return validation.Validate(alias, aliasRules...)
}

// Donations

// DonationData arrives from the checkout collaborator's success redirect; the payment
// itself was processed externally and is merely recorded here.
type DonationData struct {
	Amount   float64
	Currency string
	Status   string
	Donor    string
}

func (data DonationData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Amount, validation.Required, validation.Min(0.01)),
		validation.Field(&data.Currency, validation.Required, validation.Length(3, 3)),
		validation.Field(&data.Status, validation.Required, validation.In("success", "pending")),
		validation.Field(&data.Donor, validation.Length(0, 50)),
	)
}

type DonationResponse struct {
	Id       string
	Donor    string
	Amount   float64
	Currency string
	Status   string
	Date     ntime.NTime
}

// Analytics

// AnalyticsData aggregates per-artist totals, recomputed on demand rather than read
// from denormalised counters, which may drift.
type AnalyticsData struct {
	Views    int
	Likes    int
	Comments int
	Earnings float64
}
