package artworks

import (
	"github.com/artistry/webapi/pkg/ntime"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type Artwork struct {
	Id          string
	Title       string
	Description string
	PictureURL  string
	Tags        []string
	Author      ArtworkAuthor
	Likes       int
	Comments    int
	Views       int
	Liked       bool
	Added       ntime.NTime
	Updated     ntime.NTime
}

type ArtworkAuthor struct {
	Alias    string
	Name     string
	PhotoUrl string
}

var tagRules = []validation.Rule{
	validation.Length(0, 20),
	validation.Each(validation.Required, validation.Length(1, 50)),
}

type AddArtworkData struct {
	Title       string
	Description string
	PictureURL  string
	Tags        []string
}

func (data AddArtworkData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&data.Description, validation.Length(0, 3000)),
		validation.Field(&data.PictureURL, validation.Required, is.URL),
		validation.Field(&data.Tags, tagRules...),
	)
}

// UpdateArtworkData carries the full editable state; partial updates aren't supported,
// as the search index must be recomputed from the complete title, description and tags.
type UpdateArtworkData struct {
	Title       string
	Description string
	PictureURL  string
	Tags        []string
}

func (data UpdateArtworkData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&data.Description, validation.Length(0, 3000)),
		validation.Field(&data.PictureURL, validation.Required, is.URL),
		validation.Field(&data.Tags, tagRules...),
	)
}

// ArtworkPreview feeds list surfaces: the home feed, search results and profiles.
type ArtworkPreview struct {
	Id          string
	Title       string
	PictureURL  string
	AuthorAlias string
	Likes       int
	Comments    int
	Added       ntime.NTime
}

// Comments

type CommentData struct {
	Comment string
}

func (data CommentData) Validate() error {
	return validation.ValidateStruct(&data, validation.Field(&data.Comment,
		validation.Required,
		validation.Length(1, 3000),
	))
}

type CommentResponse struct {
	Id          string
	AuthorAlias string
	AuthorName  string
	Comment     string
	Date        ntime.NTime
}
