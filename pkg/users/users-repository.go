package users

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/artistry/webapi/pkg/auth"
	"github.com/gofrs/uuid"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	Register(data AddUserData) (*User, error)
	ExistsUserId(id string) bool
	GetUserByAlias(alias string) (user User, err error)
	GetCredentials(email string) (id, alias, hashedPassword string, err error)
	UpdateName(userId string, newName string) error
	UpdatePhoto(userId string, newPhotoUrl string) error

	AddDonation(artistAlias string, data DonationData) error
	GetDonations(userId string) ([]DonationResponse, error)
	GetAnalytics(userId string) (AnalyticsData, error)
}

type userRepository struct {
	Connection *sql.DB
}

var (
	ErrNotFound   = errors.New("user not found")
	ErrAliasTaken = errors.New("alias is already taken")
	ErrEmailTaken = errors.New("email is already in use")
)

func NewRepository(connection *sql.DB) UserRepository {
	return &userRepository{connection}
}

func (ur *userRepository) ExistsUserId(id string) (exists bool) {
	// will return false in the absence of positive results
	err := ur.Connection.QueryRow("SELECT TRUE FROM users WHERE id = ?", id).Scan(&exists)
	return err == nil && exists
}

// GetUserByAlias either returns a user matching the alias, or an error (along with an ignorable empty struct).
func (ur *userRepository) GetUserByAlias(alias string) (user User, err error) {
	if err = ur.Connection.QueryRow(`
		SELECT id, alias, name, email, coalesce(photo_url, ''), created, updated FROM users WHERE alias = ?`,
		strings.ToLower(alias)).Scan(
		&user.Id,
		&user.Alias,
		&user.Name,
		&user.Email,
		&user.PhotoUrl,
		&user.Created,
		&user.Updated,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user, ErrNotFound
		}
		return user, err
	}
	return user, nil
}

// GetCredentials fetches the stored password hash by email, for the sessions handler to
// compare against; unknown emails map to the same error as wrong passwords.
func (ur *userRepository) GetCredentials(email string) (id, alias, hashedPassword string, err error) {
	err = ur.Connection.QueryRow("SELECT id, alias, password FROM users WHERE email = ?", email).Scan(
		&id, &alias, &hashedPassword)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", "", auth.ErrInvalidCredentials
	}
	return id, alias, hashedPassword, err
}

// Register creates a new account: alias and email uniqueness rest on database
// constraints rather than a prior existence check, which would be open to races
// between concurrent sign ups.
func (ur *userRepository) Register(data AddUserData) (user *User, err error) {

	// generate a new unique Id
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("couldn't generate a unique user id for %q: %w", data.Alias, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("couldn't hash the password for %q: %w", data.Alias, err)
	}

	var now = time.Now()
	var alias = strings.ToLower(data.Alias)
	var name = data.Name
	if name == "" {
		name = alias
	}

	_, err = ur.Connection.Exec(
		"INSERT INTO users(id, alias, name, email, password, created, updated) VALUES(?, ?, ?, ?, ?, ?, ?)",
		id.String(), alias, name, data.Email, string(hashed), now, now)

	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			if strings.Contains(sqliteErr.Error(), "users.email") {
				return nil, ErrEmailTaken
			}
			return nil, ErrAliasTaken
		}
		return nil, fmt.Errorf("couldn't add user %q: %w", data.Alias, err)
	}

	return &User{
		Id:      id.String(),
		Alias:   alias,
		Name:    name,
		Email:   data.Email,
		Created: now,
		Updated: now,
	}, nil
}

func (ur *userRepository) UpdateName(userId string, newName string) error {
	// avoid using DB triggers for possible future storage switches
	_, err := ur.Connection.Exec("UPDATE users SET name = ?, updated = ? WHERE id = ?", newName, time.Now(), userId)
	return err
}

func (ur *userRepository) UpdatePhoto(userId string, newPhotoUrl string) error {
	_, err := ur.Connection.Exec("UPDATE users SET photo_url = ?, updated = ? WHERE id = ?",
		newPhotoUrl, time.Now(), userId)
	return err
}
