package model

import (
	"net/url"
	"strings"

	"github.com/Aliiiqbp/OverUnder/internal/domain"

	"github.com/google/uuid"
)

// User is the identity record created by the login stub.
// It is immutable once created and only lives as long as the login.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// NewUser builds a user from the login form. The id is derived from the
// e-mail so the same address maps to the same sessions across restarts.
func NewUser(name, email string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidArgument
	}
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}
	return &User{
		ID:        uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String(),
		Name:      name,
		Email:     email,
		AvatarURL: "https://ui-avatars.com/api/?background=random&name=" + url.QueryEscape(name),
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
