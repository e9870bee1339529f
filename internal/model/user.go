package model

import (
	"slices"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Image references an object in the media store. PublicID is empty for
// externally hosted images (social login avatars).
type Image struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// User is the durable account. The password hash never leaves the process:
// it is excluded from API responses and from the cached session snapshot.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsVerified   bool      `json:"is_verified"`
	Avatar       *Image    `json:"avatar,omitempty"`
	Courses      []string  `json:"courses"`
	Products     []string  `json:"products"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) OwnsCourse(courseID string) bool {
	return slices.Contains(u.Courses, courseID)
}

func (u User) OwnsProduct(productID string) bool {
	return slices.Contains(u.Products, productID)
}

// PendingUser is a registration awaiting activation. It only lives inside
// the activation token.
type PendingUser struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	AccessTTL    time.Duration `json:"-"`
	RefreshTTL   time.Duration `json:"-"`
}
