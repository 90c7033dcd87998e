package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a platform user
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	FullName     string             `bson:"full_name" json:"fullName"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
}

// Summary returns the public projection of a user. The display name
// travels as "username" for compatibility with the web client.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID.Hex(),
		Username: u.FullName,
		Email:    u.Email,
	}
}

// UserSummary is the wire shape of a user
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserCreate represents sign-up data
type UserCreate struct {
	FullName string `json:"fullName" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserLogin represents sign-in credentials
type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	// Create inserts a new user; returns ErrEmailTaken when the
	// normalized email already exists.
	Create(ctx context.Context, user *User) error
	// GetByEmail looks up a user by normalized email. Returns (nil, nil)
	// when no such user exists.
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByID returns (nil, nil) when no such user exists.
	GetByID(ctx context.Context, id primitive.ObjectID) (*User, error)
}
