package users

import (
	"context"
	"time"

	"github.com/archetype/archetype/internal/core/criteria"
)

type User struct {
	ID           UserID
	Email        EmailAddress
	FullName     FullName
	PasswordHash PasswordHash
	Status       Status
	CreatedAt    time.Time
}

func NewUser(id UserID, email EmailAddress, fullName FullName, password PasswordHash, now time.Time) *User {
	return &User{
		ID:           id,
		Email:        email,
		FullName:     fullName,
		PasswordHash: password,
		Status:       StatusActive,
		CreatedAt:    now.UTC().Truncate(time.Microsecond),
	}
}

func (u *User) IsActive() bool { return u.Status == StatusActive }

// Repository persists users. Find and FindByEmail return (nil, nil) when no
// user matches.
type Repository interface {
	Find(ctx context.Context, id UserID) (*User, error)
	FindByEmail(ctx context.Context, email EmailAddress) (*User, error)
	Matching(ctx context.Context, c *criteria.Criteria) ([]*User, error)
	Save(ctx context.Context, user *User) error
}

// Request/Response types
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserSummary struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func Summarize(u *User) UserSummary {
	return UserSummary{
		ID:        u.ID.String(),
		Email:     u.Email.Value(),
		FullName:  u.FullName.Value(),
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	User        UserSummary `json:"user"`
}

// ListResult is one page of users. Total counts the users on this page.
type ListResult struct {
	Users  []UserSummary `json:"users"`
	Total  int           `json:"total"`
	Limit  uint32        `json:"limit"`
	Offset uint32        `json:"offset"`
}
