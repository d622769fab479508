package users

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/archetype/archetype/internal/core/auth"
)

var (
	ErrInvalidID       = errors.New("invalid user id")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidFullName = errors.New("invalid full name")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidStatus   = errors.New("invalid user status")
)

type UserID struct {
	value uuid.UUID
}

// NewUserID returns a fresh time-ordered id.
func NewUserID() UserID {
	return UserID{value: uuid.Must(uuid.NewV7())}
}

func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return UserID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return UserID{value: id}, nil
}

func UserIDFrom(id uuid.UUID) UserID { return UserID{value: id} }

func (id UserID) Value() uuid.UUID { return id.value }
func (id UserID) String() string   { return id.value.String() }

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const maxEmailLength = 254

type EmailAddress struct {
	value string
}

// NewEmailAddress trims and lower-cases s before validating it.
func NewEmailAddress(s string) (EmailAddress, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" || len(v) > maxEmailLength || !emailPattern.MatchString(v) {
		return EmailAddress{}, fmt.Errorf("%w: %q", ErrInvalidEmail, s)
	}
	return EmailAddress{value: v}, nil
}

func (e EmailAddress) Value() string  { return e.value }
func (e EmailAddress) String() string { return e.value }

const (
	minFullNameLength = 3
	maxFullNameLength = 100
)

type FullName struct {
	value string
}

func NewFullName(s string) (FullName, error) {
	v := strings.TrimSpace(s)
	if n := utf8.RuneCountInString(v); n < minFullNameLength || n > maxFullNameLength {
		return FullName{}, fmt.Errorf("%w: must be between %d and %d characters",
			ErrInvalidFullName, minFullNameLength, maxFullNameLength)
	}
	return FullName{value: v}, nil
}

func (f FullName) Value() string  { return f.value }
func (f FullName) String() string { return f.value }

const (
	minPasswordLength = 8
	maxPasswordLength = 12
)

// PasswordHash holds a hashed password. It never renders the hash.
type PasswordHash struct {
	value string
}

// NewPasswordHash checks plain against the password policy and hashes it.
func NewPasswordHash(plain string, hasher auth.Hasher) (PasswordHash, error) {
	if err := checkPassword(plain); err != nil {
		return PasswordHash{}, err
	}
	hash, err := hasher.Hash(plain)
	if err != nil {
		return PasswordHash{}, fmt.Errorf("hash password: %w", err)
	}
	return PasswordHash{value: hash}, nil
}

// PasswordHashFrom wraps an already hashed password loaded from storage.
func PasswordHashFrom(hash string) PasswordHash { return PasswordHash{value: hash} }

func (p PasswordHash) Value() string  { return p.value }
func (p PasswordHash) String() string { return "********" }

func (p PasswordHash) Verify(plain string, hasher auth.Hasher) bool {
	return p.value != "" && hasher.Verify(plain, p.value)
}

func checkPassword(plain string) error {
	password := strings.TrimSpace(plain)

	if n := utf8.RuneCountInString(password); n < minPasswordLength || n > maxPasswordLength {
		return fmt.Errorf("%w: length must be between %d and %d characters",
			ErrInvalidPassword, minPasswordLength, maxPasswordLength)
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r):
			symbol = true
		}
	}

	switch {
	case !upper:
		return fmt.Errorf("%w: must contain at least one uppercase letter", ErrInvalidPassword)
	case !lower:
		return fmt.Errorf("%w: must contain at least one lowercase letter", ErrInvalidPassword)
	case !digit:
		return fmt.Errorf("%w: must contain at least one digit", ErrInvalidPassword)
	case !symbol:
		return fmt.Errorf("%w: must contain at least one symbol", ErrInvalidPassword)
	}
	return nil
}

type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

func ParseStatus(s string) (Status, error) {
	switch v := Status(strings.ToLower(strings.TrimSpace(s))); v {
	case StatusActive, StatusDisabled:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s *Status) UnmarshalText(text []byte) error {
	v, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
