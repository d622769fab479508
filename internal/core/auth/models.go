package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Principal identifies the caller a token was issued to.
type Principal struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type JWTClaims struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}

func (c *JWTClaims) Principal() Principal {
	return Principal{UserID: c.Subject, Email: c.Email, FullName: c.FullName}
}

// Token is a signed access token and its lifetime in seconds.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
