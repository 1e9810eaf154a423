package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims holds the JWT token payload. Access and refresh tokens of one
// sign-in share the session id.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
	TokenType string `json:"typ"` // "access" or "refresh"
}

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	tokenIssuer = "kanban"
)

// ErrInvalidToken is returned when a JWT cannot be parsed or has expired.
var ErrInvalidToken = errors.New("auth: invalid or expired token")

// IssueAccessToken creates a signed JWT access token.
func IssueAccessToken(secret string, userID uuid.UUID, sessionID string, ttl time.Duration) (string, error) {
	return issueToken(secret, userID, sessionID, tokenTypeAccess, ttl)
}

// IssueRefreshToken creates a signed JWT refresh token.
func IssueRefreshToken(secret string, userID uuid.UUID, sessionID string, ttl time.Duration) (string, error) {
	return issueToken(secret, userID, sessionID, tokenTypeRefresh, ttl)
}

func issueToken(secret string, userID uuid.UUID, sessionID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    tokenIssuer,
		},
		UserID:    userID.String(),
		SessionID: sessionID,
		TokenType: tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("auth.issueToken: %w", err)
	}

	return signed, nil
}

// ValidateToken parses and validates a JWT token string. Returns the embedded claims.
func ValidateToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("auth.ValidateToken: %w", ErrInvalidToken)
	}

	if !token.Valid {
		return nil, fmt.Errorf("auth.ValidateToken: %w", ErrInvalidToken)
	}

	return claims, nil
}

// ValidateAccessToken is ValidateToken restricted to access tokens. It
// returns the user and session ids carried by the token.
func ValidateAccessToken(secret, tokenString string) (userID uuid.UUID, sessionID string, err error) {
	claims, err := ValidateToken(secret, tokenString)
	if err != nil {
		return uuid.Nil, "", err
	}
	if claims.TokenType != tokenTypeAccess || claims.SessionID == "" {
		return uuid.Nil, "", fmt.Errorf("auth.ValidateAccessToken: %w", ErrInvalidToken)
	}
	userID, err = uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("auth.ValidateAccessToken: %w", ErrInvalidToken)
	}
	return userID, claims.SessionID, nil
}
