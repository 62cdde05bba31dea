package access

import (
	"errors"
	"strings"
)

const bearerPrefix = "Bearer "

var (
	// ErrMissingHeader indicates the request carried no Authorization header.
	ErrMissingHeader = errors.New("authorization header missing")

	// ErrBadScheme indicates the Authorization header did not use the
	// Bearer scheme.
	ErrBadScheme = errors.New("invalid authorization scheme")

	// ErrInvalidToken indicates the presented token is not in the store.
	ErrInvalidToken = errors.New("invalid token")
)

// Authenticate resolves the Authorization header value to a user ID. It is a
// pure lookup with no side effects; the caller maps the returned sentinel
// errors onto HTTP responses.
func (s *TokenStore) Authenticate(authorization string) (string, error) {
	if authorization == "" {
		return "", ErrMissingHeader
	}

	if !strings.HasPrefix(authorization, bearerPrefix) {
		return "", ErrBadScheme
	}

	userID, ok := s.UserID(authorization[len(bearerPrefix):])
	if !ok {
		return "", ErrInvalidToken
	}

	return userID, nil
}
