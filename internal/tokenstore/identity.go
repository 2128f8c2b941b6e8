package tokenstore

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rezonia/efactura/internal/model"
)

// claimPriority is the order in which identity claims are consulted.
var claimPriority = []string{"name", "sub", "preferred_username", "email"}

// UserFromJWT extracts a user name from a JWT access token by consulting the
// identity claims in priority order. The signature is not verified here; the
// token was already accepted by the identity provider and only serves as an
// identity hint for store keying.
func UserFromJWT(raw string) (string, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return "", model.NewIdentityError("access token is not a parseable JWT")
	}
	for _, name := range claimPriority {
		if v, ok := claims[name].(string); ok && v != "" {
			return v, nil
		}
	}
	return "", model.NewIdentityError("no identity claim present in access token")
}

// UserFromRequest extracts a user name from the request's bearer token.
func UserFromRequest(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return "", model.NewIdentityError("no bearer token on request")
	}
	return UserFromJWT(raw)
}
