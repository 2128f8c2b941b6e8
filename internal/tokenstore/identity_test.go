package tokenstore_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/efactura/internal/model"
	"github.com/rezonia/efactura/internal/tokenstore"
)

func signedJWT(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return raw
}

func TestUserFromJWT_ClaimPriority(t *testing.T) {
	tests := []struct {
		name     string
		claims   jwt.MapClaims
		expected string
	}{
		{
			"name wins over everything",
			jwt.MapClaims{"name": "Ion Popescu", "sub": "123", "preferred_username": "ion", "email": "ion@example.com"},
			"Ion Popescu",
		},
		{
			"sub when name absent",
			jwt.MapClaims{"sub": "123", "preferred_username": "ion", "email": "ion@example.com"},
			"123",
		},
		{
			"preferred_username third",
			jwt.MapClaims{"preferred_username": "ion", "email": "ion@example.com"},
			"ion",
		},
		{
			"email last",
			jwt.MapClaims{"email": "ion@example.com"},
			"ion@example.com",
		},
		{
			"empty name skipped",
			jwt.MapClaims{"name": "", "sub": "123"},
			"123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := tokenstore.UserFromJWT(signedJWT(t, tt.claims))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, user)
		})
	}
}

func TestUserFromJWT_NoIdentityClaim(t *testing.T) {
	_, err := tokenstore.UserFromJWT(signedJWT(t, jwt.MapClaims{"iss": "anaf"}))
	var identityErr *model.IdentityError
	require.ErrorAs(t, err, &identityErr)
}

func TestUserFromJWT_NotAJWT(t *testing.T) {
	_, err := tokenstore.UserFromJWT("opaque-token")
	var identityErr *model.IdentityError
	require.ErrorAs(t, err, &identityErr)
}

func TestUserFromRequest(t *testing.T) {
	raw := signedJWT(t, jwt.MapClaims{"sub": "123"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	user, err := tokenstore.UserFromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "123", user)

	bare := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err = tokenstore.UserFromRequest(bare)
	var identityErr *model.IdentityError
	require.ErrorAs(t, err, &identityErr)

	basic := httptest.NewRequest(http.MethodGet, "/", nil)
	basic.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	_, err = tokenstore.UserFromRequest(basic)
	require.ErrorAs(t, err, &identityErr)
}
