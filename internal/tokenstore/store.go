// Package tokenstore persists OAuth2 tokens per user.
//
// All variants share one contract keyed by an explicit user name. Resolving
// "who is the current user" is a separate concern, see identity.go.
package tokenstore

import (
	"context"
	"strings"

	"github.com/rezonia/efactura/internal/model"
)

// Store maps a user name to their current token. User names compare
// case-insensitively. Reads are expiry-aware: a stored token found expired is
// removed and reported as absent.
type Store interface {
	// SetToken installs or overwrites the token for a user.
	SetToken(ctx context.Context, user string, token *model.Token) error

	// GetToken returns the stored token, or (nil, nil) when no usable token
	// exists. Finding an expired entry deletes it as a side effect.
	GetToken(ctx context.Context, user string) (*model.Token, error)

	// RemoveToken deletes the entry for a user, if any.
	RemoveToken(ctx context.Context, user string) error

	// HasValidToken reports whether a non-expired token is stored.
	HasValidToken(ctx context.Context, user string) (bool, error)
}

// normalizeUser canonicalizes the store key.
func normalizeUser(user string) (string, error) {
	user = strings.ToLower(strings.TrimSpace(user))
	if user == "" {
		return "", model.NewIdentityError("empty user name")
	}
	return user, nil
}
