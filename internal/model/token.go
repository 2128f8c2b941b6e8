package model

import "time"

// ValidityMargin is subtracted from a token's expiry when checking validity,
// so a token is treated as expired slightly before the provider would reject
// it. Keeps an access token from dying mid-request.
const ValidityMargin = 30 * time.Second

// Token is an OAuth2 token issued by the ANAF identity provider.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresIn    int64     `json:"expires_in"`
	CreatedAt    time.Time `json:"created_at"`
	User         string    `json:"user,omitempty"`
}

// ExpiresAt returns the absolute expiry time.
func (t *Token) ExpiresAt() time.Time {
	return t.CreatedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// IsValidAt reports whether the token is usable at the given instant.
// A token is valid while now is strictly before expiry minus ValidityMargin.
func (t *Token) IsValidAt(now time.Time) bool {
	if t.AccessToken == "" {
		return false
	}
	return now.Before(t.ExpiresAt().Add(-ValidityMargin))
}

// IsValid reports whether the token is usable right now.
func (t *Token) IsValid() bool {
	return t.IsValidAt(time.Now())
}

// IsExpiredAt reports whether the token is past its hard expiry at the given
// instant. Unlike IsValidAt this applies no safety margin; token stores use
// it to decide retention, so a token stays retrievable for refresh during the
// margin window even though it is no longer considered usable.
func (t *Token) IsExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt())
}

// IsExpired reports whether the token is past its hard expiry right now.
func (t *Token) IsExpired() bool {
	return t.IsExpiredAt(time.Now())
}

// HasRefreshToken reports whether the token can be renewed.
func (t *Token) HasRefreshToken() bool {
	return t.RefreshToken != ""
}
