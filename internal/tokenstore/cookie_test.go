package tokenstore_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/efactura/internal/tokenstore"
)

// roundTrip writes cookies through one response and carries them onto a fresh
// request, the way a browser would between two HTTP exchanges.
func roundTrip(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	return req
}

func TestCookieStore_SetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	token := testToken(time.Now(), time.Hour)

	rec := httptest.NewRecorder()
	writeStore := tokenstore.NewCookieStore(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, writeStore.SetToken(ctx, "Ion.Popescu", token))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
	assert.WithinDuration(t, token.ExpiresAt(), cookies[0].Expires, time.Second)

	readStore := tokenstore.NewCookieStore(httptest.NewRecorder(), roundTrip(t, rec))
	got, err := readStore.GetToken(ctx, "ion.popescu")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, token.AccessToken, got.AccessToken)
	assert.Equal(t, token.RefreshToken, got.RefreshToken)
}

func TestCookieStore_MissingCookie(t *testing.T) {
	store := tokenstore.NewCookieStore(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	got, err := store.GetToken(context.Background(), "user")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCookieStore_ExpiredTokenCleared(t *testing.T) {
	ctx := context.Background()
	stale := testToken(time.Now().Add(-2*time.Hour), time.Hour)

	rec := httptest.NewRecorder()
	writeStore := tokenstore.NewCookieStore(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, writeStore.SetToken(ctx, "user", stale))

	readRec := httptest.NewRecorder()
	readStore := tokenstore.NewCookieStore(readRec, roundTrip(t, rec))
	got, err := readStore.GetToken(ctx, "user")
	require.NoError(t, err)
	assert.Nil(t, got)

	// The read must have queued a deletion cookie.
	cleared := readRec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.True(t, cleared[0].MaxAge < 0 || cleared[0].Expires.Before(time.Now()))
}

func TestCookieStore_RemoveToken(t *testing.T) {
	ctx := context.Background()
	rec := httptest.NewRecorder()
	store := tokenstore.NewCookieStore(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, store.RemoveToken(ctx, "user"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestCookieStore_InsecureOption(t *testing.T) {
	rec := httptest.NewRecorder()
	store := tokenstore.NewCookieStore(rec, httptest.NewRequest(http.MethodGet, "/", nil),
		tokenstore.WithInsecureCookies())
	require.NoError(t, store.SetToken(context.Background(), "user", testToken(time.Now(), time.Hour)))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.False(t, cookies[0].Secure)
}
