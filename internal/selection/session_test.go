package selection

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessions_RememberAsset(t *testing.T) {
	s := NewSessions([]byte("0123456789abcdef0123456789abcdef"), false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	v := s.Get(req)
	require.NotEmpty(t, v.ID)
	assert.Empty(t, v.LastAsset)

	rec := httptest.NewRecorder()
	require.NoError(t, v.Remember(rec, req, "GOLD"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	again := s.Get(next)
	assert.Equal(t, v.ID, again.ID)
	assert.Equal(t, "GOLD", again.LastAsset)
}

func TestSessions_ForeignCookieStartsFresh(t *testing.T) {
	a := NewSessions([]byte("0123456789abcdef0123456789abcdef"), false)
	b := NewSessions([]byte("fedcba9876543210fedcba9876543210"), false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	v := a.Get(req)
	rec := httptest.NewRecorder()
	require.NoError(t, v.Remember(rec, req, "SPY"))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(rec.Result().Cookies()[0])
	other := b.Get(next)
	assert.NotEqual(t, v.ID, other.ID)
	assert.Empty(t, other.LastAsset)
}
