package mw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/EgorLis/resume-builder/internal/domain"
)

type countLimiter struct {
	allowed int
	keys    []string
}

func (l *countLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) bool {
	l.keys = append(l.keys, key)
	l.allowed++
	return l.allowed <= limit
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimitIP(t *testing.T) {
	l := &countLimiter{}
	h := RateLimitIP(l, nil, 2, time.Minute)(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, "60", rec.Header().Get("Retry-After"))
			var env domain.APIEnvelope
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
			require.NotNil(t, env.Error)
			assert.Equal(t, domain.ErrCodeTooManyRequests, env.Error.Code)
		}
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
	assert.Equal(t, "ip:10.0.0.1:/api/auth/login", l.keys[0])
}

func TestRateLimitUserKeysByUser(t *testing.T) {
	l := &countLimiter{}
	h := RateLimitUser(l, nil, 10, time.Minute)(okHandler)
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/resumes", nil)
	req = req.WithContext(domain.WithUser(req.Context(), domain.User{ID: id, IsActive: true}))
	h.ServeHTTP(httptest.NewRecorder(), req)

	anon := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	anon.RemoteAddr = "192.168.1.7:1234"
	h.ServeHTTP(httptest.NewRecorder(), anon)

	assert.Equal(t, []string{"user:" + id.String() + ":/api/resumes", "user:192.168.1.7:/api/templates"}, l.keys)
}

func TestWithRequestID(t *testing.T) {
	var seen string
	h := WithRequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "bad id with spaces")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err, "invalid incoming id is replaced by a uuid")
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc "))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken("Bearer"))
}

type fakeTokens struct {
	claims domain.TokenClaims
}

func (f fakeTokens) Issue(context.Context, domain.UserID, string) (domain.Token, domain.TokenClaims, error) {
	return "", domain.TokenClaims{}, errors.New("not used")
}

func (f fakeTokens) Parse(_ context.Context, t domain.Token) (domain.TokenClaims, error) {
	if t != "good" {
		return domain.TokenClaims{}, errors.New("bad token")
	}
	return f.claims, nil
}

type fakeBlacklist map[string]bool

func (b fakeBlacklist) Revoke(context.Context, string, time.Time) error { return nil }
func (b fakeBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	return b[jti], nil
}

type fakeUsers map[domain.UserID]domain.User

func (u fakeUsers) ByID(_ context.Context, id domain.UserID) (domain.User, error) {
	user, ok := u[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func authDeps(user domain.User, jti string, revoked bool) AuthDeps {
	return AuthDeps{
		Tokens:    fakeTokens{claims: domain.TokenClaims{JTI: jti, UserID: user.ID}},
		Blacklist: fakeBlacklist{jti: revoked},
		Users:     fakeUsers{user.ID: user},
		Log:       zap.NewNop(),
	}
}

func TestRequireAuth(t *testing.T) {
	active := domain.User{ID: uuid.New(), Email: "a@b.c", IsActive: true}
	inactive := domain.User{ID: uuid.New(), IsActive: false}

	tests := []struct {
		name   string
		deps   AuthDeps
		header string
		want   int
	}{
		{"no header", authDeps(active, "j1", false), "", http.StatusUnauthorized},
		{"bad token", authDeps(active, "j1", false), "Bearer nope", http.StatusUnauthorized},
		{"revoked", authDeps(active, "j1", true), "Bearer good", http.StatusUnauthorized},
		{"inactive user", authDeps(inactive, "j1", false), "Bearer good", http.StatusUnauthorized},
		{"ok", authDeps(active, "j1", false), "Bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got domain.User
			h := RequireAuth(tt.deps)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = domain.UserFromCtx(r.Context())
				w.WriteHeader(http.StatusOK)
			}))
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, active.ID, got.ID)
			}
		})
	}
}

func TestOptionalAuthPassesAnonymous(t *testing.T) {
	active := domain.User{ID: uuid.New(), IsActive: true}
	var hasUser bool
	h := OptionalAuth(authDeps(active, "j", false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasUser = domain.UserFromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	req.Header.Set("Authorization", "Bearer nope")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, hasUser)

	req = httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	req.Header.Set("Authorization", "Bearer good")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, hasUser)
}

func TestRateLimitIPIgnoresForwardedFromUntrustedPeer(t *testing.T) {
	l := &countLimiter{}
	h := RealIP(nil)(RateLimitIP(l, nil, 3, time.Minute)(okHandler))

	codes := make([]int, 0, 10)
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("192.0.2.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 200, 429, 429, 429, 429, 429, 429, 429}, codes)
	for _, k := range l.keys {
		assert.Equal(t, "ip:203.0.113.7:/api/auth/login", k)
	}
}

func TestRealIP(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name   string
		remote string
		xff    []string
		xrip   string
		want   string
	}{
		{name: "untrusted peer", remote: "203.0.113.7:1", xff: []string{"1.2.3.4"}, want: "203.0.113.7:1"},
		{name: "trusted peer", remote: "10.0.0.2:1", xff: []string{"1.2.3.4"}, want: "1.2.3.4"},
		{name: "spoofed left hop", remote: "10.0.0.2:1", xff: []string{"6.6.6.6, 1.2.3.4, 10.0.0.5"}, want: "1.2.3.4"},
		{name: "multiple headers", remote: "10.0.0.2:1", xff: []string{"6.6.6.6", "1.2.3.4"}, want: "1.2.3.4"},
		{name: "real ip header", remote: "10.0.0.2:1", xrip: "1.2.3.4", want: "1.2.3.4"},
		{name: "garbage hop", remote: "10.0.0.2:1", xff: []string{"nope"}, want: "10.0.0.2:1"},
		{name: "no headers", remote: "10.0.0.2:1", want: "10.0.0.2:1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := RealIP(trusted)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for _, v := range tt.xff {
				req.Header.Add("X-Forwarded-For", v)
			}
			if tt.xrip != "" {
				req.Header.Set("X-Real-IP", tt.xrip)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, got)
		})
	}
}
