package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/kanban/internal/auth"
)

const (
	validCode     = "valid-code"
	providerToken = "provider-token"
)

// fakeIdentity serves the token, profile and email endpoints of a provider.
// A string body is written verbatim; anything else is JSON encoded.
type fakeIdentity struct {
	profile       any
	emails        any
	profileStatus int
}

// attach starts the fake and points p's endpoints at it.
func (f fakeIdentity) attach(t *testing.T, p *auth.OAuthProvider) *auth.OAuthProvider {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("code") != validCode {
			writeBody(w, http.StatusBadRequest, map[string]string{
				"error":             "invalid_grant",
				"error_description": "code is expired or invalid",
			})
			return
		}
		writeBody(w, http.StatusOK, map[string]string{
			"access_token": providerToken,
			"token_type":   "Bearer",
		})
	})
	authorized := func(next func(w http.ResponseWriter)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+providerToken {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next(w)
		}
	}
	mux.HandleFunc("GET /user", authorized(func(w http.ResponseWriter) {
		if f.profileStatus != 0 {
			w.WriteHeader(f.profileStatus)
			return
		}
		writeBody(w, http.StatusOK, f.profile)
	}))
	mux.HandleFunc("GET /user/emails", authorized(func(w http.ResponseWriter) {
		writeBody(w, http.StatusOK, f.emails)
	}))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p.TokenURL = srv.URL + "/token"
	p.UserInfoURL = srv.URL + "/user"
	if p.EmailsURL != "" {
		p.EmailsURL = srv.URL + "/user/emails"
	}
	return p
}

func writeBody(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if s, ok := body.(string); ok {
		_, _ = w.Write([]byte(s))
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// googleProvider returns a Google provider whose account has a verified email.
func googleProvider(t *testing.T, id, email string) *auth.OAuthProvider {
	t.Helper()
	return fakeIdentity{profile: map[string]any{
		"id":             id,
		"email":          email,
		"verified_email": true,
		"name":           "Alice G",
		"picture":        "https://photo.example.com/a.jpg",
	}}.attach(t, auth.NewGoogleProvider("cid", "csec", "https://example.com/cb"))
}

func TestAuthorizationURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provider *auth.OAuthProvider
		host     string
		path     string
		scope    string
	}{
		{
			name:     "google",
			provider: auth.NewGoogleProvider("google-client", "secret", "https://kanban.example.com/api/v1/auth/oauth/google/callback"),
			host:     "accounts.google.com",
			path:     "/o/oauth2/auth",
			scope:    "openid email profile",
		},
		{
			name:     "github",
			provider: auth.NewGitHubProvider("github-client", "secret", "https://kanban.example.com/api/v1/auth/oauth/github/callback"),
			host:     "github.com",
			path:     "/login/oauth/authorize",
			scope:    "read:user user:email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			u, err := url.Parse(tt.provider.AuthorizationURL("state-123"))
			require.NoError(t, err)

			assert.Equal(t, tt.host, u.Host)
			assert.Equal(t, tt.path, u.Path)
			q := u.Query()
			assert.Equal(t, tt.name+"-client", q.Get("client_id"))
			assert.Equal(t, "state-123", q.Get("state"))
			assert.Equal(t, "code", q.Get("response_type"))
			assert.Equal(t, "online", q.Get("access_type"))
			assert.Equal(t, tt.scope, q.Get("scope"))
			assert.Equal(t, tt.provider.RedirectURL, q.Get("redirect_uri"))
			assert.Equal(t, tt.name, tt.provider.Name)
		})
	}
}

func TestExchangeCode_Google(t *testing.T) {
	t.Parallel()

	t.Run("verified account", func(t *testing.T) {
		t.Parallel()
		p := googleProvider(t, "google-123", "alice@gmail.com")

		info, err := p.ExchangeCode(t.Context(), validCode)
		require.NoError(t, err)
		assert.Equal(t, &auth.UserInfo{
			ProviderID: "google-123",
			Email:      "alice@gmail.com",
			Name:       "Alice G",
			AvatarURL:  "https://photo.example.com/a.jpg",
		}, info)
	})

	t.Run("unverified email is refused", func(t *testing.T) {
		t.Parallel()
		p := fakeIdentity{profile: map[string]any{
			"id":             "google-456",
			"email":          "mallory@gmail.com",
			"verified_email": false,
		}}.attach(t, auth.NewGoogleProvider("cid", "csec", "https://example.com/cb"))

		info, err := p.ExchangeCode(t.Context(), validCode)
		require.ErrorIs(t, err, auth.ErrEmailUnavailable)
		assert.Nil(t, info)
	})
}

func TestExchangeCode_GitHub(t *testing.T) {
	t.Parallel()

	newGitHub := func() *auth.OAuthProvider {
		return auth.NewGitHubProvider("cid", "csec", "https://example.com/cb")
	}

	t.Run("public email", func(t *testing.T) {
		t.Parallel()
		p := fakeIdentity{profile: map[string]any{
			"id":         42,
			"login":      "octocat",
			"name":       "The Octocat",
			"email":      "octocat@github.com",
			"avatar_url": "https://avatars.githubusercontent.com/u/42",
		}}.attach(t, newGitHub())

		info, err := p.ExchangeCode(t.Context(), validCode)
		require.NoError(t, err)
		assert.Equal(t, "42", info.ProviderID)
		assert.Equal(t, "octocat@github.com", info.Email)
		assert.Equal(t, "The Octocat", info.Name)
		assert.Equal(t, "https://avatars.githubusercontent.com/u/42", info.AvatarURL)
	})

	t.Run("private email uses primary verified address", func(t *testing.T) {
		t.Parallel()
		p := fakeIdentity{
			profile: map[string]any{"id": 7, "login": "quiet-dev"},
			emails: []map[string]any{
				{"email": "old@example.com", "primary": false, "verified": true},
				{"email": "unverified@example.com", "primary": false, "verified": false},
				{"email": "main@example.com", "primary": true, "verified": true},
			},
		}.attach(t, newGitHub())

		info, err := p.ExchangeCode(t.Context(), validCode)
		require.NoError(t, err)
		assert.Equal(t, "main@example.com", info.Email)
		assert.Equal(t, "quiet-dev", info.Name, "login stands in for a missing name")
	})

	t.Run("falls back to any verified address", func(t *testing.T) {
		t.Parallel()
		p := fakeIdentity{
			profile: map[string]any{"id": 8, "login": "dev"},
			emails: []map[string]any{
				{"email": "primary@example.com", "primary": true, "verified": false},
				{"email": "second@example.com", "primary": false, "verified": true},
			},
		}.attach(t, newGitHub())

		info, err := p.ExchangeCode(t.Context(), validCode)
		require.NoError(t, err)
		assert.Equal(t, "second@example.com", info.Email)
	})

	t.Run("no verified address", func(t *testing.T) {
		t.Parallel()
		p := fakeIdentity{
			profile: map[string]any{"id": 9, "login": "ghost"},
			emails:  []map[string]any{{"email": "ghost@example.com", "primary": true, "verified": false}},
		}.attach(t, newGitHub())

		_, err := p.ExchangeCode(t.Context(), validCode)
		assert.ErrorIs(t, err, auth.ErrEmailUnavailable)
	})
}

func TestExchangeCode_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fake    fakeIdentity
		code    string
		wantErr string
	}{
		{
			name:    "rejected code",
			fake:    fakeIdentity{profile: map[string]any{}},
			code:    "expired-code",
			wantErr: "invalid_grant",
		},
		{
			name:    "profile endpoint error",
			fake:    fakeIdentity{profileStatus: http.StatusInternalServerError},
			code:    validCode,
			wantErr: "returned 500",
		},
		{
			name:    "malformed profile",
			fake:    fakeIdentity{profile: `{not valid json`},
			code:    validCode,
			wantErr: "decoding",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := tt.fake.attach(t, auth.NewGoogleProvider("cid", "csec", "https://example.com/cb"))

			info, err := p.ExchangeCode(t.Context(), tt.code)
			require.Error(t, err)
			assert.Nil(t, info)
			assert.Contains(t, err.Error(), "auth.ExchangeCode")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
