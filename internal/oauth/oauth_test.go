package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// newProviderServer serves token, user and emails endpoints for one provider.
func newProviderServer(t *testing.T, user any, emails any) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			writeJSON(w, map[string]string{"error": "invalid_grant"})
			return
		}
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "http://localhost:8080/auth/callback", r.PostForm.Get("redirect_uri"))

		// Credentials arrive either as basic auth or as form fields.
		id, secret, ok := r.BasicAuth()
		if !ok {
			id, secret = r.PostForm.Get("client_id"), r.PostForm.Get("client_secret")
		}
		assert.Equal(t, "client-id", id)
		assert.Equal(t, "client-secret", secret)
		writeJSON(w, map[string]string{"access_token": "access-token", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, user)
	})
	mux.HandleFunc("/emails", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, emails)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(srv *httptest.Server) Config {
	return Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		TokenURL:     srv.URL + "/token",
		UserInfoURL:  srv.URL + "/user",
		EmailsURL:    srv.URL + "/emails",
		HTTPClient:   srv.Client(),
	}
}

func TestGoogle_LoginURL(t *testing.T) {
	p := NewGoogle(Config{ClientID: "client-id", RedirectURL: "http://localhost:8080/auth/google/callback"})

	u, err := url.Parse(p.LoginURL("state-value"))
	require.NoError(t, err)

	assert.Equal(t, "accounts.google.com", u.Host)
	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "http://localhost:8080/auth/google/callback", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "state-value", q.Get("state"))
	assert.Contains(t, q.Get("scope"), "email")
	assert.Equal(t, ProviderGoogle, p.Name())
}

func TestLoginURL_EndpointOverride(t *testing.T) {
	p := NewGitHub(Config{ClientID: "client-id", AuthURL: "http://127.0.0.1:9999/authorize"})

	u, err := url.Parse(p.LoginURL("s"))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", u.Host)
	assert.Equal(t, "/authorize", u.Path)
	assert.Equal(t, "code", u.Query().Get("response_type"))
}

func TestGoogle_Exchange(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		user    map[string]any
		wantErr string
	}{
		{
			name: "success",
			code: "good-code",
			user: map[string]any{"sub": "g-123", "email": "alice@gmail.com", "email_verified": true, "name": "Alice"},
		},
		{
			name:    "bad code",
			code:    "bad-code",
			user:    map[string]any{},
			wantErr: "failed to exchange token",
		},
		{
			name:    "missing sub",
			code:    "good-code",
			user:    map[string]any{"email": "alice@gmail.com", "email_verified": true},
			wantErr: "empty sub",
		},
		{
			name:    "unverified email",
			code:    "good-code",
			user:    map[string]any{"sub": "g-123", "email": "alice@gmail.com", "email_verified": false},
			wantErr: "no verified email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newProviderServer(t, tt.user, nil)
			p := NewGoogle(testConfig(srv))

			info, err := p.Exchange(context.Background(), tt.code)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ProviderGoogle, info.Provider)
			assert.Equal(t, "g-123", info.ProviderUserID)
			assert.Equal(t, "alice@gmail.com", info.Email)
			assert.Equal(t, "Alice", info.Name)
		})
	}
}

func TestGitHub_LoginURL(t *testing.T) {
	p := NewGitHub(Config{ClientID: "client-id"})

	u, err := url.Parse(p.LoginURL("s"))
	require.NoError(t, err)
	assert.Equal(t, "github.com", u.Host)
	assert.Equal(t, "s", u.Query().Get("state"))
	assert.Contains(t, u.Query().Get("scope"), "user:email")
	assert.Equal(t, ProviderGitHub, p.Name())
}

func TestGitHub_Exchange(t *testing.T) {
	tests := []struct {
		name      string
		user      map[string]any
		emails    []map[string]any
		wantEmail string
		wantName  string
		wantErr   string
	}{
		{
			name:      "public email",
			user:      map[string]any{"id": 42, "login": "alice", "name": "Alice", "email": "alice@example.com"},
			wantEmail: "alice@example.com",
			wantName:  "Alice",
		},
		{
			name: "private email falls back to primary verified",
			user: map[string]any{"id": 42, "login": "alice"},
			emails: []map[string]any{
				{"email": "old@example.com", "primary": false, "verified": true},
				{"email": "alice@example.com", "primary": true, "verified": true},
			},
			wantEmail: "alice@example.com",
			wantName:  "alice",
		},
		{
			name:    "no verified primary email",
			user:    map[string]any{"id": 42, "login": "alice"},
			emails:  []map[string]any{{"email": "alice@example.com", "primary": true, "verified": false}},
			wantErr: "no verified primary email",
		},
		{
			name:    "missing id",
			user:    map[string]any{"login": "alice"},
			wantErr: "empty id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newProviderServer(t, tt.user, tt.emails)
			p := NewGitHub(testConfig(srv))

			info, err := p.Exchange(context.Background(), "good-code")
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ProviderGitHub, info.Provider)
			assert.Equal(t, "42", info.ProviderUserID)
			assert.Equal(t, tt.wantEmail, info.Email)
			assert.Equal(t, tt.wantName, info.Name)
		})
	}
}
