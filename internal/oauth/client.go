// Package oauth implements the authorization-code flow for the supported
// identity providers.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

const (
	requestTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Config contains client credentials of one provider. The URL fields
// override provider endpoints and are left empty outside of tests.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	AuthURL     string
	TokenURL    string
	UserInfoURL string
	EmailsURL   string

	HTTPClient *http.Client
}

// client holds the oauth2 configuration shared by the providers.
type client struct {
	oauth       *oauth2.Config
	httpClient  *http.Client
	userInfoURL string
}

func newClient(cfg Config, endpoint oauth2.Endpoint, userInfoURL string, scopes ...string) client {
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	if cfg.UserInfoURL != "" {
		userInfoURL = cfg.UserInfoURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	return client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       scopes,
		},
		httpClient:  httpClient,
		userInfoURL: userInfoURL,
	}
}

func (c client) loginURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// withHTTPClient carries the configured HTTP client into oauth2 calls.
func (c client) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// exchange trades an authorization code for a client that signs provider
// API requests with the resulting access token.
func (c client) exchange(ctx context.Context, code string) (*http.Client, error) {
	ctx = c.withHTTPClient(ctx)
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	return c.oauth.Client(ctx, token), nil
}

// getJSON fetches a provider API resource with an authorized client.
func getJSON(ctx context.Context, client *http.Client, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
