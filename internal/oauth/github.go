package oauth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2/endpoints"

	"github.com/dtroode/signdesk-server/internal/model"
)

const (
	defaultGitHubUserInfoURL = "https://api.github.com/user"
	defaultGitHubEmailsURL   = "https://api.github.com/user/emails"
)

var _ model.OAuthProvider = (*GitHub)(nil)

// GitHub signs users in with a GitHub account.
type GitHub struct {
	client    client
	emailsURL string
}

func NewGitHub(config Config) *GitHub {
	emailsURL := config.EmailsURL
	if emailsURL == "" {
		emailsURL = defaultGitHubEmailsURL
	}
	return &GitHub{
		client:    newClient(config, endpoints.GitHub, defaultGitHubUserInfoURL, "read:user", "user:email"),
		emailsURL: emailsURL,
	}
}

func (p *GitHub) Name() string {
	return ProviderGitHub
}

func (p *GitHub) LoginURL(state string) string {
	return p.client.loginURL(state)
}

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (p *GitHub) Exchange(ctx context.Context, code string) (model.OAuthUserInfo, error) {
	httpClient, err := p.client.exchange(ctx, code)
	if err != nil {
		return model.OAuthUserInfo{}, fmt.Errorf("failed to exchange token: %w", err)
	}

	var user githubUser
	if err := getJSON(ctx, httpClient, p.client.userInfoURL, &user); err != nil {
		return model.OAuthUserInfo{}, fmt.Errorf("failed to fetch user info: %w", err)
	}
	if user.ID == 0 {
		return model.OAuthUserInfo{}, fmt.Errorf("empty id in user info response")
	}

	// The profile email is empty when the user keeps it private.
	email := user.Email
	if email == "" {
		email, err = p.primaryEmail(ctx, httpClient)
		if err != nil {
			return model.OAuthUserInfo{}, err
		}
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	return model.OAuthUserInfo{
		Provider:       ProviderGitHub,
		ProviderUserID: strconv.FormatInt(user.ID, 10),
		Email:          email,
		Name:           name,
	}, nil
}

func (p *GitHub) primaryEmail(ctx context.Context, httpClient *http.Client) (string, error) {
	var emails []githubEmail
	if err := getJSON(ctx, httpClient, p.emailsURL, &emails); err != nil {
		return "", fmt.Errorf("failed to fetch user emails: %w", err)
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", fmt.Errorf("github account has no verified primary email")
}
