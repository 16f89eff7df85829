package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/endpoints"

	"github.com/dtroode/signdesk-server/internal/model"
)

const defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

var _ model.OAuthProvider = (*Google)(nil)

// Google signs users in with a Google account.
type Google struct {
	client client
}

func NewGoogle(config Config) *Google {
	return &Google{
		client: newClient(config, endpoints.Google, defaultGoogleUserInfoURL, "openid", "email", "profile"),
	}
}

func (p *Google) Name() string {
	return ProviderGoogle
}

func (p *Google) LoginURL(state string) string {
	return p.client.loginURL(state)
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

func (p *Google) Exchange(ctx context.Context, code string) (model.OAuthUserInfo, error) {
	httpClient, err := p.client.exchange(ctx, code)
	if err != nil {
		return model.OAuthUserInfo{}, fmt.Errorf("failed to exchange token: %w", err)
	}

	var info googleUserInfo
	if err := getJSON(ctx, httpClient, p.client.userInfoURL, &info); err != nil {
		return model.OAuthUserInfo{}, fmt.Errorf("failed to fetch user info: %w", err)
	}
	if info.Sub == "" {
		return model.OAuthUserInfo{}, fmt.Errorf("empty sub in user info response")
	}
	if info.Email == "" || !info.EmailVerified {
		return model.OAuthUserInfo{}, fmt.Errorf("google account has no verified email")
	}

	return model.OAuthUserInfo{
		Provider:       ProviderGoogle,
		ProviderUserID: info.Sub,
		Email:          info.Email,
		Name:           info.Name,
	}, nil
}
