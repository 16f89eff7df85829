package model

import "context"

// OAuthUserInfo is the profile returned by an OAuth provider.
type OAuthUserInfo struct {
	Provider       string
	ProviderUserID string
	Email          string
	Name           string
}

// OAuthProvider runs the authorization-code flow against one provider.
type OAuthProvider interface {
	Name() string
	LoginURL(state string) string
	Exchange(ctx context.Context, code string) (OAuthUserInfo, error)
}
