package dropbox

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

const tokenURL = "https://api.dropboxapi.com/oauth2/token"

// AuthError is the kind returned when the token exchange does not produce a
// usable access token. It is unconditionally fatal - there is no cached
// token to fall back to and no alternative authentication path.
type AuthError struct {
	err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("credential refresh failed (%v)", e.err)
}

func (e *AuthError) Unwrap() error {
	return e.err
}

// Refresh exchanges the long-lived refresh token for a short-lived access
// token scoped to the current run. The token is never persisted and must
// never appear in log or error output.
func Refresh(ctx context.Context, appKey, appSecret, refreshToken string) (string, error) {
	return refresh(ctx, tokenURL, appKey, appSecret, refreshToken)
}

func refresh(ctx context.Context, endpoint, appKey, appSecret, refreshToken string) (string, error) {
	conf := oauth2.Config{
		ClientID:     appKey,
		ClientSecret: appSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: endpoint,
		},
	}

	token, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return "", &AuthError{err: err}
	}

	if token.AccessToken == "" {
		return "", &AuthError{err: fmt.Errorf("token response has no access token")}
	}

	return token.AccessToken, nil
}
