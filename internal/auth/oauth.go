package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v1/userinfo"

// GoogleUser is the portion of Google's userinfo response we care about.
// Google returns a much larger object — we only unmarshal what we need.
type GoogleUser struct {
	Email string `json:"email"` // verified account email
	Name  string `json:"name"`  // display name
}

// GoogleProvider wraps golang.org/x/oauth2 for the Google Authorization
// Code flow.
//
// The code-for-token exchange is server-to-server using the client secret;
// the provider access token never reaches the browser. The core treats this
// whole hop as an opaque collaborator: any non-success at either step (token
// exchange or userinfo fetch) is one failure.
type GoogleProvider struct {
	config *oauth2.Config
}

// NewGoogleProvider creates a GoogleProvider with the given credentials.
// redirectURL must exactly match the authorized redirect URI registered in
// the Google Cloud console.
//
// Scopes: "email" and "profile" — the verified address and display name are
// all the login flow consumes.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL returns the Google consent page URL for the given CSRF state.
// The caller stores the state in a short-lived cookie and verifies it on
// callback.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades a one-time authorization code for the caller's verified
// email and display name:
//
//  1. POST the code + client credentials to Google's token endpoint
//  2. GET the userinfo endpoint with the returned bearer token
//
// A failure at either hop, or a profile without an email, is an error — the
// service layer classifies it as an exchange failure.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*GoogleUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// oauth2.Config.Client returns an *http.Client that attaches the
	// "Authorization: Bearer <token>" header to every request.
	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get(googleUserinfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth: calling Google userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: Google userinfo returned status %d", resp.StatusCode)
	}

	var gu GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("auth: decoding Google userinfo response: %w", err)
	}

	if gu.Email == "" {
		return nil, fmt.Errorf("auth: Google returned a profile without an email")
	}

	return &gu, nil
}
