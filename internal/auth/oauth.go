package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

// ErrEmailUnavailable is returned when a provider account has no verified
// email address. Boards are owned by users keyed on email, so such accounts
// cannot sign in.
var ErrEmailUnavailable = errors.New("auth: provider account has no verified email")

// OAuthProvider holds the configuration for an OAuth2 identity provider.
// Endpoint fields may be changed after construction; the oauth2 config is
// derived from them on every call.
type OAuthProvider struct {
	Name         string
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	EmailsURL    string // lists the account's addresses when the profile hides them
	Scopes       []string
	RedirectURL  string
}

// UserInfo is the identity reported by a provider after a code exchange.
type UserInfo struct {
	ProviderID string
	Email      string
	Name       string
	AvatarURL  string
}

// NewGoogleProvider returns an OAuth2 configuration for Google.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *OAuthProvider {
	return &OAuthProvider{
		Name:         "google",
		ClientID:     clientID,
		ClientSecret: clientSecret,
		AuthURL:      google.Endpoint.AuthURL,
		TokenURL:     google.Endpoint.TokenURL,
		UserInfoURL:  "https://www.googleapis.com/oauth2/v2/userinfo",
		Scopes:       []string{"openid", "email", "profile"},
		RedirectURL:  redirectURL,
	}
}

// NewGitHubProvider returns an OAuth2 configuration for GitHub.
func NewGitHubProvider(clientID, clientSecret, redirectURL string) *OAuthProvider {
	return &OAuthProvider{
		Name:         "github",
		ClientID:     clientID,
		ClientSecret: clientSecret,
		AuthURL:      github.Endpoint.AuthURL,
		TokenURL:     github.Endpoint.TokenURL,
		UserInfoURL:  "https://api.github.com/user",
		EmailsURL:    "https://api.github.com/user/emails",
		Scopes:       []string{"read:user", "user:email"},
		RedirectURL:  redirectURL,
	}
}

func (p *OAuthProvider) config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  p.AuthURL,
			TokenURL: p.TokenURL,
		},
		Scopes:      p.Scopes,
		RedirectURL: p.RedirectURL,
	}
}

// AuthorizationURL returns the consent page URL carrying state.
func (p *OAuthProvider) AuthorizationURL(state string) string {
	return p.config().AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// ExchangeCode trades an authorization code for a token and reads the
// account's identity with it. The token is used once and never stored.
func (p *OAuthProvider) ExchangeCode(ctx context.Context, code string) (*UserInfo, error) {
	cfg := p.config()
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth.ExchangeCode: %w", err)
	}
	client := cfg.Client(ctx, token)

	var info *UserInfo
	switch p.Name {
	case "google":
		info, err = p.googleUser(ctx, client)
	case "github":
		info, err = p.gitHubUser(ctx, client)
	default:
		err = fmt.Errorf("unsupported provider %q", p.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("auth.ExchangeCode: %w", err)
	}
	return info, nil
}

type googleProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (p *OAuthProvider) googleUser(ctx context.Context, client *http.Client) (*UserInfo, error) {
	var profile googleProfile
	if err := fetchJSON(ctx, client, p.UserInfoURL, &profile); err != nil {
		return nil, err
	}
	if profile.Email == "" || !profile.VerifiedEmail {
		return nil, ErrEmailUnavailable
	}

	return &UserInfo{
		ProviderID: profile.ID,
		Email:      profile.Email,
		Name:       profile.Name,
		AvatarURL:  profile.Picture,
	}, nil
}

type gitHubProfile struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type gitHubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (p *OAuthProvider) gitHubUser(ctx context.Context, client *http.Client) (*UserInfo, error) {
	var profile gitHubProfile
	if err := fetchJSON(ctx, client, p.UserInfoURL, &profile); err != nil {
		return nil, err
	}

	// The profile email is only public when the user chose to show it.
	email := profile.Email
	if email == "" && p.EmailsURL != "" {
		var emails []gitHubEmail
		if err := fetchJSON(ctx, client, p.EmailsURL, &emails); err != nil {
			return nil, err
		}
		email = primaryEmail(emails)
	}
	if email == "" {
		return nil, ErrEmailUnavailable
	}

	name := profile.Name
	if name == "" {
		name = profile.Login
	}

	return &UserInfo{
		ProviderID: strconv.FormatInt(profile.ID, 10),
		Email:      email,
		Name:       name,
		AvatarURL:  profile.AvatarURL,
	}, nil
}

// primaryEmail picks the primary verified address, else any verified one.
func primaryEmail(emails []gitHubEmail) string {
	var fallback string
	for _, e := range emails {
		if !e.Verified {
			continue
		}
		if e.Primary {
			return e.Email
		}
		if fallback == "" {
			fallback = e.Email
		}
	}
	return fallback
}

func fetchJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}
