// Package discord wraps the Discord OAuth2 flow and the webhook used to
// relay topup slips to the review channel.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bonchon-studio/statusrental/internal/config"
	"golang.org/x/oauth2"
)

// userMeURL is the Discord endpoint returning the authenticated profile.
const userMeURL = "https://discord.com/api/users/@me"

// Endpoint is Discord's OAuth2 endpoint pair.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/api/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

// Profile is the subset of the Discord identity consumed as the User
// upsert key and display fields.
type Profile struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	GlobalName    string `json:"global_name"`
	Avatar        string `json:"avatar"`
	Email         string `json:"email"`
}

// OAuthClient drives the authorization-code flow against Discord.
type OAuthClient struct {
	oauth  *oauth2.Config
	client *http.Client
}

// NewOAuthClient constructs an OAuthClient from the application config.
// Returns nil when the OAuth application is not configured; callers treat a
// nil client as "login unavailable".
func NewOAuthClient(cfg config.DiscordConfig) *OAuthClient {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil
	}
	return &OAuthClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"identify", "email"},
			Endpoint:     Endpoint,
		},
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthCodeURL returns the Discord consent page URL for the given state.
func (c *OAuthClient) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for an access token and fetches
// the user's profile with it.
func (c *OAuthClient) Exchange(ctx context.Context, code string) (*Profile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)
	token, errExchange := c.oauth.Exchange(ctx, code)
	if errExchange != nil {
		return nil, fmt.Errorf("discord: exchange code: %w", errExchange)
	}
	return c.fetchProfile(ctx, token)
}

// fetchProfile loads the authenticated user's identity.
func (c *OAuthClient) fetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	req, errReq := http.NewRequestWithContext(ctx, http.MethodGet, userMeURL, nil)
	if errReq != nil {
		return nil, errReq
	}
	token.SetAuthHeader(req)

	resp, errDo := c.client.Do(req)
	if errDo != nil {
		return nil, fmt.Errorf("discord: fetch profile: %w", errDo)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("discord: fetch profile: status %d: %s", resp.StatusCode, string(body))
	}

	var profile Profile
	if errDecode := json.NewDecoder(resp.Body).Decode(&profile); errDecode != nil {
		return nil, fmt.Errorf("discord: decode profile: %w", errDecode)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("discord: profile missing id")
	}
	if profile.GlobalName == "" {
		profile.GlobalName = profile.Username
	}
	if profile.Discriminator == "" {
		profile.Discriminator = "0"
	}
	return &profile, nil
}
