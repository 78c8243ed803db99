package config

import (
	"fmt"

	"golang.org/x/oauth2"
)

// MicrosoftOAuth2 returns the OAuth2 client configuration for the Microsoft
// identity platform. The User.Read scope grants access to the Graph profile
// endpoint we read the account name and email from.
func (c *Config) MicrosoftOAuth2() *oauth2.Config {
	tenant := c.MicrosoftTenant()

	return &oauth2.Config{
		ClientID:     c.MicrosoftClientID,
		ClientSecret: c.MicrosoftClientSecret,
		RedirectURL:  c.MicrosoftRedirectURL(),
		Scopes:       []string{"openid", "email", "profile", "User.Read"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/authorize", tenant),
			TokenURL: fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", tenant),
		},
	}
}

func (c *Config) MicrosoftRedirectURL() string {
	if c.DevMode {
		return "http://127.0.0.1:3001/auth/microsoft"
	}

	return "https://" + c.Domain + "/auth/microsoft"
}
