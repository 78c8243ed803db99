package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"bankshot/internal/rating"
)

type Config struct {
	// Domain is the public hostname of the app, used for cookies. Leave
	// empty in development where host:port cookies are problematic.
	Domain  string
	DevMode bool

	// Microsoft OAuth2 application credentials. TenantID defaults to
	// "common" which accepts both personal and work accounts.
	MicrosoftClientID     string
	MicrosoftClientSecret string
	MicrosoftTenantID     string

	// CookieHashKey and CookieBlockKey authenticate and encrypt session
	// cookies, 32 bytes each.
	CookieHashKey  string
	CookieBlockKey string

	// WebToken signs administrative URLs (legacy data import).
	WebToken string

	// KFactor overrides the Elo learning rate, 0 means the default.
	KFactor float64
}

// EloKFactor returns the configured Elo learning rate or the engine default.
func (c *Config) EloKFactor() float64 {
	if c.KFactor > 0 {
		return c.KFactor
	}

	return rating.DefaultKFactor
}

func (c *Config) MicrosoftTenant() string {
	if c.MicrosoftTenantID == "" {
		return "common"
	}

	return c.MicrosoftTenantID
}

func NewFromUserConfigDir() (*Config, error) {
	c := &Config{}
	if err := c.ReloadFromUserConfigDir(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) expandFromEnv() {
	vars := []struct {
		src string
		dst *string
	}{
		{"BANKSHOT_MICROSOFT_CLIENT_ID", &c.MicrosoftClientID},
		{"BANKSHOT_MICROSOFT_CLIENT_SECRET", &c.MicrosoftClientSecret},
		{"BANKSHOT_MICROSOFT_TENANT_ID", &c.MicrosoftTenantID},
		{"BANKSHOT_COOKIE_HASH_KEY", &c.CookieHashKey},
		{"BANKSHOT_COOKIE_BLOCK_KEY", &c.CookieBlockKey},
		{"BANKSHOT_WEB_TOKEN", &c.WebToken},
	}

	for _, v := range vars {
		if str := os.Getenv(v.src); str != "" {
			*v.dst = str
		}
	}
}

func (c *Config) ReloadFromUserConfigDir() error {
	defer c.expandFromEnv()

	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}
	log.Printf("debug: reading conf from %s", path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		*c = Config{}
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(c)
}

func getOrCreateUserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(configDir, "bankshot")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.json"), nil
}

func (c *Config) Write() error {
	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}
	log.Printf("debug: writing conf to %s", path)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o700)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(f).Encode(c); err != nil {
		if err2 := f.Close(); err2 != nil {
			return fmt.Errorf("unable to close file (%s) after error: %w", err2, err)
		}

		return err
	}

	return f.Close()
}
