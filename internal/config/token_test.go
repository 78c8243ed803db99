package config_test

import (
	"net/url"
	"testing"
	"time"

	"bankshot/internal/config"
)

func TestSignURLBadWebToken(t *testing.T) {
	c := config.Config{WebToken: ""}
	if _, err := c.SignURL("", time.Duration(0)); err == nil {
		t.Error("expected error on empty HMAC key")
	}
}

func TestSignURL(t *testing.T) {
	c := config.Config{WebToken: "00000000000000000000000000000000"}
	str, err := c.SignURL("https://pool.example.com/v1/import", 1*time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.CheckURL(str); err != nil {
		t.Fatal(err)
	}
}

func TestSignURLOverride(t *testing.T) {
	c := config.Config{WebToken: "00000000000000000000000000000000"}
	str, err := c.SignURL("https://pool.example.com/v1/import?t=foo&td=42", 1*time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.CheckURL(str); err != nil {
		t.Fatal(err)
	}
}

func TestSignURLExpired(t *testing.T) {
	c := config.Config{WebToken: "00000000000000000000000000000000"}
	str, err := c.SignURL("https://pool.example.com/v1/import", -1*time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.CheckURL(str); err != config.ErrTokenExpired {
		t.Fatalf("expected expired token, got %v", err)
	}
}

func TestSignURLBadToken(t *testing.T) {
	c := config.Config{WebToken: "00000000000000000000000000000000"}
	str, err := c.SignURL("https://pool.example.com/v1/import", 1*time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	u, err := url.Parse(str)
	if err != nil {
		t.Fatal(err)
	}

	q := u.Query()
	q.Set("t", "not-the-right-token")
	u.RawQuery = q.Encode()

	if err := c.CheckURL(u.String()); err == nil {
		t.Fatal("expected an invalid token error")
	}
}
