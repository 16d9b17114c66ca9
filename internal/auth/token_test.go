package auth

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestResolveTokenPrecedence(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("token-file fallback test relies on XDG_CONFIG_HOME")
	}

	cfgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	appDir := filepath.Join(cfgHome, "polship")
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(appDir, "token"), []byte("file-token\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvToken, "env-token")

	if got, err := ResolveToken("flag-token"); err != nil || got != "flag-token" {
		t.Errorf("explicit: got %q, %v; want flag-token", got, err)
	}
	if got, err := ResolveToken(""); err != nil || got != "env-token" {
		t.Errorf("env: got %q, %v; want env-token", got, err)
	}

	t.Setenv(EnvToken, "")
	if got, err := ResolveToken(""); err != nil || got != "file-token" {
		t.Errorf("file: got %q, %v; want file-token (trimmed)", got, err)
	}
}

func TestResolveTokenMissing(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("token-file fallback test relies on XDG_CONFIG_HOME")
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvToken, "")

	if _, err := ResolveToken(""); !errors.Is(err, ErrNoToken) {
		t.Errorf("err = %v, want ErrNoToken", err)
	}
}

func TestInspect(t *testing.T) {
	exp := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "deploy-bot@example.com",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("irrelevant"))
	if err != nil {
		t.Fatal(err)
	}

	info, err := Inspect(signed)
	if err != nil {
		t.Fatalf("Inspect error: %v", err)
	}
	if info.Subject != "deploy-bot@example.com" {
		t.Errorf("subject = %q", info.Subject)
	}
	if info.ExpiresAt == nil || !info.ExpiresAt.Equal(exp) {
		t.Errorf("expiresAt = %v, want %v", info.ExpiresAt, exp)
	}

	if info.Expired(exp.Add(-time.Hour)) {
		t.Error("Expired = true before expiry")
	}
	if !info.Expired(exp.Add(time.Hour)) {
		t.Error("Expired = false after expiry")
	}
}

func TestInspectOpaqueToken(t *testing.T) {
	if _, err := Inspect("opaque-service-token"); err == nil {
		t.Error("expected error for non-JWT token")
	}
}

func TestExpiredWithoutClaim(t *testing.T) {
	info := TokenInfo{Subject: "someone"}
	if info.Expired(time.Now()) {
		t.Error("token without exp claim reported as expired")
	}
}
