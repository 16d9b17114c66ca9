// Package auth resolves and inspects the API token used to talk to the
// control plane. Tokens are verified server-side; inspection here is only
// for early expiry warnings and doctor output.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"polship/internal/dirs"
)

// EnvToken is the environment variable consulted when no explicit token is
// given.
const EnvToken = "POLSHIP_TOKEN"

// tokenFileName is the fallback token location under the config dir.
const tokenFileName = "token"

// ErrNoToken means no token could be found in any of the known locations.
var ErrNoToken = errors.New("no API token found: pass --token, set " + EnvToken + ", or write one to the token file in the config directory")

// ResolveToken returns the API token with flag > environment > token-file
// precedence.
func ResolveToken(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if v := os.Getenv(EnvToken); v != "" {
		return v, nil
	}
	cfgDir, err := dirs.ConfigDir()
	if err != nil {
		return "", ErrNoToken
	}
	data, err := os.ReadFile(filepath.Join(cfgDir, tokenFileName))
	if err != nil {
		return "", ErrNoToken
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// TokenInfo is what an unverified parse of a JWT token reveals.
type TokenInfo struct {
	Subject   string
	ExpiresAt *time.Time
}

// Inspect parses the token without signature validation and extracts the
// claims the CLI cares about. Opaque (non-JWT) tokens return an error; the
// caller should treat that as "nothing to report", not as a bad token.
func Inspect(token string) (TokenInfo, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return TokenInfo{}, fmt.Errorf("not a JWT token: %w", err)
	}

	var info TokenInfo
	if sub, err := parsed.Claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
	}
	return info, nil
}

// Expired reports whether the token's expiry claim, if present, is in the
// past.
func (i TokenInfo) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && i.ExpiresAt.Before(now)
}
