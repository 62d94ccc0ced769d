package appstore

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTTL = 20 * time.Minute
	// Tokens are refreshed before they actually expire so an in-flight
	// request never carries a token that dies mid-call.
	tokenRefreshMargin = 2 * time.Minute

	audience = "appstoreconnect-v1"
)

// TokenSource mints and caches App Store Connect API tokens. Signing an
// ES256 JWT per request is wasteful; tokens are valid for 20 minutes, so
// one cache entry per (key id, issuer id) pair covers all calls for that
// credential bundle.
type TokenSource struct {
	mu    sync.Mutex
	cache map[string]cachedToken
	now   func() time.Time
}

type cachedToken struct {
	token     string
	expiresAt time.Time
}

// NewTokenSource creates an empty token cache.
func NewTokenSource() *TokenSource {
	return &TokenSource{
		cache: make(map[string]cachedToken),
		now:   time.Now,
	}
}

// Token returns a valid signed token for the given key, minting a fresh
// one when the cached token is missing or inside the refresh margin.
func (ts *TokenSource) Token(keyID, issuerID, privateKeyPEM string) (string, error) {
	cacheKey := keyID + "|" + issuerID

	ts.mu.Lock()
	defer ts.mu.Unlock()

	if entry, ok := ts.cache[cacheKey]; ok {
		if ts.now().Before(entry.expiresAt.Add(-tokenRefreshMargin)) {
			return entry.token, nil
		}
	}

	key, err := parsePrivateKey(privateKeyPEM)
	if err != nil {
		return "", err
	}

	now := ts.now()
	expiresAt := now.Add(tokenTTL)
	claims := jwt.MapClaims{
		"iss": issuerID,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
		"aud": audience,
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	tok.Header["kid"] = keyID

	signed, err := tok.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	ts.cache[cacheKey] = cachedToken{token: signed, expiresAt: expiresAt}
	return signed, nil
}

// parsePrivateKey decodes the PKCS8-encoded P-256 key App Store Connect
// issues for API access.
func parsePrivateKey(pemData string) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, errors.New("appstore: private key is not valid PEM")
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("appstore: parsing PKCS8 key: %w", err)
	}

	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errors.New("appstore: key is not an EC private key")
	}
	return key, nil
}
