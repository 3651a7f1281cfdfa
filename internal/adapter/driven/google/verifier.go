// Package google implements driven.IdentityVerifier for Google Sign-In ID
// tokens. Signing keys are fetched from Google's JWKS endpoint through an
// HTTP cache that honours the endpoint's Cache-Control max-age, so keys are
// only re-downloaded when Google rotates them.
package google

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/lovejar/internal/domain/model"
	"github.com/ericfisherdev/lovejar/internal/domain/port/driven"
)

const (
	// ProviderName is stored on federated accounts created from Google tokens.
	ProviderName = "google"

	defaultJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
)

// Google issues tokens with either form of its issuer.
var validIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// Compile-time interface satisfaction check.
var _ driven.IdentityVerifier = (*Verifier)(nil)

// Verifier validates RS256 ID tokens against Google's published keys.
type Verifier struct {
	clientID string
	jwksURL  string
	client   *http.Client
	now      func() time.Time
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithJWKSURL points the verifier at a different key set endpoint.
func WithJWKSURL(u string) Option {
	return func(v *Verifier) { v.jwksURL = u }
}

// WithHTTPClient replaces the caching HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(v *Verifier) { v.client = hc }
}

// NewVerifier creates a Verifier accepting tokens whose audience is clientID.
func NewVerifier(clientID string, opts ...Option) (*Verifier, error) {
	if clientID == "" {
		return nil, errors.New("google client ID not set")
	}

	v := &Verifier{
		clientID: clientID,
		jwksURL:  defaultJWKSURL,
		client: &http.Client{
			Transport: httpcache.NewMemoryCacheTransport(),
			Timeout:   10 * time.Second,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}

	return v, nil
}

type idTokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Verify checks the signature, expiry, audience and issuer of idToken and
// requires a verified email address.
func (v *Verifier) Verify(ctx context.Context, idToken string) (model.FederatedIdentity, error) {
	keys, err := v.fetchKeys(ctx)
	if err != nil {
		return model.FederatedIdentity{}, err
	}

	claims := &idTokenClaims{}
	_, err = jwt.ParseWithClaims(idToken, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		key, ok := keys[kid]
		if !ok {
			return nil, fmt.Errorf("unknown key id %q", kid)
		}
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return model.FederatedIdentity{}, fmt.Errorf("%w: %w", driven.ErrInvalidIdentityToken, err)
	}

	if !validIssuers[claims.Issuer] {
		return model.FederatedIdentity{}, fmt.Errorf("%w: unexpected issuer %q", driven.ErrInvalidIdentityToken, claims.Issuer)
	}
	if claims.Email == "" || !claims.EmailVerified {
		return model.FederatedIdentity{}, fmt.Errorf("%w: email not verified", driven.ErrInvalidIdentityToken)
	}

	return model.FederatedIdentity{
		Provider:      ProviderName,
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}

type jwks struct {
	Keys []struct {
		Kid string `json:"kid"`
		Kty string `json:"kty"`
		Alg string `json:"alg"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

func (v *Verifier) fetchKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating JWKS request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching JWKS: unexpected status %d", resp.StatusCode)
	}

	var set jwks
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("decoding JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" {
			continue
		}
		key, err := rsaKey(k.N, k.E)
		if err != nil {
			return nil, fmt.Errorf("JWKS key %s: %w", k.Kid, err)
		}
		keys[k.Kid] = key
	}

	return keys, nil
}

func rsaKey(n, e string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("decoding modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("decoding exponent: %w", err)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nb),
		E: int(new(big.Int).SetBytes(eb).Int64()),
	}, nil
}
