// Package auth verifies bearer tokens and turns them into tenant principals.
//
// Tokens are JWS signed with HS256. The "kid" header selects the verification key
// from a Keyring; the tenant is carried in the "aquafarm/tenantId" claim.
package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

var (
	ErrNoKeyFound   = errors.New("no key found")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims of an AquaFarm access token.
type Claims struct {
	jwt.RegisteredClaims

	TenantId string `json:"aquafarm/tenantId,omitempty"`
}

// Principal converts verified claims into a tenant principal.
//
// A malformed tenant claim makes the token invalid as a whole.
func (c *Claims) Principal() (tenant.Principal, error) {
	p := tenant.Principal{Subject: c.Subject}
	if c.TenantId == "" {
		return p, nil
	}
	id, err := tenant.Parse(c.TenantId)
	if err != nil {
		return tenant.Principal{}, errors.Join(ErrInvalidToken, err)
	}
	p.Tenant = id
	return p, nil
}

// Key is a HS256 shared secret.
type Key struct {
	Secret []byte

	// NotAfter is the last moment the key verifies tokens. Zero means "never expires".
	NotAfter time.Time
}

func (k Key) usableAt(t time.Time) bool {
	return k.NotAfter.IsZero() || t.Before(k.NotAfter)
}

// Keyring holds verification keys by key id.
type Keyring struct {
	keys map[string]Key
	now  func() time.Time
}

func NewKeyring(keys map[string]Key) *Keyring {
	kr := &Keyring{keys: map[string]Key{}, now: time.Now}
	for kid, k := range keys {
		kr.keys[kid] = k
	}
	return kr
}

// Get returns the key for kid, if it is present and not expired.
func (kr *Keyring) Get(kid string) (Key, bool) {
	k, ok := kr.keys[kid]
	if !ok || !k.usableAt(kr.now()) {
		return Key{}, false
	}
	return k, true
}

// Sign issues a JWS for claims with the key kid.
//
// # Returns
//
// - string: compact JWS
//
// - error: ErrNoKeyFound, or errors from [jwt.Token.SignedString]
func (kr *Keyring) Sign(kid string, claims *Claims) (string, error) {
	k, ok := kr.Get(kid)
	if !ok {
		return "", fmt.Errorf("%w: kid=%s", ErrNoKeyFound, kid)
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tok.Header["kid"] = kid
	return tok.SignedString(k.Secret)
}

// Verify parses token and checks its signature and validity period.
//
// # Returns
//
// - *Claims: verified claims
//
// - error: ErrInvalidToken (joined with the cause) when the token is not acceptable,
// ErrNoKeyFound when no usable key is for the token.
func (kr *Keyring) Verify(token string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(
		token, claims,
		func(t *jwt.Token) (interface{}, error) {
			kid, _ := t.Header["kid"].(string)
			k, ok := kr.Get(kid)
			if !ok {
				return nil, fmt.Errorf("%w: kid=%q", ErrNoKeyFound, kid)
			}
			return k.Secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(kr.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoKeyFound):
			return nil, errors.Join(ErrInvalidToken, err)
		case errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrSignatureInvalid),
			errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenExpired),
			errors.Is(err, jwt.ErrTokenNotValidYet),
			errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, errors.Join(ErrInvalidToken, err)
		}
		return nil, err
	}
	return claims, nil
}
