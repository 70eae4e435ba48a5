// Package token issues and verifies the two credential types used by
// EduSeek: signed JWT access tokens and opaque random refresh tokens.
// The package performs no persistence -- session storage belongs to the
// auth plugin. Only the SHA-256 hash of a refresh token is ever stored;
// the raw value is returned exactly once to the caller.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// refreshTokenBytes is the entropy of an opaque refresh token.
// 32 bytes = 256 bits, base64url-encoded to 43 characters.
const refreshTokenBytes = 32

// Claims is the access-token claim bundle. Subject carries the user ID;
// handlers must derive the acting user from it and never from request
// parameters.
type Claims struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies access tokens with a symmetric key.
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// NewIssuer creates a token issuer. An empty secret is a configuration
// error surfaced at startup, not per request.
func NewIssuer(secret, issuer, audience string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("token: signing secret is not configured")
	}
	return &Issuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}, nil
}

// Subject describes the user a token is issued for.
type Subject struct {
	ID         string
	Email      string
	GivenName  string
	FamilyName string
	Role       string
}

// IssueAccessToken signs a new HS256 access token for the given subject
// with expiry = now + configured TTL.
func (i *Issuer) IssueAccessToken(sub Subject) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Email:      sub.Email,
		GivenName:  sub.GivenName,
		FamilyName: sub.FamilyName,
		Role:       sub.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.ID,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// Parse fully validates an access token: signature, issuer, audience,
// and expiry. Used by the bearer middleware on protected routes.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, i.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
	)
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// ParseIgnoringExpiry validates signature, issuer, and audience but NOT
// expiry. Its only purpose is recovering the subject from an expired-but-
// authentic access token during a refresh. Returns (nil, false) on any
// structural or signature failure -- it never propagates an error.
func (i *Issuer) ParseIgnoringExpiry(raw string) (*Claims, bool) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, i.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !tok.Valid {
		return nil, false
	}

	// Claims validation was skipped above, so check issuer and audience
	// by hand. Expiry is deliberately not checked.
	if iss, err := claims.GetIssuer(); err != nil || iss != i.issuer {
		return nil, false
	}
	aud, err := claims.GetAudience()
	if err != nil {
		return nil, false
	}
	for _, a := range aud {
		if a == i.audience {
			return claims, true
		}
	}
	return nil, false
}

// keyFunc returns the HMAC secret for signature verification.
func (i *Issuer) keyFunc(t *jwt.Token) (any, error) {
	return i.secret, nil
}

// NewRefreshToken generates a cryptographically random opaque token.
// The caller persists only its hash (see HashToken).
func NewRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken returns the base64url-encoded SHA-256 of a raw token. This is
// the only form a refresh token is ever stored or looked up in.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
