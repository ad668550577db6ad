// Package generates produces and verifies the signed access tokens issued by
// the token endpoint.
package generates

import (
	"crypto/rsa"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nexauth/nexauth/errors"
	"github.com/nexauth/nexauth/models"
)

// OAuthClaims is the access-token claim set. Iat and Exp are epoch
// milliseconds, matching what resource servers consuming these tokens expect.
type OAuthClaims struct {
	Iss      string   `json:"iss"`
	Sub      string   `json:"sub"`
	Aud      string   `json:"aud"`
	Iat      int64    `json:"iat"`
	Exp      int64    `json:"exp"`
	Jti      string   `json:"jti"`
	ClientID string   `json:"client_id"`
	Scope    []string `json:"scope"`
}

// ExpiredAt reports whether the token's validity window has passed at the
// given instant. Verify does not call this; expiry is the caller's check.
func (c *OAuthClaims) ExpiredAt(now time.Time) bool {
	return c.Exp < now.UnixMilli()
}

// jwt.Claims implementation. Exp/Iat are millisecond values, so these
// accessors convert; they are unused during verification because the parser
// runs without claims validation.

func (c *OAuthClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.UnixMilli(c.Exp)), nil
}

func (c *OAuthClaims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.UnixMilli(c.Iat)), nil
}

func (c *OAuthClaims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (c *OAuthClaims) GetIssuer() (string, error)              { return c.Iss, nil }
func (c *OAuthClaims) GetSubject() (string, error)             { return c.Sub, nil }
func (c *OAuthClaims) GetAudience() (jwt.ClaimStrings, error) {
	return jwt.ClaimStrings{c.Aud}, nil
}

// JWTAccess signs and verifies access tokens with an RSA key pair.
type JWTAccess struct {
	KeyID      string
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	method     jwt.SigningMethod
	parser     *jwt.Parser
}

// NewJWTAccess builds a signer/verifier from PEM-encoded RSA key material.
func NewJWTAccess(kid string, privatePEM, publicPEM []byte) (*JWTAccess, error) {
	priv, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, err
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, err
	}
	return &JWTAccess{
		KeyID:      kid,
		privateKey: priv,
		publicKey:  pub,
		method:     jwt.SigningMethodRS256,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// NewClaims assembles the claim set for a fresh access token bound to an app
// and principal.
func NewClaims(issuer string, app *models.ClientApp, userID string, ttl time.Duration) *OAuthClaims {
	now := time.Now()
	return &OAuthClaims{
		Iss:      issuer,
		Sub:      userID,
		Aud:      app.URL,
		Iat:      now.UnixMilli(),
		Exp:      now.Add(ttl).UnixMilli(),
		Jti:      uuid.NewString(),
		ClientID: app.ClientID,
		Scope:    app.Scopes.Strings(),
	}
}

// Sign produces a compact RS256 token for the claims.
func (a *JWTAccess) Sign(claims *OAuthClaims) (string, error) {
	token := jwt.NewWithClaims(a.method, claims)
	if a.KeyID != "" {
		token.Header["kid"] = a.KeyID
	}
	return token.SignedString(a.privateKey)
}

// Verify checks the token's structure, algorithm and signature and returns
// the claims. It does NOT enforce expiry; callers must check ExpiredAt
// explicitly after verification.
func (a *JWTAccess) Verify(tokenString string) (*OAuthClaims, error) {
	claims := &OAuthClaims{}
	token, err := a.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return a.publicKey, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.ErrInvalidAccessToken
	}
	return claims, nil
}

// PublicKey exposes the verification key for JWKS serving.
func (a *JWTAccess) PublicKey() *rsa.PublicKey { return a.publicKey }
