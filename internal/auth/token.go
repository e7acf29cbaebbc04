// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// DefaultTokenTTL is the access-token lifetime used when none is
// configured.
const DefaultTokenTTL = 30 * time.Minute

// DefaultTokenType is the scheme label presented to clients alongside
// issued tokens and expected in the Authorization header.
const DefaultTokenType = "Bearer"

// TokenIssuer creates and validates signed, self-contained access
// tokens. Validity is determined purely by signature and expiry at
// verification time; there is no server-side session state, so a token
// cannot be revoked before it expires.
type TokenIssuer struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

// NewTokenIssuer creates a TokenIssuer for the given server-held
// secret and signing method name (an HMAC method such as "HS256").
// ttl <= 0 selects DefaultTokenTTL.
func NewTokenIssuer(secret, methodName string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").Errorf("signing secret cannot be empty")
	}

	method := jwt.GetSigningMethod(methodName)
	if method == nil {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").
			With("method", methodName).
			Errorf("unknown signing method %q", methodName)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").
			With("method", methodName).
			Errorf("signing method %q is not an HMAC method", methodName)
	}

	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &TokenIssuer{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
	}, nil
}

// TTL returns the configured token lifetime.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue signs the given claims with the configured lifetime.
func (t *TokenIssuer) Issue(claims map[string]any) (string, error) {
	return t.IssueWithTTL(claims, t.ttl)
}

// IssueWithTTL embeds all given claims plus a computed expiry claim and
// signs the result with the server-held secret.
func (t *TokenIssuer) IssueWithTTL(claims map[string]any, ttl time.Duration) (string, error) {
	mapClaims := jwt.MapClaims{}
	for k, v := range claims {
		mapClaims[k] = v
	}
	mapClaims["exp"] = jwt.NewNumericDate(time.Now().Add(ttl))

	signed, err := jwt.NewWithClaims(t.method, mapClaims).SignedString(t.secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded claims
// unchanged. Failure codes: TOKEN_INVALID_SIGNATURE when the signature
// does not match, TOKEN_EXPIRED when past the expiry claim, and
// TOKEN_MALFORMED when the token cannot be decoded at all.
func (t *TokenIssuer) Verify(tokenString string) (map[string]any, error) {
	if tokenString == "" {
		return nil, oops.Code("TOKEN_MALFORMED").Errorf("token string is empty")
	}

	token, err := jwt.Parse(tokenString,
		func(_ *jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{t.method.Alg()}),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, oops.Code("TOKEN_EXPIRED").Wrapf(err, "token has expired")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, oops.Code("TOKEN_INVALID_SIGNATURE").Wrapf(err, "token signature mismatch")
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, oops.Code("TOKEN_MALFORMED").Wrapf(err, "token cannot be decoded")
		default:
			return nil, oops.Code("TOKEN_MALFORMED").Wrap(err)
		}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, oops.Code("TOKEN_MALFORMED").Errorf("unexpected claims type")
	}

	return claims, nil
}
