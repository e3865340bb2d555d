package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bugtrail/accounts-api/internal/core/domain"
	"github.com/bugtrail/accounts-api/internal/metrics"
)

const defaultTokenTTL = 72 * time.Hour

// tokenClaims embeds the user id as the sole identity claim.
type tokenClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// JWTIssuer signs and verifies HS256 bearer tokens. The signing secret is
// injected at construction; nothing reads it from the environment ad hoc.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer builds an issuer with the given secret and token lifetime.
// A non-positive ttl falls back to 72 hours.
func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the given user id, expiring ttl from now. The user
// is not re-checked against storage; issuance only happens directly after a
// successful signup or login.
func (i *JWTIssuer) Issue(userID string) (string, error) {
	now := i.now()
	claims := tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", err
	}
	metrics.TokensIssuedTotal.Inc()
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded user id.
func (i *JWTIssuer) Verify(token string) (string, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.UserID, nil
}
