package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testTokenService(secret string, validity time.Duration) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		validity: validity,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuer(issuer),
		),
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService()
	userID := primitive.NewObjectID()

	signed, err := tokens.Issue(userID)
	assert.NoError(t, err, "issuing session token failed")
	assert.NotEmpty(t, signed, "issued token is empty")

	verifiedID, err := tokens.Verify(signed)
	assert.NoError(t, err, "verifying freshly issued token failed")
	assert.Equal(t, userID, verifiedID, "token did not round-trip the user id")
}

func TestTokenExpiry(t *testing.T) {
	tokens := testTokenService("test-secret", -time.Minute) // already expired at issue time
	signed, err := tokens.Issue(primitive.NewObjectID())
	assert.NoError(t, err, "issuing expired token failed")

	_, err = tokens.Verify(signed)
	assert.Equal(t, ErrExpiredToken, err, "expired token must be rejected as expired")
}

func TestTokenInvalid(t *testing.T) {
	tokens := testTokenService("test-secret", time.Hour)
	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage token", token: "not-a-token"},
		{name: "empty token", token: ""},
	}
	for _, tc := range tests {
		_, err := tokens.Verify(tc.token)
		assert.Equal(t, ErrInvalidToken, err, "%s failed", tc.name)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuing := testTokenService("secret-one", time.Hour)
	verifying := testTokenService("secret-two", time.Hour)

	signed, err := issuing.Issue(primitive.NewObjectID())
	assert.NoError(t, err, "issuing token failed")

	_, err = verifying.Verify(signed)
	assert.Equal(t, ErrInvalidToken, err, "token signed with a different secret must be rejected")
}

func TestTokenBadSubject(t *testing.T) {
	tokens := testTokenService("test-secret", time.Hour)
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "not-an-object-id",
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	assert.NoError(t, err, "signing test token failed")

	_, err = tokens.Verify(signed)
	assert.Equal(t, ErrInvalidToken, err, "token with a malformed subject must be rejected")
}
