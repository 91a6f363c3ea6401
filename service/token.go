package service

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionValidity is the fixed lifetime of an issued session token
const SessionValidity = 7 * 24 * time.Hour

const issuer = "sipscore"

var (
	ErrInvalidToken = errors.New("token: invalid token")
	ErrExpiredToken = errors.New("token: token has expired")
)

// TokenService signs and verifies the session tokens carried on every
// protected call; the payload is just the user id in the subject claim
type TokenService struct {
	secret   []byte
	validity time.Duration
	parser   *jwt.Parser
}

// NewTokenService reads the signing secret from SIPSCORE_JWT_SECRET; the
// parser only accepts HS256 and requires an expiry, so a token can never
// outlive its validity window
func NewTokenService() *TokenService {
	secret := os.Getenv("SIPSCORE_JWT_SECRET")
	if secret == "" {
		secret = "default-session-secret-change-in-production"
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuer),
	)
	return &TokenService{
		secret:   []byte(secret),
		validity: SessionValidity,
		parser:   parser,
	}
}

// Issue creates a signed session token bound to the given user
func (s *TokenService) Issue(userID primitive.ObjectID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.Hex(),
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "signing session token failed")
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the user id the token was issued for
func (s *TokenService) Verify(tokenString string) (primitive.ObjectID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return primitive.NilObjectID, ErrExpiredToken
		}
		return primitive.NilObjectID, ErrInvalidToken
	}
	if !token.Valid {
		return primitive.NilObjectID, ErrInvalidToken
	}
	userID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidToken
	}
	return userID, nil
}
