package utils

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionIssuer = "lovematch"

var ErrInvalidSession = errors.New("invalid session token")

// SessionClaims bind a generated question batch to the analysis request
// that answers it.
type SessionClaims struct {
	Mode        string `json:"mode"`
	QuestionIDs []int  `json:"questionIds"`
	jwt.RegisteredClaims
}

type SessionSigner struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewSessionSigner derives the signing key from secret. An empty secret gets
// a random one, so tokens do not survive a restart.
func NewSessionSigner(secret string, ttl time.Duration) (*SessionSigner, error) {
	if secret == "" {
		random, err := GenerateSecureToken(32)
		if err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		secret = random
	}
	key, err := DeriveSigningKey(secret)
	if err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &SessionSigner{key: key, ttl: ttl, now: time.Now}, nil
}

func (s *SessionSigner) CreateToken(mode string, questionIDs []int) (string, error) {
	now := s.now()
	claims := &SessionClaims{
		Mode:        mode,
		QuestionIDs: slices.Clone(questionIDs),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

// ValidateToken checks signature, issuer and expiry. Every failure matches
// ErrInvalidSession.
func (s *SessionSigner) ValidateToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	if !token.Valid {
		return nil, ErrInvalidSession
	}
	return claims, nil
}
