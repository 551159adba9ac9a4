package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/shashiranjanraj/storefront/config"
)

// ErrInvalidToken is returned for any token that fails parsing or
// verification.
var ErrInvalidToken = errors.New("auth: invalid token")

// Identity is the subject embedded in every token.
type Identity struct {
	ID string `json:"id"`
}

// Claims holds the typed JWT payload: {"user":{"id":"..."},"iat":...}.
type Claims struct {
	User Identity `json:"user"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens returns a signer. A zero ttl issues tokens without an expiry.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

// FromConfig builds a signer from JWT_SECRET and TOKEN_TTL.
func FromConfig() *Tokens {
	return NewTokens(config.JWTSecret(), config.TokenTTL())
}

// Generate creates a signed token for userID.
func (t *Tokens) Generate(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		User: Identity{ID: userID},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Validate parses a token string and returns the identity it carries.
func (t *Tokens) Validate(raw string) (Identity, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.User.ID == "" {
		return Identity{}, ErrInvalidToken
	}

	return claims.User, nil
}

// HashPassword returns a bcrypt hash of the plain-text password.
func HashPassword(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a bcrypt hash against the plain-text candidate.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
