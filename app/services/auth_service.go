package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Messages are returned to clients verbatim.
var (
	ErrEmailTaken      = errors.New("Existing user found with same email address")
	ErrWrongEmail      = errors.New("wrong Email")
	ErrWrongPassword   = errors.New("wrong Password")
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
)

// UserStore is the persistence signup and login need.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Generate(userID string) (string, error)
}

type AuthService struct {
	users  UserStore
	tokens TokenIssuer
	now    func() time.Time
}

func NewAuthService(users UserStore, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens, now: time.Now}
}

// Signup registers a user with an empty cart and returns a session token.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (string, error) {
	email = normalizeEmail(email)

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return "", err
	}

	hash, err := auth.HashPassword(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", err
	}

	u := &models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		CartData: models.Cart{},
		Date:     s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.users.Create(ctx, u); err != nil {
		// A concurrent signup can win between the lookup and the insert.
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return "", ErrEmailTaken
		}
		return "", err
	}

	logger.WithCtx(ctx).Info("user registered", "user_id", u.ID.Hex())
	return s.tokens.Generate(u.ID.Hex())
}

// Login checks the credentials and returns a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repositories.ErrUserNotFound) {
		return "", ErrWrongEmail
	}
	if err != nil {
		return "", err
	}

	if !s.passwordMatches(ctx, u, password) {
		return "", ErrWrongPassword
	}
	return s.tokens.Generate(u.ID.Hex())
}

// passwordMatches accepts bcrypt hashes and, for accounts stored before
// hashing was introduced, plain text. A matching plain-text password is
// rehashed in place.
func (s *AuthService) passwordMatches(ctx context.Context, u *models.User, password string) bool {
	if isBcryptHash(u.Password) {
		return auth.CheckPassword(u.Password, password)
	}

	if subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
		return false
	}

	hash, err := auth.HashPassword(password)
	if err == nil {
		err = s.users.UpdatePassword(ctx, u.ID, hash)
	}
	if err != nil {
		logger.WithCtx(ctx).Warn("password upgrade failed", "user_id", u.ID.Hex(), "error", err)
	}
	return true
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
