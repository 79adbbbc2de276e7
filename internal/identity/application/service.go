package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rtwlabs/roastery-backend/internal/apperr"
	"github.com/rtwlabs/roastery-backend/internal/identity/domain"
)

var (
	ErrEmailTaken     = fmt.Errorf("%w: email already registered", apperr.ErrInvalid)
	ErrBadCredentials = fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	ErrBadToken       = fmt.Errorf("%w: invalid token", apperr.ErrUnauthorized)
)

type Service struct {
	log      *slog.Logger
	repo     UserRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewService(log *slog.Logger, repo UserRepository, secret []byte) *Service {
	return &Service{
		log:      log,
		repo:     repo,
		secret:   secret,
		tokenTTL: 30 * 24 * time.Hour,
	}
}

func (s *Service) Register(ctx context.Context, email, name, password string) (domain.User, string, error) {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return domain.User{}, "", ErrEmailTaken
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return domain.User{}, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, "", err
	}

	u := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		return domain.User{}, "", err
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return domain.User{}, "", err
	}
	s.log.Info("user registered", "user_id", u.ID)
	return u, token, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return domain.User{}, "", ErrBadCredentials
	}
	if err != nil {
		return domain.User{}, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return domain.User{}, "", ErrBadCredentials
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return domain.User{}, "", err
	}
	return u, token, nil
}

// Authenticate resolves a bearer token to the user it was issued for.
func (s *Service) Authenticate(ctx context.Context, token string) (domain.User, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return domain.User{}, ErrBadToken
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return domain.User{}, ErrBadToken
	}

	u, err := s.repo.FindByID(ctx, sub)
	if errors.Is(err, apperr.ErrNotFound) {
		return domain.User{}, ErrBadToken
	}
	return u, err
}

func (s *Service) Get(ctx context.Context, id string) (domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) issueToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(s.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
