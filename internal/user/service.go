package user

import (
	"context"
	"errors"

	"techdeputies/internal/apperr"
	"techdeputies/internal/auth"
	"techdeputies/internal/logger"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, string, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, string, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)
}

type service struct {
	repo      Repository
	jwtSecret string
}

func NewService(repo Repository, jwtSecret string) Service {
	return &service{
		repo:      repo,
		jwtSecret: jwtSecret,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", "", apperr.Internal("failed to check email", err)
	}
	if exists {
		return nil, "", "", apperr.Conflict("email already registered", ErrEmailExists)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", "", apperr.Internal("failed to hash password", err)
	}

	user, err := s.repo.Create(ctx, req.Name, req.Email, passwordHash, auth.RoleCustomer)
	if errors.Is(err, ErrEmailExists) {
		return nil, "", "", apperr.Conflict("email already registered", err)
	}
	if err != nil {
		return nil, "", "", apperr.Internal("failed to create user", err)
	}

	accessToken, refreshToken, err := s.tokens(user)
	if err != nil {
		return nil, "", "", err
	}

	logger.Info("user registered", "user_id", user.ID)
	return user, accessToken, refreshToken, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, "", "", apperr.Unauthorized("invalid email or password", ErrInvalidCredentials)
	}
	if err != nil {
		return nil, "", "", apperr.Internal("failed to load user", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, "", "", apperr.Unauthorized("invalid email or password", ErrInvalidCredentials)
	}

	accessToken, refreshToken, err := s.tokens(user)
	if err != nil {
		return nil, "", "", err
	}
	return user, accessToken, refreshToken, nil
}

func (s *service) tokens(user *User) (string, string, error) {
	accessToken, refreshToken, err := auth.GenerateTokens(user.ID, user.Email, user.Role, s.jwtSecret, s.jwtSecret)
	if err != nil {
		return "", "", apperr.Internal("failed to generate tokens", err)
	}
	return accessToken, refreshToken, nil
}

func (s *service) GetByID(ctx context.Context, userID int) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, apperr.NotFound("user not found", err)
	}
	if err != nil {
		return nil, apperr.Internal("failed to load user", err)
	}
	return user, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	_, claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret, s.jwtSecret)
	if err != nil {
		return "", nil, apperr.Unauthorized("invalid or expired refresh token", err)
	}

	// Reissue from the stored row so role changes apply.
	user, err := s.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", nil, err
	}

	newAccessToken, err := auth.GenerateAccessToken(user.ID, user.Email, user.Role, s.jwtSecret)
	if err != nil {
		return "", nil, apperr.Internal("failed to generate access token", err)
	}
	return newAccessToken, user, nil
}
