package authservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yyzahran/Recipe-App/internal/pkg/config"
	"github.com/yyzahran/Recipe-App/internal/pkg/jwtauth"
	"github.com/yyzahran/Recipe-App/internal/recipes/domain/models"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 5

var (
	ErrWeakPassword       = errors.New("password must be at least 5 characters")
	ErrBadEmail           = errors.New("email address is not valid")
	ErrInvalidCredentials = errors.New("unable to authenticate with the provided credentials")
)

type Repository interface {
	CreateUser(context.Context, models.User) (int64, error)
	GetUserByEmail(context.Context, string) (models.User, error)
	GetUserByID(context.Context, int64) (models.User, error)
	UpdateUser(context.Context, models.User) error
}

type AuthService struct {
	userRepo Repository
	cfg      config.Auth
}

func New(userRepo Repository, cfg config.Auth) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

func (as *AuthService) CreateUser(ctx context.Context, req CreateUserRequest) (string, error) {
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return "", err
	}

	if len(req.Password) < minPasswordLen {
		return "", ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("generate from password error: %w", err)
	}

	u := models.User{ //nolint:exhaustruct
		Email:        email,
		Name:         req.Name,
		PasswordHash: string(hash),
	}

	id, err := as.userRepo.CreateUser(ctx, u)
	if err != nil {
		return "", fmt.Errorf("create user error: %w", err)
	}

	u.ID = id

	token, err := jwtauth.GetToken(u, as.cfg.TTL, as.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("can't get token error: %w", err)
	}

	return token, nil
}

func (as *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	u, err := as.userRepo.GetUserByEmail(ctx, normalized)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := jwtauth.GetToken(u, as.cfg.TTL, as.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("can't get token error: %w", err)
	}

	return token, nil
}

// Auth validates a bearer token and returns the id of the user it belongs to.
func (as *AuthService) Auth(token string) (int64, error) {
	userID, _, err := jwtauth.ValidateToken(token, as.cfg.Secret)
	if err != nil {
		return 0, fmt.Errorf("validate token error: %w", err)
	}

	return userID, nil
}

func (as *AuthService) GetUser(ctx context.Context, userID int64) (models.User, error) {
	u, err := as.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("get user error: %w", err)
	}

	return u, nil
}

func (as *AuthService) UpdateUser(ctx context.Context, userID int64, req UpdateUserRequest) (models.User, error) {
	u, err := as.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("get user error: %w", err)
	}

	if req.Name != nil {
		u.Name = *req.Name
	}

	if req.Password != nil {
		if len(*req.Password) < minPasswordLen {
			return models.User{}, ErrWeakPassword
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("generate from password error: %w", err)
		}

		u.PasswordHash = string(hash)
	}

	if err := as.userRepo.UpdateUser(ctx, u); err != nil {
		return models.User{}, fmt.Errorf("update user error: %w", err)
	}

	return u, nil
}

// NormalizeEmail lowercases the domain part, leaving the local part as given.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)

	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", ErrBadEmail
	}

	return email[:at+1] + strings.ToLower(email[at+1:]), nil
}
