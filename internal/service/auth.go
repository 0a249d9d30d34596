// auth.go — регистрация, проверка пароля и выпуск JWT.
// Пароли хранятся как argon2id-хэши, токены подписываются HS256.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/docmgmt/document-qa/internal/domain/model"
	"github.com/docmgmt/document-qa/internal/domain/rbac"
	"github.com/docmgmt/document-qa/internal/repository"
)

// Ограничения учётных данных.
const (
	usernameMinLen = 3
	usernameMaxLen = 64
	passwordMinLen = 8
)

// TokenResponse — выпущенный токен и срок его действия.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AuthService — регистрация и аутентификация пользователей.
type AuthService struct {
	users     repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	issuer    string
	logger    *slog.Logger
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(users repository.UserRepository, jwtSecret string, tokenTTL time.Duration, issuer string, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		issuer:    issuer,
		logger:    logger.With(slog.String("component", "auth_service")),
	}
}

// Register создаёт нового пользователя с ролью VIEWER.
// Занятое имя — ErrConflict.
func (s *AuthService) Register(ctx context.Context, username, password string) (*model.UserDetails, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("хэширование пароля: %w", err)
	}

	u := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         rbac.RoleViewer,
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: имя пользователя занято", ErrConflict)
		}
		return nil, fmt.Errorf("регистрация пользователя: %w", err)
	}

	s.logger.Info("Пользователь зарегистрирован",
		slog.String("user_id", u.ID),
		slog.String("username", username),
	)

	return u.Details(), nil
}

// Login проверяет пару логин/пароль и выпускает HS256 JWT.
// Неизвестный пользователь и неверный пароль неразличимы для клиента.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("поиск пользователя: %w", err)
	}

	match, err := argon2id.ComparePasswordAndHash(password, u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("проверка пароля: %w", err)
	}
	if !match {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      u.ID,
		"username": u.Username,
		"role":     u.Role,
		"iss":      s.issuer,
		"iat":      now.Unix(),
		"exp":      expiresAt.Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("подпись токена: %w", err)
	}

	s.logger.Debug("Токен выпущен",
		slog.String("user_id", u.ID),
		slog.Time("expires_at", expiresAt),
	)

	return &TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

func validateCredentials(username, password string) error {
	nameLen := utf8.RuneCountInString(username)
	if nameLen < usernameMinLen || nameLen > usernameMaxLen {
		return fmt.Errorf("%w: длина имени пользователя должна быть от %d до %d символов",
			ErrValidation, usernameMinLen, usernameMaxLen)
	}
	if utf8.RuneCountInString(password) < passwordMinLen {
		return fmt.Errorf("%w: пароль короче %d символов", ErrValidation, passwordMinLen)
	}
	return nil
}
