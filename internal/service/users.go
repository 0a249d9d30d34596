// users.go — административное управление пользователями.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/docmgmt/document-qa/internal/domain/model"
	"github.com/docmgmt/document-qa/internal/domain/rbac"
	"github.com/docmgmt/document-qa/internal/repository"
)

// UserService — список, просмотр, смена роли и удаление пользователей.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewUserService создаёт сервис пользователей.
func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger.With(slog.String("component", "user_service")),
	}
}

// List возвращает страницу пользователей без хэшей паролей.
func (s *UserService) List(ctx context.Context, pq repository.PageQuery) (*model.PagedResponse[*model.UserDetails], error) {
	users, total, err := s.users.List(ctx, pq)
	if err != nil {
		return nil, fmt.Errorf("список пользователей: %w", err)
	}

	details := make([]*model.UserDetails, 0, len(users))
	for _, u := range users {
		details = append(details, u.Details())
	}

	return model.NewPagedResponse(details, pq.Page, pq.Size, total), nil
}

// GetByID возвращает пользователя по UUID.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.UserDetails, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u.Details(), nil
}

// UpdateRole меняет роль пользователя. Роль должна быть из допустимого набора.
func (s *UserService) UpdateRole(ctx context.Context, id, role string) error {
	if !rbac.IsValidRole(role) {
		return fmt.Errorf("%w: недопустимая роль %q", ErrValidation, role)
	}

	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("смена роли: %w", err)
	}

	s.logger.Info("Роль пользователя изменена",
		slog.String("user_id", id),
		slog.String("role", role),
	)
	return nil
}

// Delete удаляет пользователя.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление пользователя: %w", err)
	}

	s.logger.Info("Пользователь удалён", slog.String("user_id", id))
	return nil
}
