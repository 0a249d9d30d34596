package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/docmgmt/document-qa/internal/domain/model"
)

const userColumns = `id, username, password_hash, role, created_at`

// UserRepository — доступ к таблице users.
type UserRepository interface {
	// Create вставляет нового пользователя. Заполняет CreatedAt из БД.
	// Возвращает ErrConflict если имя пользователя занято.
	Create(ctx context.Context, u *model.User) error
	// GetByUsername возвращает пользователя по имени.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// GetByID возвращает пользователя по UUID.
	GetByID(ctx context.Context, id string) (*model.User, error)
	// List возвращает страницу пользователей и общее количество.
	List(ctx context.Context, pq PageQuery) ([]*model.User, int64, error)
	// UpdateRole меняет роль пользователя.
	UpdateRole(ctx context.Context, id string, role string) error
	// Delete удаляет пользователя.
	Delete(ctx context.Context, id string) error
}

type userRepo struct {
	db DBTX
}

// NewUserRepository создаёт репозиторий пользователей.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query, u.ID, u.Username, u.PasswordHash, u.Role).
		Scan(&u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: имя пользователя занято", ErrConflict)
		}
		return fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, userColumns)
	return r.get(ctx, query, username)
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.get(ctx, query, id)
}

func (r *userRepo) get(ctx context.Context, query string, arg any) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return u, nil
}

func (r *userRepo) List(ctx context.Context, pq PageQuery) ([]*model.User, int64, error) {
	// Для пользователей сортировка фиксированная — по имени.
	query := fmt.Sprintf(
		`SELECT %s FROM users ORDER BY username ASC LIMIT $1 OFFSET $2`,
		userColumns,
	)

	rows, err := r.db.Query(ctx, query, pq.Size, pq.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выборки пользователей: %w", err)
	}
	defer rows.Close()

	var result []*model.User
	for rows.Next() {
		u := &model.User{}
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования пользователя: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка итерации результатов: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта пользователей: %w", err)
	}

	return result, total, nil
}

func (r *userRepo) UpdateRole(ctx context.Context, id string, role string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET role = $2 WHERE id = $1`, id, role)
	if err != nil {
		return fmt.Errorf("ошибка обновления роли: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления пользователя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
