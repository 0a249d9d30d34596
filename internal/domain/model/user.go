package model

import "time"

// User — учётная запись в таблице users.
type User struct {
	// ID — UUID пользователя
	ID string
	// Username — уникальное имя пользователя
	Username string
	// PasswordHash — argon2id-хэш пароля (формат PHC)
	PasswordHash string
	// Role — роль (ADMIN, EDITOR, VIEWER)
	Role string
	// CreatedAt — время создания записи
	CreatedAt time.Time
}

// UserDetails — проекция User без хэша пароля.
type UserDetails struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Details возвращает проекцию пользователя без учётных данных.
func (u *User) Details() *UserDetails {
	if u == nil {
		return nil
	}
	return &UserDetails{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
	}
}
