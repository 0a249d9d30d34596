// Пакет service — бизнес-логика Document QA Service.
package service

import "errors"

// Ошибки сервисного слоя.
// Хэндлеры отображают их в HTTP-коды (internal/api/errors).
var (
	// ErrNotFound — файл или пользователь не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrForbidden — операция запрещена: файл принадлежит другому редактору.
	ErrForbidden = errors.New("доступ запрещён")
	// ErrConflict — имя пользователя уже занято.
	ErrConflict = errors.New("конфликт данных")
	// ErrValidation — входные данные не прошли проверку.
	ErrValidation = errors.New("ошибка валидации")
	// ErrInvalidCredentials — неверная пара логин/пароль.
	ErrInvalidCredentials = errors.New("неверные учётные данные")
	// ErrInvalidQuestion — вопрос не содержит ни одного пригодного слова.
	ErrInvalidQuestion = errors.New("Not a valid Question")
	// ErrNoResults — ни одно слово вопроса не дало совпадений.
	ErrNoResults = errors.New("No Files found")
)
