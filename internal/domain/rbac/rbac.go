// Пакет rbac — роли пользователей и проверки привилегий.
// Три фиксированные роли: VIEWER < EDITOR < ADMIN.
package rbac

// Роли в порядке возрастания привилегий.
const (
	RoleViewer = "VIEWER"
	RoleEditor = "EDITOR"
	RoleAdmin  = "ADMIN"
)

// roleWeight — вес роли для сравнения.
// Чем выше вес, тем больше привилегий.
var roleWeight = map[string]int{
	RoleViewer: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
}

// IsValidRole проверяет, является ли строка допустимой ролью.
func IsValidRole(role string) bool {
	_, ok := roleWeight[role]
	return ok
}

// CanMutateFiles — разрешены ли субъекту мутации файлов (upload/update/delete).
func CanMutateFiles(role string) bool {
	return roleWeight[role] >= roleWeight[RoleEditor]
}

// CanRead — разрешено ли субъекту чтение (любая валидная роль).
func CanRead(role string) bool {
	return IsValidRole(role)
}

// IsAdmin — является ли субъект администратором.
func IsAdmin(role string) bool {
	return role == RoleAdmin
}
