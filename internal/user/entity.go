// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Name         string     `db:"name"`
	Role         string     `db:"role"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	LastLoginAt  *time.Time `db:"last_login_at"`
	IsActive     bool       `db:"is_active"`
}

const (
	RoleUser    = "user"
	RolePremium = "premium"
	RoleAdmin   = "admin"
)

func ValidRole(role string) bool {
	return role == RoleUser || role == RolePremium || role == RoleAdmin
}
