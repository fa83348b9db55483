package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUnset    Role = "unset"
	RoleEmployer Role = "employer"
	RoleWorker   Role = "worker"
)

// ValidRole reports whether r is a role a user may switch to.
func ValidRole(r Role) bool {
	return r == RoleEmployer || r == RoleWorker
}

type User struct {
	ID         int64
	TelegramID int64
	Username   string
	Balance    decimal.Decimal
	Role       Role
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (u *User) IsEmployer() bool { return u.Role == RoleEmployer }
func (u *User) IsWorker() bool   { return u.Role == RoleWorker }
