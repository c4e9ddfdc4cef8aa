package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents a platform account. The c8r_balance column is the single
// authoritative store for spendable tokens; every mutation goes through the
// wallet facade.
type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	PasswordHash string    `db:"password_hash"`
	C8RBalance   int64     `db:"c8r_balance"`

	LastLoginAt *time.Time `db:"last_login_at"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
