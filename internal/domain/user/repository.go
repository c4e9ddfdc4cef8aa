package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines user data access interface
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error

	// GetBalance returns the current token balance for a user.
	GetBalance(ctx context.Context, id uuid.UUID) (int64, error)
	// Debit atomically subtracts amount from the balance. The conditional
	// UPDATE keeps the balance non-negative even when two requests race for
	// the same funds; the losing request gets ErrInsufficientBalance.
	Debit(ctx context.Context, id uuid.UUID, amount int64) error
	// Credit adds amount to the balance.
	Credit(ctx context.Context, id uuid.UUID, amount int64) error
}

// repository implements Repository
type repository struct {
	db *sqlx.DB
}

// NewRepository creates new user repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create creates a new user
func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, c8r_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.C8RBalance,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("user repository create: %w", err)
	}

	return nil
}

// GetByID returns user by ID
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `
		SELECT id, email, name, password_hash, c8r_balance, last_login_at, created_at, updated_at
		FROM users WHERE id = $1
	`
	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// GetByEmail returns user by email
func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, name, password_hash, c8r_balance, last_login_at, created_at, updated_at
		FROM users WHERE email = $1
	`
	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// UpdateLastLogin updates last login timestamp
func (r *repository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET last_login_at = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, time.Now())
	return err
}

// GetBalance returns the current token balance
func (r *repository) GetBalance(ctx context.Context, id uuid.UUID) (int64, error) {
	var balance int64
	err := r.db.QueryRowContext(ctx,
		`SELECT c8r_balance FROM users WHERE id = $1`,
		id,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return balance, nil
}

// Debit atomically deducts amount, guarded by the balance check in the WHERE
// clause. RowsAffected == 0 means the funds were not there.
func (r *repository) Debit(ctx context.Context, id uuid.UUID, amount int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET c8r_balance = c8r_balance - $2, updated_at = NOW()
		 WHERE id = $1 AND c8r_balance >= $2`,
		id, amount,
	)
	if err != nil {
		return fmt.Errorf("debit balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

// Credit adds amount to the balance
func (r *repository) Credit(ctx context.Context, id uuid.UUID, amount int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET c8r_balance = c8r_balance + $2, updated_at = NOW() WHERE id = $1`,
		id, amount,
	)
	if err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
