package plugin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines plugin catalog data access
type Repository interface {
	List(ctx context.Context) ([]*Plugin, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Plugin, error)
	Seed(ctx context.Context) (int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new plugin repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// List returns the full catalog ordered by name
func (r *repository) List(ctx context.Context) ([]*Plugin, error) {
	query := `
		SELECT id, name, description, price, icon, type, created_at
		FROM plugins ORDER BY name
	`
	var plugins []*Plugin
	if err := r.db.SelectContext(ctx, &plugins, query); err != nil {
		return nil, fmt.Errorf("plugin repository list: %w", err)
	}
	return plugins, nil
}

// GetByID returns a catalog entry by ID
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Plugin, error) {
	query := `
		SELECT id, name, description, price, icon, type, created_at
		FROM plugins WHERE id = $1
	`
	var p Plugin
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Seed inserts the built-in catalog. Name is unique, so re-running at startup
// is a no-op for entries that already exist.
func (r *repository) Seed(ctx context.Context) (int, error) {
	query := `
		INSERT INTO plugins (id, name, description, price, icon, type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (name) DO NOTHING
	`

	inserted := 0
	for _, entry := range Catalog() {
		res, err := r.db.ExecContext(ctx, query,
			uuid.New(),
			entry.Name,
			entry.Description,
			entry.Price,
			entry.Icon,
			entry.Type,
		)
		if err != nil {
			return inserted, fmt.Errorf("plugin repository seed %q: %w", entry.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}
