package avatar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines avatar data access
type Repository interface {
	Create(ctx context.Context, avatar *Avatar) error
	GetByID(ctx context.Context, id uuid.UUID) (*Avatar, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Avatar, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new avatar repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create inserts a minted avatar
func (r *repository) Create(ctx context.Context, avatar *Avatar) error {
	query := `
		INSERT INTO avatars (id, user_id, name, description, personality, nft_type, image_url, thumbnail_url, mint_cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		avatar.ID,
		avatar.UserID,
		avatar.Name,
		avatar.Description,
		avatar.Personality,
		avatar.NFTType,
		avatar.ImageURL,
		avatar.ThumbnailURL,
		avatar.MintCost,
		avatar.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("avatar repository create: %w", err)
	}

	return nil
}

// GetByID returns an avatar by ID
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Avatar, error) {
	query := `
		SELECT id, user_id, name, description, personality, nft_type, image_url, thumbnail_url, mint_cost, created_at
		FROM avatars WHERE id = $1
	`
	var a Avatar
	err := r.db.GetContext(ctx, &a, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// ListByUser returns all avatars minted by a user, newest first
func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Avatar, error) {
	query := `
		SELECT id, user_id, name, description, personality, nft_type, image_url, thumbnail_url, mint_cost, created_at
		FROM avatars WHERE user_id = $1 ORDER BY created_at DESC
	`
	var avatars []*Avatar
	if err := r.db.SelectContext(ctx, &avatars, query, userID); err != nil {
		return nil, fmt.Errorf("avatar repository list: %w", err)
	}
	return avatars, nil
}
