package avatar

import (
	"time"

	"github.com/google/uuid"
)

// Avatar is a minted companion NFT owned by a user
type Avatar struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	Personality  string    `db:"personality" json:"personality"`
	NFTType      string    `db:"nft_type" json:"nft_type"`
	ImageURL     string    `db:"image_url" json:"image_url"`
	ThumbnailURL string    `db:"thumbnail_url" json:"thumbnail_url"`
	MintCost     int64     `db:"mint_cost" json:"mint_cost"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
