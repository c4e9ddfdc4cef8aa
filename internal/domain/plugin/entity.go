package plugin

import (
	"time"

	"github.com/google/uuid"
)

// Plugin is a purchasable catalog entry for an avatar capability
type Plugin struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       int64     `db:"price" json:"price"`
	Icon        string    `db:"icon" json:"icon"`
	Type        string    `db:"type" json:"type"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
