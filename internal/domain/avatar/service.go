package avatar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/c8r-platform/c8r-api/internal/pkg/imaging"
)

// Ledger charges the mint cost through the wallet so minting shows up in the
// transaction history like every other balance-affecting operation.
type Ledger interface {
	MintCharge(ctx context.Context, userID uuid.UUID, amount int64, description string) error
}

// Storage persists the processed image variants
type Storage interface {
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// Service handles avatar minting business logic
type Service struct {
	repo      Repository
	ledger    Ledger
	storage   Storage
	processor *imaging.Processor
	mintCost  int64
}

// NewService creates avatar service
func NewService(repo Repository, ledger Ledger, storage Storage, processor *imaging.Processor, mintCost int64) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledger,
		storage:   storage,
		processor: processor,
		mintCost:  mintCost,
	}
}

// Mint processes the uploaded image, uploads both variants, charges the mint
// cost and records the avatar. The upload happens before the charge so an
// insufficient balance never leaves the user paid for a failed upload.
func (s *Service) Mint(ctx context.Context, userID uuid.UUID, req *MintRequest, image io.Reader) (*Avatar, error) {
	processed, err := s.processor.Process(image)
	if err != nil {
		return nil, ErrInvalidImage
	}

	id := uuid.New()
	ext := extFromContentType(processed.ContentType)
	imageKey := fmt.Sprintf("avatars/%s/original%s", id, ext)
	thumbKey := fmt.Sprintf("avatars/%s/thumb%s", id, ext)

	if err := s.storage.Put(ctx, imageKey, bytes.NewReader(processed.Original), processed.ContentType); err != nil {
		return nil, fmt.Errorf("upload avatar image: %w", err)
	}
	if err := s.storage.Put(ctx, thumbKey, bytes.NewReader(processed.Thumbnail), processed.ContentType); err != nil {
		s.cleanup(ctx, imageKey)
		return nil, fmt.Errorf("upload avatar thumbnail: %w", err)
	}

	if err := s.ledger.MintCharge(ctx, userID, s.mintCost,
		fmt.Sprintf("Minted avatar %q", req.Name)); err != nil {
		s.cleanup(ctx, imageKey, thumbKey)
		return nil, err
	}

	avatar := &Avatar{
		ID:           id,
		UserID:       userID,
		Name:         req.Name,
		Description:  req.Description,
		Personality:  req.Personality,
		NFTType:      req.NFTType,
		ImageURL:     s.storage.PublicURL(imageKey),
		ThumbnailURL: s.storage.PublicURL(thumbKey),
		MintCost:     s.mintCost,
		CreatedAt:    time.Now(),
	}

	if err := s.repo.Create(ctx, avatar); err != nil {
		s.cleanup(ctx, imageKey, thumbKey)
		return nil, err
	}

	return avatar, nil
}

// List returns the user's minted avatars
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Avatar, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get returns one of the user's avatars
func (s *Service) Get(ctx context.Context, userID, avatarID uuid.UUID) (*Avatar, error) {
	a, err := s.repo.GetByID(ctx, avatarID)
	if err != nil {
		return nil, err
	}
	if a == nil || a.UserID != userID {
		return nil, ErrAvatarNotFound
	}
	return a, nil
}

func (s *Service) cleanup(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to clean up avatar upload")
		}
	}
}

func extFromContentType(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
