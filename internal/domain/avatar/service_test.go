package avatar

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/c8r-platform/c8r-api/internal/domain/wallet"
	"github.com/c8r-platform/c8r-api/internal/pkg/imaging"
)

type testRepo struct {
	avatars map[uuid.UUID]*Avatar
	err     error
}

func (r *testRepo) Create(ctx context.Context, a *Avatar) error {
	if r.err != nil {
		return r.err
	}
	r.avatars[a.ID] = a
	return nil
}
func (r *testRepo) GetByID(ctx context.Context, id uuid.UUID) (*Avatar, error) {
	return r.avatars[id], nil
}
func (r *testRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Avatar, error) {
	var out []*Avatar
	for _, a := range r.avatars {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

type testLedger struct {
	charges []int64
	err     error
}

func (l *testLedger) MintCharge(ctx context.Context, userID uuid.UUID, amount int64, description string) error {
	if l.err != nil {
		return l.err
	}
	l.charges = append(l.charges, amount)
	return nil
}

type testStorage struct {
	objects map[string][]byte
}

func (s *testStorage) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}
func (s *testStorage) Delete(ctx context.Context, key string) error {
	delete(s.objects, key)
	return nil
}
func (s *testStorage) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func newTestService() (*Service, *testRepo, *testLedger, *testStorage) {
	repo := &testRepo{avatars: make(map[uuid.UUID]*Avatar)}
	ledger := &testLedger{}
	store := &testStorage{objects: make(map[string][]byte)}
	svc := NewService(repo, ledger, store, imaging.NewProcessor(imaging.DefaultConfig()), 100)
	return svc, repo, ledger, store
}

func testImage(t *testing.T) io.Reader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for x := 0; x < 64; x++ {
		for y := 0; y < 64; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return &buf
}

func TestMint_ChargesAndStores(t *testing.T) {
	svc, repo, ledger, store := newTestService()
	userID := uuid.New()

	avatar, err := svc.Mint(context.Background(), userID, &MintRequest{
		Name:    "Nova",
		NFTType: "ERC-721",
	}, testImage(t))
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if len(ledger.charges) != 1 || ledger.charges[0] != 100 {
		t.Fatalf("expected a single mint charge of 100, got %v", ledger.charges)
	}
	if avatar.MintCost != 100 {
		t.Fatalf("expected mint cost on the record, got %d", avatar.MintCost)
	}
	if len(store.objects) != 2 {
		t.Fatalf("expected original and thumbnail uploaded, got %d objects", len(store.objects))
	}
	if !strings.HasPrefix(avatar.ImageURL, "https://cdn.test/avatars/") {
		t.Fatalf("expected public image URL, got %q", avatar.ImageURL)
	}
	if repo.avatars[avatar.ID] == nil {
		t.Fatal("expected avatar persisted")
	}
}

func TestMint_InsufficientBalanceCleansUpUploads(t *testing.T) {
	svc, repo, ledger, store := newTestService()
	ledger.err = &wallet.InsufficientBalanceError{Required: 100, Balance: 40}
	userID := uuid.New()

	_, err := svc.Mint(context.Background(), userID, &MintRequest{
		Name:    "Nova",
		NFTType: "ERC-721",
	}, testImage(t))

	if !errors.Is(err, wallet.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance error, got %v", err)
	}
	if len(store.objects) != 0 {
		t.Fatalf("expected uploads cleaned up after failed charge, got %d objects", len(store.objects))
	}
	if len(repo.avatars) != 0 {
		t.Fatal("expected no avatar record")
	}
}

func TestMint_RejectsInvalidImage(t *testing.T) {
	svc, _, ledger, store := newTestService()
	userID := uuid.New()

	_, err := svc.Mint(context.Background(), userID, &MintRequest{
		Name:    "Nova",
		NFTType: "ERC-721",
	}, strings.NewReader("not an image"))

	if !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
	if len(ledger.charges) != 0 {
		t.Fatal("expected no charge for an invalid image")
	}
	if len(store.objects) != 0 {
		t.Fatal("expected no uploads for an invalid image")
	}
}

func TestGet_ScopedToOwner(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ownerID := uuid.New()
	otherID := uuid.New()

	a := &Avatar{ID: uuid.New(), UserID: ownerID, Name: "Nova"}
	repo.avatars[a.ID] = a

	got, err := svc.Get(context.Background(), ownerID, a.ID)
	if err != nil || got.ID != a.ID {
		t.Fatalf("expected owner to fetch avatar, got %v %v", got, err)
	}

	if _, err := svc.Get(context.Background(), otherID, a.ID); !errors.Is(err, ErrAvatarNotFound) {
		t.Fatalf("expected ErrAvatarNotFound for non-owner, got %v", err)
	}
	if _, err := svc.Get(context.Background(), ownerID, uuid.New()); !errors.Is(err, ErrAvatarNotFound) {
		t.Fatalf("expected ErrAvatarNotFound for unknown ID, got %v", err)
	}
}
