package wallet

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTransactionCodec_RoundTrip(t *testing.T) {
	ts := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)
	original := []Transaction{
		{ID: uuid.New(), Kind: KindSignup, Amount: 2500, Description: "Welcome bonus: 2500 $C8R", Timestamp: ts},
		{ID: uuid.New(), Kind: KindPurchase, Amount: 250, Description: "Purchased Creative Writer Plugin", Timestamp: ts.Add(time.Hour)},
	}

	data, err := encodeTransactions(original)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := decodeTransactions(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(decoded) != len(original) {
		t.Fatalf("expected %d transactions, got %d", len(original), len(decoded))
	}
	for i := range original {
		if decoded[i].ID != original[i].ID {
			t.Fatalf("transaction %d: ID changed in round trip", i)
		}
		if decoded[i].Kind != original[i].Kind || decoded[i].Amount != original[i].Amount {
			t.Fatalf("transaction %d: kind or amount changed in round trip", i)
		}
		if !decoded[i].Timestamp.Equal(original[i].Timestamp) {
			t.Fatalf("transaction %d: timestamp changed in round trip", i)
		}
	}
}

func TestStakeCodec_PreservesRewardState(t *testing.T) {
	original := []Stake{
		{
			ID:             uuid.New(),
			Amount:         500,
			StartDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			LockDays:       30,
			APYBasisPoints: 1200,
			ClaimedRewards: 25,
		},
	}

	data, err := encodeStakes(original)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := decodeStakes(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(decoded) != 1 {
		t.Fatalf("expected 1 stake, got %d", len(decoded))
	}
	s := decoded[0]
	if s.ClaimedRewards != 25 {
		t.Fatalf("expected claimed rewards to survive, got %d", s.ClaimedRewards)
	}

	// Accrual math must yield the same result after a round trip
	now := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	if got, want := s.EarnedAt(now), original[0].EarnedAt(now); got != want {
		t.Fatalf("expected earned %d after round trip, got %d", want, got)
	}
	if got := s.AccruedAt(now); got != 60-25 {
		t.Fatalf("expected accrued 35, got %d", got)
	}
}

func TestOwnedPluginCodec_RoundTrip(t *testing.T) {
	original := []OwnedPlugin{
		{
			PluginID:    uuid.New(),
			Name:        "Yoga Instructor",
			Price:       225,
			Type:        "wellness",
			PurchasedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	data, err := encodeOwnedPlugins(original)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := decodeOwnedPlugins(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(decoded) != 1 || decoded[0].PluginID != original[0].PluginID {
		t.Fatal("expected plugin entitlement to survive round trip")
	}
	if !decoded[0].PurchasedAt.Equal(original[0].PurchasedAt) {
		t.Fatal("expected purchase timestamp to survive round trip")
	}
}
