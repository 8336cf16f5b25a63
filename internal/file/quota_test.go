package file

import (
	"context"
	"errors"
	"testing"
)

type stubUsage struct {
	used int64
	err  error
}

func (s stubUsage) SumSizeByOwner(ctx context.Context, owner string) (int64, error) {
	return s.used, s.err
}

func TestQuotaApprovesWithinCeiling(t *testing.T) {
	quota := NewQuota(stubUsage{used: 100}, 1000)

	if err := quota.CheckAndReserve(context.Background(), "owner@example.com", 900); err != nil {
		t.Fatalf("expected approval at exact ceiling, got %v", err)
	}
}

func TestQuotaRejectsOverCeiling(t *testing.T) {
	quota := NewQuota(stubUsage{used: 100}, 1000)

	err := quota.CheckAndReserve(context.Background(), "owner@example.com", 901)
	var quotaErr *QuotaError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("expected QuotaError, got %v", err)
	}
	if quotaErr.AvailableBytes != 900 {
		t.Fatalf("expected 900 available, got %d", quotaErr.AvailableBytes)
	}
}

func TestQuotaClampsNegativeHeadroom(t *testing.T) {
	// Usage above the ceiling can happen after a config change or a racing
	// pair of uploads; headroom must never report negative.
	quota := NewQuota(stubUsage{used: 2000}, 1000)

	err := quota.CheckAndReserve(context.Background(), "owner@example.com", 1)
	var quotaErr *QuotaError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("expected QuotaError, got %v", err)
	}
	if quotaErr.AvailableBytes != 0 {
		t.Fatalf("expected headroom clamped to 0, got %d", quotaErr.AvailableBytes)
	}
}

func TestQuotaPropagatesUsageErrors(t *testing.T) {
	quota := NewQuota(stubUsage{err: errors.New("catalog down")}, 1000)

	err := quota.CheckAndReserve(context.Background(), "owner@example.com", 1)
	if err == nil {
		t.Fatalf("expected error when usage lookup fails")
	}
	var quotaErr *QuotaError
	if errors.As(err, &quotaErr) {
		t.Fatalf("usage failure must not masquerade as quota rejection")
	}
}
