package file

import (
	"context"
	"fmt"
)

// usageStore is the catalog capability quota accounting needs.
type usageStore interface {
	SumSizeByOwner(ctx context.Context, owner string) (int64, error)
}

// Quota approves or rejects uploads against a per-owner byte ceiling.
//
// CheckAndReserve is check-then-act without a reservation lock: two uploads
// racing for the same owner can both be approved and transiently exceed the
// ceiling. The limit is advisory. Strict enforcement would need a per-owner
// critical section or a conditional atomic update in the catalog.
type Quota struct {
	store   usageStore
	ceiling int64
}

// NewQuota builds an accountant with a fixed ceiling in bytes.
func NewQuota(store usageStore, ceilingBytes int64) *Quota {
	return &Quota{store: store, ceiling: ceilingBytes}
}

// TotalUsed sums the owner's consumed bytes. Shared-in files are excluded.
func (q *Quota) TotalUsed(ctx context.Context, owner string) (int64, error) {
	return q.store.SumSizeByOwner(ctx, owner)
}

// CheckAndReserve returns nil when the upload fits, or a *QuotaError carrying
// the remaining headroom when it does not.
func (q *Quota) CheckAndReserve(ctx context.Context, owner string, incomingBytes int64) error {
	used, err := q.TotalUsed(ctx, owner)
	if err != nil {
		return fmt.Errorf("compute quota usage: %w", err)
	}

	if used+incomingBytes > q.ceiling {
		available := q.ceiling - used
		if available < 0 {
			available = 0
		}
		return &QuotaError{AvailableBytes: available}
	}
	return nil
}
