package service

import (
	"context"
	"time"
)

// ExpireStalePending expires orders still pending past the configured timeout and
// returns how many changed. Repeating it on the same data returns 0.
func (s *OrderService) ExpireStalePending(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	return s.orderRepo.ExpireStalePending(ctx, now.Add(-s.pendingTimeout()), now)
}
