package services

import (
	"context"
	"fmt"

	"moneytracker/internal/ledger"
	"moneytracker/internal/log"
)

// Prune removes transactions older than the retention window.
func (s *TrackerService) Prune(ctx context.Context) (ledger.PruneResult, error) {
	res, err := s.ledger.Prune(ctx, s.now(), s.retention)
	if err != nil {
		return res, fmt.Errorf("prune: %w", err)
	}
	if res.Total() > 0 {
		s.logger.InfoContext(ctx, "Old transactions removed",
			log.FieldOperation, log.OpPrune,
			log.FieldCount, res.Total(),
			"cutoff", res.Cutoff.String())
	}
	return res, nil
}

// Reset deletes every expense, income record and goal. Limits are kept.
func (s *TrackerService) Reset(ctx context.Context) error {
	if err := s.ledger.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	// The preview may show data that no longer exists.
	s.preview.Hide()
	return nil
}
