package httpapi

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/camp-signup/pkg/core/services"
)

// ArmTrailBackfill runs the trail backfill once at the given time, or immediately if it has passed.
// The returned func disarms a backfill that hasn't started yet.
func (s *Server) ArmTrailBackfill(ctx context.Context, at time.Time) (stop func() bool) {
	s.logger.Info("Trail backfill armed", zap.Time("at", at))

	timer := time.AfterFunc(time.Until(at), func() {
		if ctx.Err() != nil {
			return
		}
		result, err := services.BackfillTrails(ctx, s.store, s.logger, s.cfg, services.BackfillTrailsOptions{})
		if err != nil {
			s.logger.Error("Trail backfill failed", zap.Error(err))
			return
		}
		s.logger.Info("Trail backfill finished",
			zap.Bool("committed", result.Committed),
			zap.Int("created", len(result.Created)),
			zap.Int("skipped", result.Skipped))
	})
	return timer.Stop
}
