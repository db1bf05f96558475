package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/camp-signup/internal/config"
	"github.com/jakechorley/camp-signup/pkg/core/allocator"
	"github.com/jakechorley/camp-signup/pkg/core/model"
)

// GroupStore defines the database operations needed for the group view
type GroupStore interface {
	ApplicationStore
	GetGroupMembers(ctx context.Context, group string) ([]model.Person, error)
}

// GroupApplications lists the afternoon application of every other member of a leader's
// group for one day. Members without an application get an entry with an empty status.
func GroupApplications(
	ctx context.Context,
	store GroupStore,
	logger *zap.Logger,
	cfg *config.Config,
	leaderID string,
	day string,
) ([]ApplicationView, error) {
	leader, err := store.GetPerson(ctx, leaderID)
	if err != nil {
		return nil, translateStoreError("get person", err)
	}
	if !leader.IsLeader {
		return nil, fmt.Errorf("%w: only leaders can view group applications", ErrWrongPool)
	}
	if leader.Group == "" {
		return nil, ErrNoGroup
	}

	members, err := store.GetGroupMembers(ctx, leader.Group)
	if err != nil {
		return nil, translateStoreError("get group members", err)
	}

	overrides, err := store.GetSeasideOverrides(ctx)
	if err != nil {
		return nil, translateStoreError("get seaside overrides", err)
	}
	seaside := allocator.NewSeasideIndex(overrides)

	views := make([]ApplicationView, 0, len(members))
	for i := range members {
		member := &members[i]
		if member.ID == leader.ID {
			continue
		}
		if seaside.Applies(member, day) {
			views = append(views, *seasideView(cfg, member, model.PoolAfternoon, day))
			continue
		}
		view, err := applicationView(ctx, store, member, model.PoolAfternoon, day)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}

	logger.Debug("Listed group applications",
		zap.String("leader_id", leader.ID),
		zap.String("group", leader.Group),
		zap.String("day", day),
		zap.Int("members", len(views)))

	return views, nil
}
