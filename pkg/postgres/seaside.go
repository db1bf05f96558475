package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/camp-signup/pkg/core/model"
)

// GetSeasideOverrides retrieves every seaside override
func (d *DB) GetSeasideOverrides(ctx context.Context) ([]model.SeasideOverride, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT group_name, day
		FROM seaside_override
		ORDER BY group_name, day
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query seaside overrides: %w", err)
	}
	defer rows.Close()

	var overrides []model.SeasideOverride
	for rows.Next() {
		var o model.SeasideOverride
		if err := rows.Scan(&o.Group, &o.Day); err != nil {
			return nil, fmt.Errorf("failed to scan seaside override: %w", err)
		}
		overrides = append(overrides, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating seaside overrides: %w", err)
	}

	return overrides, nil
}
