package repository

import (
	"context"
	"fmt"
	"time"

	"arcade/models"

	"github.com/shopspring/decimal"
)

// ModifierRepository stores personal boosters in player_modifiers
type ModifierRepository struct {
	q       queryable
	guildID int64
}

func newModifierRepository(tx queryable, guildID int64) *ModifierRepository {
	return &ModifierRepository{q: tx, guildID: guildID}
}

// GetByPlayer returns all stored modifiers for the player, expired ones included
func (r *ModifierRepository) GetByPlayer(ctx context.Context, playerID int64) ([]*models.Modifier, error) {
	query := `
		SELECT kind, multiplier::text, name, expires_at, created_at
		FROM player_modifiers
		WHERE guild_id = $1 AND player_id = $2
		ORDER BY kind
	`

	rows, err := r.q.Query(ctx, query, r.guildID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get modifiers for player %d: %w", playerID, err)
	}
	defer rows.Close()

	var modifiers []*models.Modifier
	for rows.Next() {
		m := &models.Modifier{
			Scope:    models.ModifierScopePersonal,
			GuildID:  r.guildID,
			PlayerID: playerID,
		}
		var multiplier string
		if err := rows.Scan(&m.Kind, &multiplier, &m.Name, &m.ExpiresAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan modifier: %w", err)
		}
		m.Multiplier, err = decimal.NewFromString(multiplier)
		if err != nil {
			return nil, fmt.Errorf("failed to parse multiplier %q: %w", multiplier, err)
		}
		modifiers = append(modifiers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate modifiers: %w", err)
	}

	return modifiers, nil
}

// Upsert replaces the player's modifier of the same kind
func (r *ModifierRepository) Upsert(ctx context.Context, modifier *models.Modifier) error {
	query := `
		INSERT INTO player_modifiers (guild_id, player_id, kind, multiplier, name, expires_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6)
		ON CONFLICT (guild_id, player_id, kind) DO UPDATE SET
			multiplier = EXCLUDED.multiplier,
			name = EXCLUDED.name,
			expires_at = EXCLUDED.expires_at,
			created_at = NOW()
		RETURNING created_at
	`
	err := r.q.QueryRow(ctx, query,
		r.guildID,
		modifier.PlayerID,
		modifier.Kind,
		modifier.Multiplier.String(),
		modifier.Name,
		modifier.ExpiresAt,
	).Scan(&modifier.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert %s modifier for player %d: %w", modifier.Kind, modifier.PlayerID, err)
	}

	modifier.GuildID = r.guildID
	modifier.Scope = models.ModifierScopePersonal
	return nil
}

// DeleteExpired removes the player's modifiers whose expiry is at or before now
func (r *ModifierRepository) DeleteExpired(ctx context.Context, playerID int64, now time.Time) (int64, error) {
	query := `DELETE FROM player_modifiers WHERE guild_id = $1 AND player_id = $2 AND expires_at <= $3`

	tag, err := r.q.Exec(ctx, query, r.guildID, playerID, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired modifiers for player %d: %w", playerID, err)
	}
	return tag.RowsAffected(), nil
}
