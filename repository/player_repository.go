package repository

import (
	"context"
	"errors"
	"fmt"

	"arcade/database"
	"arcade/models"

	"github.com/jackc/pgx/v5"
)

const playerColumns = `guild_id, player_id, balance, debt, experience, level,
	weekly_experience, badges, created_at, updated_at`

// PlayerRepository implements service.PlayerRepository on Postgres
type PlayerRepository struct {
	q       queryable
	guildID int64
}

// NewPlayerRepository creates a guild-scoped player repository on the pool
func NewPlayerRepository(db *database.DB, guildID int64) *PlayerRepository {
	return &PlayerRepository{q: db.Pool, guildID: guildID}
}

// newPlayerRepository creates a player repository bound to a transaction
func newPlayerRepository(tx queryable, guildID int64) *PlayerRepository {
	return &PlayerRepository{q: tx, guildID: guildID}
}

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var p models.Player
	err := row.Scan(
		&p.GuildID,
		&p.PlayerID,
		&p.Balance,
		&p.Debt,
		&p.Experience,
		&p.Level,
		&p.WeeklyExperience,
		&p.Badges,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Badges == nil {
		p.Badges = []string{}
	}
	return &p, nil
}

// GetByID returns the player's record or nil if none exists
func (r *PlayerRepository) GetByID(ctx context.Context, playerID int64) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE guild_id = $1 AND player_id = $2`

	player, err := scanPlayer(r.q.QueryRow(ctx, query, r.guildID, playerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %d: %w", playerID, err)
	}
	return player, nil
}

// GetOrCreateForUpdate inserts a zeroed record if needed, then locks the row
func (r *PlayerRepository) GetOrCreateForUpdate(ctx context.Context, playerID int64) (*models.Player, error) {
	insert := `
		INSERT INTO players (guild_id, player_id)
		VALUES ($1, $2)
		ON CONFLICT (guild_id, player_id) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, insert, r.guildID, playerID); err != nil {
		return nil, fmt.Errorf("failed to create player %d: %w", playerID, err)
	}

	query := `SELECT ` + playerColumns + ` FROM players WHERE guild_id = $1 AND player_id = $2 FOR UPDATE`
	player, err := scanPlayer(r.q.QueryRow(ctx, query, r.guildID, playerID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock player %d: %w", playerID, err)
	}
	return player, nil
}

// Save upserts the full record
func (r *PlayerRepository) Save(ctx context.Context, player *models.Player) error {
	badges := player.Badges
	if badges == nil {
		badges = []string{}
	}

	query := `
		INSERT INTO players (guild_id, player_id, balance, debt, experience, level, weekly_experience, badges)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (guild_id, player_id) DO UPDATE SET
			balance = EXCLUDED.balance,
			debt = EXCLUDED.debt,
			experience = EXCLUDED.experience,
			level = EXCLUDED.level,
			weekly_experience = EXCLUDED.weekly_experience,
			badges = EXCLUDED.badges,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		r.guildID,
		player.PlayerID,
		player.Balance,
		player.Debt,
		player.Experience,
		player.Level,
		player.WeeklyExperience,
		badges,
	).Scan(&player.CreatedAt, &player.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save player %d: %w", player.PlayerID, err)
	}

	player.GuildID = r.guildID
	return nil
}

// GetTop returns the guild's players ordered by experience
func (r *PlayerRepository) GetTop(ctx context.Context, limit int, weekly bool) ([]*models.Player, error) {
	orderBy := "experience"
	if weekly {
		orderBy = "weekly_experience"
	}

	query := `SELECT ` + playerColumns + ` FROM players
		WHERE guild_id = $1 AND ` + orderBy + ` > 0
		ORDER BY ` + orderBy + ` DESC, player_id
		LIMIT $2`

	rows, err := r.q.Query(ctx, query, r.guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}

	return players, nil
}
