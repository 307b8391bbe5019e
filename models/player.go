package models

import (
	"slices"
	"time"
)

// DefaultLevelExpUnit is the experience needed per level
const DefaultLevelExpUnit int64 = 3500

// Player is a player's ledger record within a guild: spendable currency plus
// experience progress. One record exists per (guild, player).
type Player struct {
	GuildID          int64     `db:"guild_id" json:"guild_id"`
	PlayerID         int64     `db:"player_id" json:"player_id"`
	Balance          int64     `db:"balance" json:"balance"`
	Debt             int64     `db:"debt" json:"debt"`
	Experience       int64     `db:"experience" json:"experience"`
	Level            int64     `db:"level" json:"level"`
	WeeklyExperience int64     `db:"weekly_experience" json:"weekly_experience"`
	Badges           []string  `db:"badges" json:"badges"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// NewPlayer returns a zeroed record for a player that has never been touched
func NewPlayer(guildID, playerID int64) *Player {
	return &Player{
		GuildID:  guildID,
		PlayerID: playerID,
		Badges:   []string{},
	}
}

// LevelForExperience derives the level from total experience
func LevelForExperience(experience, unit int64) int64 {
	if unit <= 0 || experience <= 0 {
		return 0
	}
	return experience / unit
}

// CanAfford checks if the player has at least amount in their balance
func (p *Player) CanAfford(amount int64) bool {
	return p.Balance >= amount
}

// HasBadge reports whether the badge was already awarded
func (p *Player) HasBadge(badge string) bool {
	return slices.Contains(p.Badges, badge)
}

// AddBadge awards a badge, returning false if the player already had it
func (p *Player) AddBadge(badge string) bool {
	if p.HasBadge(badge) {
		return false
	}
	p.Badges = append(p.Badges, badge)
	return true
}

// ExperienceIntoLevel returns progress within the current level
func (p *Player) ExperienceIntoLevel(unit int64) int64 {
	if unit <= 0 {
		return 0
	}
	return p.Experience % unit
}
