package models

import "time"

// ChannelSession marks a channel as occupied by one running game
type ChannelSession struct {
	ID        string    `json:"id"`
	ChannelID int64     `json:"channel_id"`
	GuildID   int64     `json:"guild_id"`
	Kind      string    `json:"kind"`
	StartedAt time.Time `json:"started_at"`
}
