package common

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// RespondWithMessage sends a plain message as the interaction response
func RespondWithMessage(s *discordgo.Session, i *discordgo.InteractionCreate, message string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: message}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		log.Errorf("Error sending response: %v", err)
	}
}

// RespondWithError sends an ephemeral error message
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	RespondWithMessage(s, i, "❌ "+message, true)
}

// RespondWithEmbed sends an embed as an interaction response
func RespondWithEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		log.Errorf("Error sending embed response: %v", err)
	}
}

// InvokerID returns the numeric ID of the user who ran the command
func InvokerID(i *discordgo.InteractionCreate) (int64, error) {
	var userID string
	switch {
	case i.Member != nil && i.Member.User != nil:
		userID = i.Member.User.ID
	case i.User != nil:
		userID = i.User.ID
	default:
		return 0, fmt.Errorf("interaction has no user")
	}
	return ParseID(userID)
}

// ParseID converts a Discord snowflake to int64
func ParseID(id string) (int64, error) {
	v, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid discord id %q: %w", id, err)
	}
	return v, nil
}

// GuildAndUser parses the guild and invoking user of a guild command
func GuildAndUser(i *discordgo.InteractionCreate) (guildID, userID int64, err error) {
	if i.GuildID == "" {
		return 0, 0, fmt.Errorf("command used outside a guild")
	}
	guildID, err = ParseID(i.GuildID)
	if err != nil {
		return 0, 0, err
	}
	userID, err = InvokerID(i)
	if err != nil {
		return 0, 0, err
	}
	return guildID, userID, nil
}

// GetDisplayName returns the server-specific display name for a user.
// Falls back to the username, then to "Unknown".
func GetDisplayName(s *discordgo.Session, guildID, userID string) string {
	member, err := s.GuildMember(guildID, userID)
	if err == nil && member != nil {
		if member.Nick != "" {
			return member.Nick
		}
		if member.User != nil {
			if member.User.GlobalName != "" {
				return member.User.GlobalName
			}
			return member.User.Username
		}
	}

	user, err := s.User(userID)
	if err == nil && user != nil {
		return user.Username
	}
	return "Unknown"
}

// GetDisplayNameInt64 is a convenience wrapper that accepts int64 IDs
func GetDisplayNameInt64(s *discordgo.Session, guildID, userID int64) string {
	return GetDisplayName(s, strconv.FormatInt(guildID, 10), strconv.FormatInt(userID, 10))
}
