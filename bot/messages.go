package bot

import (
	"context"
	"strconv"
	"time"

	"arcade/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	guildID, err := common.ParseID(m.GuildID)
	if err != nil {
		return
	}
	channelID, err := common.ParseID(m.ChannelID)
	if err != nil {
		return
	}
	playerID, err := common.ParseID(m.Author.ID)
	if err != nil {
		return
	}

	b.onChatMessage(context.Background(), guildID, channelID, playerID, m.Content, m.Timestamp)
}

// onChatMessage feeds a guild message to any listening round, then counts it as activity
func (b *Bot) onChatMessage(ctx context.Context, guildID, channelID, playerID int64, content string, at time.Time) {
	b.announcer.NoteChannel(guildID, playerID, strconv.FormatInt(channelID, 10))

	if b.router.SubmitAnswer(channelID, playerID, content) {
		log.WithFields(log.Fields{
			"channelID": channelID,
			"playerID":  playerID,
		}).Debug("Delivered answer to round")
	}

	if _, err := b.activity.OnMessage(ctx, guildID, playerID, at); err != nil {
		log.WithFields(log.Fields{
			"guildID":  guildID,
			"playerID": playerID,
			"error":    err,
		}).Error("Failed to award chat experience")
	}
}
