package games

import (
	"context"
	"fmt"
	"strconv"

	"arcade/bot/common"
	"arcade/game"
	"arcade/service"

	"github.com/bwmarrin/discordgo"
)

// Messenger is the slice of the Discord session that posts to channels
type Messenger interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// ChannelPrompter posts round progress as plain channel messages
type ChannelPrompter struct {
	messenger Messenger
}

func NewChannelPrompter(messenger Messenger) *ChannelPrompter {
	return &ChannelPrompter{messenger: messenger}
}

func (p *ChannelPrompter) AnnounceRound(ctx context.Context, channelID int64, round, total int, q game.Question) error {
	return p.send(channelID, fmt.Sprintf("**Round %d/%d**\n%s", round, total, q.Prompt))
}

func (p *ChannelPrompter) AnnounceWinner(ctx context.Context, channelID int64, q game.Question, answer *game.Answer, payout *service.Payout) error {
	msg := fmt.Sprintf("✅ %s got it in %s: **%s**", common.Mention(answer.PlayerID), common.FormatDuration(answer.Elapsed), q.Answers[0])
	if payout != nil && !payout.Final.IsZero() {
		msg += fmt.Sprintf(" (+%s coins, +%s EXP)", common.FormatBalance(payout.Final.Currency), common.FormatBalance(payout.Final.Experience))
		if payout.LevelUp != nil {
			msg += fmt.Sprintf(" ⬆️ level %d", payout.LevelUp.NewLevel)
		}
	}
	return p.send(channelID, msg)
}

func (p *ChannelPrompter) AnnounceTimeout(ctx context.Context, channelID int64, q game.Question) error {
	return p.send(channelID, fmt.Sprintf("⏰ Time's up! The answer was **%s**", q.Answers[0]))
}

func (p *ChannelPrompter) send(channelID int64, content string) error {
	_, err := p.messenger.ChannelMessageSend(strconv.FormatInt(channelID, 10), content)
	if err != nil {
		return fmt.Errorf("failed to post to channel %d: %w", channelID, err)
	}
	return nil
}
