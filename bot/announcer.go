package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"arcade/bot/common"
	"arcade/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// DiscordActions is the slice of the Discord session the announcer needs
type DiscordActions interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

type playerKey struct {
	guildID  int64
	playerID int64
}

// Announcer renders core events: level-ups with role grants and session endings
type Announcer struct {
	discord           DiscordActions
	announceChannelID string
	levelRoles        map[int64]string

	mu          sync.Mutex
	lastChannel map[playerKey]string
}

func NewAnnouncer(discord DiscordActions, announceChannelID string, levelRoles map[int64]string) *Announcer {
	return &Announcer{
		discord:           discord,
		announceChannelID: announceChannelID,
		levelRoles:        levelRoles,
		lastChannel:       make(map[playerKey]string),
	}
}

// Register subscribes the announcer to the bus
func (a *Announcer) Register(bus *events.Bus) {
	bus.Subscribe(events.EventTypeLevelUp, a.OnLevelUp)
	bus.Subscribe(events.EventTypeSessionEnded, a.OnSessionEnded)
}

// NoteChannel remembers where a player last spoke, the fallback announcement channel
func (a *Announcer) NoteChannel(guildID, playerID int64, channelID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastChannel[playerKey{guildID, playerID}] = channelID
}

func (a *Announcer) channelFor(guildID, playerID int64) string {
	if a.announceChannelID != "" {
		return a.announceChannelID
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastChannel[playerKey{guildID, playerID}]
}

func (a *Announcer) OnLevelUp(ctx context.Context, event events.Event) {
	e, ok := event.(events.LevelUpEvent)
	if !ok {
		return
	}

	guildID := strconv.FormatInt(e.GuildID, 10)
	userID := strconv.FormatInt(e.PlayerID, 10)
	for _, roleID := range RolesEarned(a.levelRoles, e.OldLevel, e.NewLevel) {
		if err := a.discord.GuildMemberRoleAdd(guildID, userID, roleID); err != nil {
			log.WithFields(log.Fields{
				"guildID":  e.GuildID,
				"playerID": e.PlayerID,
				"roleID":   roleID,
				"error":    err,
			}).Error("Failed to grant level role")
		}
	}

	channelID := a.channelFor(e.GuildID, e.PlayerID)
	if channelID == "" {
		log.WithField("playerID", e.PlayerID).Debug("No channel for level-up announcement")
		return
	}
	if _, err := a.discord.ChannelMessageSend(channelID, FormatLevelUp(e)); err != nil {
		log.WithError(err).WithField("channelID", channelID).Error("Failed to announce level-up")
	}
}

func (a *Announcer) OnSessionEnded(ctx context.Context, event events.Event) {
	e, ok := event.(events.SessionEndedEvent)
	if !ok {
		return
	}

	msg := fmt.Sprintf("📣 The **%s** session has ended after %s. Thanks for playing! Try /leaderboard to see where you stand.",
		e.Kind, common.FormatDuration(e.Duration))
	if _, err := a.discord.ChannelMessageSend(strconv.FormatInt(e.ChannelID, 10), msg); err != nil {
		log.WithError(err).WithField("channelID", e.ChannelID).Error("Failed to post session closing message")
	}
}

// FormatLevelUp renders a level-up announcement
func FormatLevelUp(e events.LevelUpEvent) string {
	msg := fmt.Sprintf("🎉 %s reached **level %d**!", common.Mention(e.PlayerID), e.NewLevel)
	if len(e.NewBadges) > 0 {
		msg += fmt.Sprintf(" New badge: **%s**", strings.Join(e.NewBadges, "**, **"))
	}
	return msg
}

// RolesEarned lists the roles for levels in (oldLevel, newLevel], lowest level first
func RolesEarned(levelRoles map[int64]string, oldLevel, newLevel int64) []string {
	levels := make([]int64, 0, len(levelRoles))
	for level := range levelRoles {
		if level > oldLevel && level <= newLevel {
			levels = append(levels, level)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	roles := make([]string, 0, len(levels))
	for _, level := range levels {
		roles = append(roles, levelRoles[level])
	}
	return roles
}
