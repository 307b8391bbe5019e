// Package shop answers /shop and /buy.
package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"arcade/bot/common"
	"arcade/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

type Feature struct {
	shop service.ShopService
}

func New(shop service.ShopService) *Feature {
	return &Feature{shop: shop}
}

// Choices lists the catalog as /buy option choices
func (f *Feature) Choices() []*discordgo.ApplicationCommandOptionChoice {
	items := f.shop.Catalog()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(items))
	for _, item := range items {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("%s - %s coins", item.Name, common.FormatBalance(item.Price)),
			Value: item.ID,
		})
	}
	return choices
}

// HandleShop answers /shop
func (f *Feature) HandleShop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	common.RespondWithEmbed(s, i, BuildCatalogEmbed(f.shop.Catalog()), true)
}

// HandleBuy answers /buy item
func (f *Feature) HandleBuy(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, err := common.GuildAndUser(i)
	if err != nil {
		common.RespondWithError(s, i, "This command only works in a server.")
		return
	}

	var itemID string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "item" {
			itemID = opt.StringValue()
		}
	}

	purchase, err := f.shop.Purchase(ctx, guildID, userID, itemID)
	if err != nil {
		if !errors.Is(err, service.ErrInsufficientFunds) && !errors.Is(err, service.ErrUnknownItem) {
			log.Errorf("Error purchasing %s for %d in guild %d: %v", itemID, userID, guildID, err)
		}
		common.RespondWithError(s, i, PurchaseErrorMessage(err))
		return
	}

	common.RespondWithMessage(s, i, FormatPurchase(purchase), false)
}

// BuildCatalogEmbed lists the boosters for sale
func BuildCatalogEmbed(items []service.ShopItem) *discordgo.MessageEmbed {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("**%s** `%s`\n%s coins, %s for %s",
			item.Name, item.ID, common.FormatBalance(item.Price),
			common.FormatMultiplier(item.Multiplier), common.FormatDuration(item.Duration)))
	}
	return &discordgo.MessageEmbed{
		Title:       "🛒 Booster Shop",
		Color:       common.ColorPrimary,
		Description: strings.Join(lines, "\n\n"),
		Footer:      &discordgo.MessageEmbedFooter{Text: "A new booster replaces an active one of the same kind"},
	}
}

// FormatPurchase renders a successful purchase
func FormatPurchase(p *service.Purchase) string {
	return fmt.Sprintf("✅ Bought **%s**: %s until %s. Balance: **%s coins**",
		p.Item.Name, common.FormatMultiplier(p.Item.Multiplier),
		common.FormatDiscordTimestamp(p.Modifier.ExpiresAt, "t"), common.FormatBalance(p.Balance))
}

// PurchaseErrorMessage maps a purchase failure to a user-facing message
func PurchaseErrorMessage(err error) string {
	var funds *service.InsufficientFundsError
	switch {
	case errors.As(err, &funds):
		return fmt.Sprintf("Insufficient balance: you have %s coins, this costs %s.",
			common.FormatBalance(funds.Have), common.FormatBalance(funds.Need))
	case errors.Is(err, service.ErrInsufficientFunds):
		return "Insufficient balance for this purchase."
	case errors.Is(err, service.ErrUnknownItem):
		return "That item is not sold here. Use /shop to see the catalog."
	default:
		return "Unable to complete the purchase. Please try again."
	}
}
