package profile

import (
	"testing"
	"time"

	"arcade/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBalanceMessage(t *testing.T) {
	player := models.NewPlayer(1, 7)
	player.Balance = 12500
	assert.Equal(t, "Ana, your current balance: **12,500 coins**", FormatBalanceMessage("Ana", player))

	player.Debt = 300
	assert.Contains(t, FormatBalanceMessage("Ana", player), "debt: **300**")
}

func TestBuildRankEmbed(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	player := models.NewPlayer(1, 7)
	player.Experience = 19250
	player.Level = 5
	player.WeeklyExperience = 400
	player.Badges = []string{"Regular"}

	modifiers := []*models.Modifier{
		{Kind: models.ModifierKindExperienceBoost, Multiplier: decimal.NewFromInt(2), ExpiresAt: now.Add(30 * time.Minute)},
		{Kind: models.ModifierKindCurrencyBoost, Multiplier: decimal.NewFromInt(3), ExpiresAt: now.Add(-time.Minute)},
	}
	anomaly := &models.Modifier{Name: "Solar flare", Kind: models.ModifierKindExperienceBoost, Multiplier: decimal.RequireFromString("1.5"), ExpiresAt: now.Add(time.Hour)}

	embed := BuildRankEmbed("Ana", player, 3500, modifiers, anomaly, now)

	fields := map[string]string{}
	for _, f := range embed.Fields {
		fields[f.Name] = f.Value
	}
	assert.Equal(t, "**5**", fields["Level"])
	assert.Contains(t, fields["Progress"], "1,750 / 3,500")
	assert.Equal(t, "Regular", fields["Badges"])

	boosts, ok := fields["Active boosts"]
	require.True(t, ok)
	assert.Contains(t, boosts, "EXP x2 (30m left)")
	assert.Contains(t, boosts, "Solar flare")
	assert.NotContains(t, boosts, "x3")
}

func TestBuildRankEmbed_NoExtras(t *testing.T) {
	embed := BuildRankEmbed("Ana", models.NewPlayer(1, 7), 3500, nil, nil, time.Now())
	assert.Len(t, embed.Fields, 4)
}
