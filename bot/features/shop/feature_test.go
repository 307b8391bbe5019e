package shop

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"arcade/models"
	"arcade/service"

	"github.com/stretchr/testify/assert"
)

func TestPurchaseErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "insufficient funds with amounts",
			err:  fmt.Errorf("failed to debit: %w", &service.InsufficientFundsError{Have: 50, Need: 1500}),
			want: "Insufficient balance: you have 50 coins, this costs 1,500.",
		},
		{
			name: "bare insufficient funds",
			err:  service.ErrInsufficientFunds,
			want: "Insufficient balance for this purchase.",
		},
		{
			name: "unknown item",
			err:  fmt.Errorf("%w: nope", service.ErrUnknownItem),
			want: "That item is not sold here. Use /shop to see the catalog.",
		},
		{
			name: "anything else",
			err:  errors.New("connection refused"),
			want: "Unable to complete the purchase. Please try again.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PurchaseErrorMessage(tt.err))
		})
	}
}

func TestBuildCatalogEmbed(t *testing.T) {
	embed := BuildCatalogEmbed(service.DefaultCatalog())
	assert.Contains(t, embed.Description, "EXP Booster (30 min)")
	assert.Contains(t, embed.Description, "500 coins, x2 for 30m")
	assert.Contains(t, embed.Description, "x1.5 for 1h 0m")
}

func TestFormatPurchase(t *testing.T) {
	item := service.DefaultCatalog()[0]
	expires := time.Date(2026, 5, 4, 12, 30, 0, 0, time.UTC)
	msg := FormatPurchase(&service.Purchase{
		Item:     item,
		Modifier: &models.Modifier{ExpiresAt: expires},
		Balance:  1500,
	})
	assert.Contains(t, msg, "EXP Booster (30 min)")
	assert.Contains(t, msg, fmt.Sprintf("<t:%d:t>", expires.Unix()))
	assert.Contains(t, msg, "1,500 coins")
}
