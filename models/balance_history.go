package models

import (
	"time"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeReward      TransactionType = "reward"
	TransactionTypePurchase    TransactionType = "purchase"
	TransactionTypeAdminAdjust TransactionType = "admin_adjust"
)

// BalanceHistory represents a historical balance change
type BalanceHistory struct {
	ID                  int64           `db:"id" json:"id"`
	GuildID             int64           `db:"guild_id" json:"guild_id"`
	PlayerID            int64           `db:"player_id" json:"player_id"`
	BalanceBefore       int64           `db:"balance_before" json:"balance_before"`
	BalanceAfter        int64           `db:"balance_after" json:"balance_after"`
	ChangeAmount        int64           `db:"change_amount" json:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type" json:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata" json:"transaction_metadata,omitempty"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
}
