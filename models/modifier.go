package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ModifierKind selects which part of a reward a modifier multiplies
type ModifierKind string

const (
	ModifierKindExperienceBoost ModifierKind = "experience_boost"
	ModifierKindCurrencyBoost   ModifierKind = "currency_boost"
	ModifierKindBoth            ModifierKind = "both"
)

// IsValid checks if the kind is one of the known kinds
func (k ModifierKind) IsValid() bool {
	switch k {
	case ModifierKindExperienceBoost, ModifierKindCurrencyBoost, ModifierKindBoth:
		return true
	}
	return false
}

// ModifierScope distinguishes purchased boosters from server-wide anomalies
type ModifierScope string

const (
	ModifierScopePersonal ModifierScope = "personal"
	ModifierScopeGlobal   ModifierScope = "global"
)

// Modifier is a time-bounded reward multiplier. PlayerID is zero for global modifiers.
type Modifier struct {
	Scope      ModifierScope   `json:"scope"`
	GuildID    int64           `json:"guild_id"`
	PlayerID   int64           `json:"player_id,omitempty"`
	Kind       ModifierKind    `json:"kind"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Name       string          `json:"name,omitempty"`
	ExpiresAt  time.Time       `json:"expires_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

// IsActive reports whether the modifier still applies at now
func (m *Modifier) IsActive(now time.Time) bool {
	return m.ExpiresAt.After(now)
}

// AppliesTo reports whether the modifier multiplies rewards of the given kind
func (m *Modifier) AppliesTo(kind ModifierKind) bool {
	return m.Kind == kind || m.Kind == ModifierKindBoth || kind == ModifierKindBoth
}

// Remaining returns how long the modifier stays active, zero once expired
func (m *Modifier) Remaining(now time.Time) time.Duration {
	if !m.IsActive(now) {
		return 0
	}
	return m.ExpiresAt.Sub(now)
}
