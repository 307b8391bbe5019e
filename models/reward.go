package models

// Reward is a currency and experience amount paid for a game outcome
type Reward struct {
	Currency   int64 `json:"currency"`
	Experience int64 `json:"experience"`
}

// IsZero reports whether the reward pays nothing
func (r Reward) IsZero() bool {
	return r.Currency == 0 && r.Experience == 0
}
