package service

import (
	"arcade/models"

	"github.com/shopspring/decimal"
)

// Compute scales both fields of base by multiplier, truncating toward zero.
// Negative inputs and multipliers yield zero fields.
func Compute(base models.Reward, multiplier decimal.Decimal) models.Reward {
	return ComputeSplit(base, multiplier, multiplier)
}

// ComputeSplit scales currency and experience by separate multipliers
func ComputeSplit(base models.Reward, currencyMultiplier, experienceMultiplier decimal.Decimal) models.Reward {
	return models.Reward{
		Currency:   scale(base.Currency, currencyMultiplier),
		Experience: scale(base.Experience, experienceMultiplier),
	}
}

func scale(amount int64, multiplier decimal.Decimal) int64 {
	if amount <= 0 || multiplier.Sign() <= 0 {
		return 0
	}
	return decimal.NewFromInt(amount).Mul(multiplier).Truncate(0).IntPart()
}
