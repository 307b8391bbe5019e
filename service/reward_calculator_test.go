package service

import (
	"testing"

	"arcade/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name       string
		base       models.Reward
		multiplier string
		expected   models.Reward
	}{
		{"identity", models.Reward{Currency: 30, Experience: 30}, "1.0", models.Reward{Currency: 30, Experience: 30}},
		{"double", models.Reward{Currency: 30, Experience: 15}, "2", models.Reward{Currency: 60, Experience: 30}},
		{"truncates toward zero", models.Reward{Currency: 3, Experience: 5}, "2.5", models.Reward{Currency: 7, Experience: 12}},
		{"product of stacked modifiers", models.Reward{Currency: 10, Experience: 10}, "3.0", models.Reward{Currency: 30, Experience: 30}},
		{"zero multiplier pays nothing", models.Reward{Currency: 30, Experience: 30}, "0", models.Reward{}},
		{"negative base clamps to zero", models.Reward{Currency: -30, Experience: 10}, "2", models.Reward{Currency: 0, Experience: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.base, decimal.RequireFromString(tt.multiplier))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestComputeSplit(t *testing.T) {
	got := ComputeSplit(models.Reward{Currency: 100, Experience: 100}, decimal.RequireFromString("1.5"), decimal.NewFromInt(2))
	assert.Equal(t, models.Reward{Currency: 150, Experience: 200}, got)
}

func TestCompute_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := models.Reward{
			Currency:   rapid.Int64Range(0, 1_000_000_000).Draw(t, "currency"),
			Experience: rapid.Int64Range(0, 1_000_000_000).Draw(t, "experience"),
		}
		// Multipliers between 0 and 100 with three decimal places
		multiplier := decimal.New(rapid.Int64Range(0, 100_000).Draw(t, "milli"), -3)
		original := base

		first := Compute(base, multiplier)
		second := Compute(base, multiplier)

		if base != original {
			t.Fatalf("base mutated: %+v != %+v", base, original)
		}
		if first != second {
			t.Fatalf("not deterministic: %+v != %+v", first, second)
		}
		if first.Currency < 0 || first.Experience < 0 {
			t.Fatalf("negative output %+v", first)
		}

		want := decimal.NewFromInt(base.Currency).Mul(multiplier).Floor().IntPart()
		if first.Currency != want {
			t.Fatalf("currency %d, want floor %d", first.Currency, want)
		}
		if multiplier.GreaterThanOrEqual(one) && first.Experience < base.Experience {
			t.Fatalf("multiplier %s reduced experience %d -> %d", multiplier, base.Experience, first.Experience)
		}
	})
}
