package cmd

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateAnomaly(t *testing.T) {
	tests := []struct {
		name       string
		multiplier string
		duration   time.Duration
		wantErr    bool
	}{
		{"boost", "1.5", time.Hour, false},
		{"neutral multiplier", "1", time.Hour, false},
		{"below one", "0.5", time.Hour, true},
		{"just below one", "0.999", time.Hour, true},
		{"zero", "0", time.Hour, true},
		{"negative", "-2", time.Hour, true},
		{"zero duration", "2", 0, true},
		{"negative duration", "2", -time.Minute, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAnomaly(decimal.RequireFromString(tt.multiplier), tt.duration)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
