package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaxAmount(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		rateBps  int64
		want     int64
	}{
		{"sixteen percent", 10000, 1600, 1600},
		{"zero rate", 10000, 0, 0},
		{"zero subtotal", 0, 1600, 0},
		{"truncates toward zero", 99, 1600, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TaxAmount(tt.subtotal, tt.rateBps))
		})
	}
}

func TestTotal(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		rateBps  int64
		shipping int64
		discount int64
		want     int64
	}{
		{"subtotal with tax and shipping", 10000, 1600, 500, 0, 12100},
		{"discount reduces total", 10000, 1600, 500, 2000, 10100},
		{"discount may push total negative", 10000, 1600, 500, 15000, -2900},
		{"everything zero", 0, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Total(tt.subtotal, tt.rateBps, tt.shipping, tt.discount))
		})
	}
}
