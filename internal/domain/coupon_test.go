package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lower case", "save10", "SAVE10"},
		{"mixed case", "sAvE10", "SAVE10"},
		{"surrounding whitespace", "  SAVE10  ", "SAVE10"},
		{"whitespace only", "   ", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCode(tt.in))
		})
	}
}

func TestCouponDiscountAmount(t *testing.T) {
	tests := []struct {
		name     string
		coupon   Coupon
		subtotal int64
		want     int64
	}{
		{
			name:     "percentage of subtotal",
			coupon:   Coupon{Kind: CouponKindPercentage, Value: 1000},
			subtotal: 20000,
			want:     2000,
		},
		{
			name:     "percentage truncates",
			coupon:   Coupon{Kind: CouponKindPercentage, Value: 1000},
			subtotal: 99,
			want:     9,
		},
		{
			name:     "fixed ignores subtotal",
			coupon:   Coupon{Kind: CouponKindFixed, Value: 500},
			subtotal: 20000,
			want:     500,
		},
		{
			name:     "fixed may exceed subtotal",
			coupon:   Coupon{Kind: CouponKindFixed, Value: 5000},
			subtotal: 100,
			want:     5000,
		},
		{
			name:     "never negative",
			coupon:   Coupon{Kind: CouponKindFixed, Value: -500},
			subtotal: 100,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.coupon.DiscountAmount(tt.subtotal))
		})
	}
}

func TestCouponWindow(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("unbounded window is always usable", func(t *testing.T) {
		c := Coupon{Active: true}
		assert.True(t, c.UsableAt(now))
	})

	t.Run("start bound is inclusive", func(t *testing.T) {
		c := Coupon{Active: true, ValidFrom: timePtr(now)}
		assert.True(t, c.Started(now))
		assert.False(t, c.Started(now.Add(-time.Second)))
	})

	t.Run("end bound is inclusive", func(t *testing.T) {
		c := Coupon{Active: true, ValidUntil: timePtr(now)}
		assert.False(t, c.Ended(now))
		assert.True(t, c.Ended(now.Add(time.Second)))
	})

	t.Run("inactive coupon is never usable", func(t *testing.T) {
		c := Coupon{Active: false}
		assert.False(t, c.UsableAt(now))
	})
}

func TestRedeemerKeyIsZero(t *testing.T) {
	assert.True(t, RedeemerKey{}.IsZero())
	assert.False(t, RedeemerKey{UserID: "u1"}.IsZero())
	assert.False(t, RedeemerKey{Email: "a@example.com"}.IsZero())
}
