package fare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteNoCoupon(t *testing.T) {
	// 1000.00 base, 5% tax, 25.00 fee => 1075.00
	b := Quote(100000, 2500, 0)

	assert.Equal(t, int64(100000), b.Base)
	assert.Equal(t, int64(5000), b.Tax)
	assert.Equal(t, int64(2500), b.ServiceFee)
	assert.Equal(t, int64(0), b.Discount)
	assert.Equal(t, int64(107500), b.Final)
}

func TestQuoteWithCoupon(t *testing.T) {
	// SAVE10 => 10% of base, final 975.00
	b := Quote(100000, 2500, 10)

	assert.Equal(t, int64(10000), b.Discount)
	assert.Equal(t, int64(97500), b.Final)
}

func TestQuoteRounding(t *testing.T) {
	// 333.33 base: 5% = 16.6665 rounds to 16.67
	b := Quote(33333, 2500, 0)
	assert.Equal(t, int64(1667), b.Tax)
}

func TestQuoteClampsInputs(t *testing.T) {
	b := Quote(-500, -10, 150)
	assert.Equal(t, int64(0), b.Base)
	assert.Equal(t, int64(0), b.ServiceFee)
	assert.Equal(t, int64(0), b.Discount)
	assert.Equal(t, int64(0), b.Final)
}

func TestFromRupees(t *testing.T) {
	assert.Equal(t, int64(107500), FromRupees(1075.00))
	assert.Equal(t, int64(1234), FromRupees(12.34))
	assert.Equal(t, int64(0), FromRupees(-1))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1075.00", Format(107500))
	assert.Equal(t, "0.05", Format(5))
	assert.Equal(t, "-12.30", Format(-1230))
}
