// Package fare computes booking totals in integer paise so that repeated
// quotes for the same inputs always agree to the displayed two decimals.
package fare

import "fmt"

// TaxPercent is the GST rate applied to the base amount.
const TaxPercent = 5

// Breakdown is a fully computed fare quote. All amounts are paise.
type Breakdown struct {
	Base       int64
	Tax        int64
	ServiceFee int64
	Discount   int64
	Final      int64
}

// Quote computes the payable total for a base amount. discountPercent is 0
// when no valid coupon was applied.
func Quote(base, serviceFee int64, discountPercent int) Breakdown {
	if base < 0 {
		base = 0
	}
	if serviceFee < 0 {
		serviceFee = 0
	}
	if discountPercent < 0 {
		discountPercent = 0
	}
	if discountPercent > 100 {
		discountPercent = 100
	}

	tax := percentOf(base, TaxPercent)
	discount := percentOf(base, discountPercent)

	return Breakdown{
		Base:       base,
		Tax:        tax,
		ServiceFee: serviceFee,
		Discount:   discount,
		Final:      base + tax + serviceFee - discount,
	}
}

// percentOf rounds half-up to the nearest paisa.
func percentOf(amount int64, percent int) int64 {
	return (amount*int64(percent) + 50) / 100
}

// FromRupees converts a backend float amount to paise, rounding half-up.
func FromRupees(amount float64) int64 {
	if amount < 0 {
		return 0
	}
	return int64(amount*100 + 0.5)
}

// Rupees converts paise back to the float the backend expects on submission.
func Rupees(paise int64) float64 {
	return float64(paise) / 100
}

// Format renders paise as a fixed two-decimal rupee string.
func Format(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	return fmt.Sprintf("%s%d.%02d", sign, paise/100, paise%100)
}
