// Package pricing turns a stay and a property's rates into a price breakdown.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/daterange"
)

var (
	ErrInvalidRange    = daterange.ErrInvalidRange
	ErrNegativeRate    = apperror.Validation("nightly rate must not be negative")
	ErrInvalidDiscount = apperror.Validation("discount percent must be between 0 and 100")
)

type BookingType string

const (
	BookingNightly BookingType = "nightly"
	BookingMonthly BookingType = "monthly"
)

var hundred = decimal.NewFromInt(100)

// Policy holds the tunable parts of the calculation.
type Policy struct {
	// LongStayNights is the night count from which the long-stay discount applies (inclusive).
	LongStayNights int
	// ServiceFeePercent is charged on the discounted subtotal.
	ServiceFeePercent decimal.Decimal
}

// DefaultPolicy applies the discount from 30 nights and a 5% service fee.
func DefaultPolicy() Policy {
	return Policy{
		LongStayNights:    30,
		ServiceFeePercent: decimal.NewFromInt(5),
	}
}

// Input is everything the calculator needs about the property and the stay.
type Input struct {
	NightlyRate     decimal.Decimal
	Currency        string
	DiscountPercent decimal.Decimal
	Stay            daterange.Range
}

// Quote is a price breakdown. All money values are rounded to 2 places.
type Quote struct {
	NightlyRate decimal.Decimal
	Nights      int
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	ServiceFee  decimal.Decimal
	Total       decimal.Decimal
	Currency    string
	BookingType BookingType
}

// Equal reports whether two quotes carry the same amounts.
func (q Quote) Equal(o Quote) bool {
	return q.Nights == o.Nights &&
		q.Currency == o.Currency &&
		q.BookingType == o.BookingType &&
		q.NightlyRate.Equal(o.NightlyRate) &&
		q.Subtotal.Equal(o.Subtotal) &&
		q.Discount.Equal(o.Discount) &&
		q.ServiceFee.Equal(o.ServiceFee) &&
		q.Total.Equal(o.Total)
}

// Calculator is a pure price calculator bound to a policy.
type Calculator struct {
	policy Policy
}

func NewCalculator(policy Policy) *Calculator {
	if policy.LongStayNights < 1 {
		policy.LongStayNights = DefaultPolicy().LongStayNights
	}
	return &Calculator{policy: policy}
}

// Calculate produces the breakdown for in. It has no side effects.
func (c *Calculator) Calculate(in Input) (Quote, error) {
	nights := in.Stay.Nights()
	if nights <= 0 {
		return Quote{}, ErrInvalidRange
	}
	if in.NightlyRate.IsNegative() {
		return Quote{}, ErrNegativeRate
	}
	if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(hundred) {
		return Quote{}, ErrInvalidDiscount
	}

	rate := round2(in.NightlyRate)
	subtotal := rate.Mul(decimal.NewFromInt(int64(nights)))

	bookingType := BookingNightly
	discount := decimal.Zero
	if nights >= c.policy.LongStayNights {
		bookingType = BookingMonthly
		discount = round2(subtotal.Mul(in.DiscountPercent).Div(hundred))
	}

	discounted := subtotal.Sub(discount)
	fee := round2(discounted.Mul(c.policy.ServiceFeePercent).Div(hundred))
	total := round2(discounted.Add(fee))

	return Quote{
		NightlyRate: rate,
		Nights:      nights,
		Subtotal:    round2(subtotal),
		Discount:    discount,
		ServiceFee:  fee,
		Total:       total,
		Currency:    in.Currency,
		BookingType: bookingType,
	}, nil
}

// round2 rounds half away from zero to cents.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
