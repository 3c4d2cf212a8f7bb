// Package rate reverses the pricing rules applied to a booking's blended
// stay total, recovering the canonical 2-guest fully-refundable nightly
// rate that makes bookings of different lengths and party sizes comparable.
package rate

import (
	"fmt"

	"github.com/stayops/revdash/internal/domain"
)

// Retention factors: the fraction of the list price kept after each
// discount tier. Dividing the observed nightly rate by the factor reverses
// the discount. Rules are evaluated top to bottom, first match wins.
//
// retentionMidNonRefLate duplicates the nights>=4 non-refundable condition
// with a different factor. It is shadowed by retentionMidNonRef and can
// never match; the pricing sheet this table was transcribed from lists both
// rows, so both are kept until revenue management confirms which one stands.
const (
	retentionLongNonRef    = 0.85 // nights>=7, non-refundable
	retentionMidNonRef     = 0.87 // nights>=4, non-refundable
	retentionLongRef       = 0.95 // nights>=7, refundable
	retentionMidNonRefLate = 0.97 // nights>=4, non-refundable (unreachable)
	retentionAnyNonRef     = 0.90 // non-refundable, any length
	retentionAnyRef        = 1.00 // refundable, any length
)

// surchargePerGuest is the per-night supplement charged for each guest
// beyond the 2-guest base rate.
const surchargePerGuest = 20.0

// Party size bounds supported by the rate-plan catalogue.
const (
	MinPartySize = 2
	MaxPartySize = 16
)

// Normalize converts a booking's gross stay amount into the canonical
// 2-guest refundable nightly rate: raw nightly rate, discount reversal,
// then removal of the extra-guest surcharge.
func Normalize(gross float64, nights, partySize int, nonRefundable bool) (float64, error) {
	if nights < 1 {
		return 0, fmt.Errorf("%w: nights %d, need at least 1", domain.ErrInvalidBooking, nights)
	}
	if partySize < MinPartySize || partySize > MaxPartySize {
		return 0, fmt.Errorf("%w: party size %d outside [%d,%d]", domain.ErrInvalidBooking, partySize, MinPartySize, MaxPartySize)
	}

	nightly := gross / float64(nights)
	nightly /= retention(nights, nonRefundable)
	nightly -= surchargePerGuest * float64(partySize-MinPartySize)

	return nightly, nil
}

// NormalizeBooking fills b.NormalizedRate from its own fields.
func NormalizeBooking(b *domain.Booking) error {
	r, err := Normalize(b.GrossStay, b.Nights, b.PartySize, b.NonRefundable)
	if err != nil {
		return fmt.Errorf("booking %s: %w", b.ID, err)
	}
	b.NormalizedRate = r
	return nil
}

func retention(nights int, nonRefundable bool) float64 {
	switch {
	case nights >= 7 && nonRefundable:
		return retentionLongNonRef
	case nights >= 4 && nonRefundable:
		return retentionMidNonRef
	case nights >= 7 && !nonRefundable:
		return retentionLongRef
	case nights >= 4 && nonRefundable:
		return retentionMidNonRefLate // unreachable, see constant doc
	case nonRefundable:
		return retentionAnyNonRef
	default:
		return retentionAnyRef
	}
}
