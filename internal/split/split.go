// Package split computes how a sale amount is divided between the
// platform, the article's author and an optional affiliate referrer.
package split

import (
	"errors"
	"fmt"
)

const (
	MinAffiliateRate  = 0
	MaxAffiliateRate  = 50
	AffiliateRateStep = 5
)

var (
	ErrNonPositiveAmount = errors.New("amount must be a positive integer")
	ErrBadFeePercent     = errors.New("fee percent must be between 0 and 100")
	ErrBadAffiliateRate  = errors.New("affiliate rate out of range")
)

// AffiliateConfig is the article's affiliate setup snapshotted at checkout.
type AffiliateConfig struct {
	Enabled    bool
	Rate       int
	ReferrerID *int
}

type Split struct {
	Amount          int64
	PlatformFee     int64
	AuthorAmount    int64
	AffiliateAmount int64
}

// Calc splits amount into platform fee, affiliate reward and author net.
// All rounding floors toward zero, so the author absorbs every rounding
// remainder. That allocation is a fixed contract: changing it changes who
// bears fractional-unit losses.
func Calc(amount int64, feePercent int, aff AffiliateConfig, authorID int) (Split, error) {
	if amount <= 0 {
		return Split{}, ErrNonPositiveAmount
	}
	if feePercent < 0 || feePercent > 100 {
		return Split{}, ErrBadFeePercent
	}
	if aff.Rate < MinAffiliateRate || aff.Rate > MaxAffiliateRate || aff.Rate%AffiliateRateStep != 0 {
		return Split{}, ErrBadAffiliateRate
	}

	platformFee := amount * int64(feePercent) / 100

	var affiliateAmount int64
	if aff.Enabled && aff.Rate > 0 && aff.ReferrerID != nil && *aff.ReferrerID != authorID {
		affiliateAmount = (amount - platformFee) * int64(aff.Rate) / 100
	}

	s := Split{
		Amount:          amount,
		PlatformFee:     platformFee,
		AuthorAmount:    amount - platformFee - affiliateAmount,
		AffiliateAmount: affiliateAmount,
	}
	if err := s.Validate(); err != nil {
		return Split{}, err
	}
	return s, nil
}

// Validate re-checks the conservation invariant. A failure here means a
// calculator defect and must halt processing of the affected order.
func (s Split) Validate() error {
	if s.PlatformFee < 0 || s.AuthorAmount < 0 || s.AffiliateAmount < 0 {
		return fmt.Errorf("split has negative component: fee=%d author=%d affiliate=%d",
			s.PlatformFee, s.AuthorAmount, s.AffiliateAmount)
	}
	if s.PlatformFee+s.AuthorAmount+s.AffiliateAmount != s.Amount {
		return fmt.Errorf("split does not balance: %d+%d+%d != %d",
			s.PlatformFee, s.AuthorAmount, s.AffiliateAmount, s.Amount)
	}
	return nil
}
