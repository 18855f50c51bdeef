package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWarranty_IsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	w := Warranty{EndDate: now.AddDate(1, 0, 0)}
	assert.False(t, w.IsExpired(now))

	//end_dateちょうどはまだ有効
	w.EndDate = now
	assert.False(t, w.IsExpired(now))

	w.EndDate = now.Add(-time.Second)
	assert.True(t, w.IsExpired(now))
}

func TestWarranty_CanBeClaimed(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	future := now.AddDate(1, 0, 0)
	past := now.AddDate(-1, 0, 0)

	assert.True(t, Warranty{Status: WarrantyStatusActive, EndDate: future}.CanBeClaimed(now))

	assert.False(t, Warranty{Status: WarrantyStatusActive, EndDate: past}.CanBeClaimed(now))
	assert.False(t, Warranty{Status: WarrantyStatusClaimed, EndDate: future}.CanBeClaimed(now))
	assert.False(t, Warranty{Status: WarrantyStatusExpired, EndDate: future}.CanBeClaimed(now))
}

func TestCanTransitionClaim(t *testing.T) {
	cases := []struct {
		from WarrantyClaimStatus
		to   WarrantyClaimStatus
		want bool
	}{
		{WarrantyClaimStatusSubmitted, WarrantyClaimStatusUnderReview, true},
		{WarrantyClaimStatusSubmitted, WarrantyClaimStatusRejected, true},
		{WarrantyClaimStatusSubmitted, WarrantyClaimStatusApproved, false},
		{WarrantyClaimStatusSubmitted, WarrantyClaimStatusResolved, false},

		{WarrantyClaimStatusUnderReview, WarrantyClaimStatusApproved, true},
		{WarrantyClaimStatusUnderReview, WarrantyClaimStatusRejected, true},
		{WarrantyClaimStatusUnderReview, WarrantyClaimStatusSubmitted, false},

		{WarrantyClaimStatusApproved, WarrantyClaimStatusResolved, true},
		{WarrantyClaimStatusApproved, WarrantyClaimStatusRejected, false},

		{WarrantyClaimStatusRejected, WarrantyClaimStatusResolved, true},

		//RESOLVEDは終端
		{WarrantyClaimStatusResolved, WarrantyClaimStatusSubmitted, false},
		{WarrantyClaimStatusResolved, WarrantyClaimStatusUnderReview, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, CanTransitionClaim(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}
