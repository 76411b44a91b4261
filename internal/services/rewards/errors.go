package rewards

import "errors"

// Service errors
var (
	ErrAlreadyCheckedIn = errors.New("already checked in today")
	ErrAlreadyReferred  = errors.New("user has already been referred")
	ErrSelfReferral     = errors.New("cannot refer yourself")
	ErrInvalidDays      = errors.New("promotion days must be positive")
	ErrNotDepositPaid   = errors.New("merchant has no active deposit")
	ErrRewardClaimed    = errors.New("daily reward already claimed today")
)
