package repositories

import "errors"

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrMerchantNotFound    = errors.New("merchant not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrSettingsNotFound    = errors.New("platform settings not found")
	ErrDuplicatePending    = errors.New("pending application already exists")
	ErrAlreadyCheckedIn    = errors.New("already checked in today")
	ErrAlreadyReferred     = errors.New("invitee has already been referred")
	ErrAlreadyRevealed     = errors.New("contact already revealed today")
	ErrDuplicateEmail      = errors.New("email already registered")
)
