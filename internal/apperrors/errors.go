package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenIsUsed   = errors.New("refresh token is used")
	ErrRefreshTokenExpired  = errors.New("refresh token is expired")

	ErrInvalidAmount   = errors.New("amount must not be negative")
	ErrBillExists      = errors.New("bill already exists for this user")
	ErrBillNotFound    = errors.New("bill not found")
	ErrBillAlreadyPaid = errors.New("bill is already paid")

	// Credit entry was not PENDING at consumption time
	// The concurrent settlement lost the race, nothing was double spent
	ErrCreditConflict = errors.New("credit entry is not pending anymore")
	ErrCreditExists   = errors.New("credit entry already exists for this period")

	ErrSubscriptionExists = errors.New("subscription already exists for this consumer")

	ErrPaymentInvalid = errors.New("payment signature verification failed")
)
