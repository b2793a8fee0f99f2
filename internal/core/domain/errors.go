package domain

import "errors"

// Sentinel errors shared across the service and transport layers. The HTTP
// error handler maps each to a deterministic status code.
var (
	// Listing errors
	ErrListingNotFound = errors.New("listing not found")
	ErrListingSold     = errors.New("listing already sold")
	ErrNotOwner        = errors.New("requester does not own this listing")
	ErrNoBids          = errors.New("listing has no bids")

	// Bid errors
	ErrSelfBid         = errors.New("owner cannot bid on own listing")
	ErrBidNotPositive  = errors.New("bid amount must be greater than 0")
	ErrBidBelowMinimum = errors.New("bid must exceed the minimum bid")
	ErrBidTooLow       = errors.New("bid must exceed the current highest bid")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Validation
	ErrInvalidInput = errors.New("invalid input")

	// Storage
	ErrVersionConflict = errors.New("listing was modified concurrently")
	ErrImageNotFound   = errors.New("image not found")
)
