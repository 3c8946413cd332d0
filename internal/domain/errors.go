package domain

import "errors"

var (
	// ErrTokenNotFound is returned when a token is not found
	ErrTokenNotFound = errors.New("token not found")

	// ErrNotOwner is returned when the caller is not allowed to act on behalf of the owner
	ErrNotOwner = errors.New("caller is not the owner")

	// ErrInvalidPrice is returned when a price is zero or negative where a positive price is required
	ErrInvalidPrice = errors.New("invalid price")

	// ErrAlreadyListed is returned when the token is already listed for sale
	ErrAlreadyListed = errors.New("artwork already listed for sale")

	// ErrNotListed is returned when the token is not listed for sale
	ErrNotListed = errors.New("artwork not listed for sale")

	// ErrAuctionAlreadyActive is returned when the token already has an active auction
	ErrAuctionAlreadyActive = errors.New("auction already active")

	// ErrNoActiveAuction is returned when the token has no active auction
	ErrNoActiveAuction = errors.New("no active auction")

	// ErrAuctionExpired is returned when a bid arrives at or after the auction end time
	ErrAuctionExpired = errors.New("auction expired")

	// ErrAuctionNotExpired is returned when an auction is ended before its end time
	ErrAuctionNotExpired = errors.New("auction not yet expired")

	// ErrBidTooLow is returned when a bid is below the minimum accepted bid
	ErrBidTooLow = errors.New("bid too low")

	// ErrBidderIsSeller is returned when the seller bids on their own auction
	ErrBidderIsSeller = errors.New("seller cannot bid on own auction")

	// ErrAuctionHasBids is returned when cancelling an auction that already received a bid
	ErrAuctionHasBids = errors.New("auction has bids")

	// ErrRoyaltyOutOfRange is returned when a royalty exceeds MAX_ROYALTY
	ErrRoyaltyOutOfRange = errors.New("royalty out of range")

	// ErrDurationOutOfRange is returned when an auction duration is outside 1-168 hours
	ErrDurationOutOfRange = errors.New("auction duration out of range")

	// ErrInsufficientPayment is returned when the paid amount does not match the listing price
	ErrInsufficientPayment = errors.New("insufficient payment")

	// ErrBuyerIsOwner is returned when the owner tries to buy their own artwork
	ErrBuyerIsOwner = errors.New("owner cannot buy own artwork")

	// ErrFeesExceedBase is returned when platform fee and royalty together exceed PERCENTAGE_BASE
	ErrFeesExceedBase = errors.New("fees exceed percentage base")

	// ErrFeeOutOfRange is returned when the platform fee exceeds MAX_PLATFORM_FEE
	ErrFeeOutOfRange = errors.New("platform fee out of range")

	// ErrNothingToWithdraw is returned when a withdrawal finds no funds
	ErrNothingToWithdraw = errors.New("nothing to withdraw")

	// ErrInvalidAddress is returned when an identity is not a hex address
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidTokenURI is returned when a token URI is empty
	ErrInvalidTokenURI = errors.New("invalid token URI")

	// ErrPayoutNotFound is returned when a payout is not found
	ErrPayoutNotFound = errors.New("payout not found")

	// ErrPayoutStateChanged is returned when a payout left the expected status concurrently
	ErrPayoutStateChanged = errors.New("payout state changed")
)
