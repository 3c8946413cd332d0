package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeBadRequest       ErrorCode = "bad_request"
	ErrCodeNotFound         ErrorCode = "not_found"
	ErrCodeValidationFailed ErrorCode = "validation_failed"
	ErrCodeUnauthorized     ErrorCode = "unauthorized"
	ErrCodeForbidden        ErrorCode = "forbidden"
	ErrCodeTooManyRequests  ErrorCode = "too_many_requests"

	// Server errors (5xx)
	ErrCodeInternalError ErrorCode = "internal_error"
	ErrCodeServiceError  ErrorCode = "service_error"

	// Marketplace rule violations
	ErrCodeTokenNotFound        ErrorCode = "token_not_found"
	ErrCodeNotOwner             ErrorCode = "not_owner"
	ErrCodeInvalidPrice         ErrorCode = "invalid_price"
	ErrCodeAlreadyListed        ErrorCode = "already_listed"
	ErrCodeNotListed            ErrorCode = "not_listed"
	ErrCodeAuctionAlreadyActive ErrorCode = "auction_already_active"
	ErrCodeNoActiveAuction      ErrorCode = "no_active_auction"
	ErrCodeAuctionExpired       ErrorCode = "auction_expired"
	ErrCodeAuctionNotExpired    ErrorCode = "auction_not_expired"
	ErrCodeBidTooLow            ErrorCode = "bid_too_low"
	ErrCodeBidderIsSeller       ErrorCode = "bidder_is_seller"
	ErrCodeAuctionHasBids       ErrorCode = "auction_has_bids"
	ErrCodeRoyaltyOutOfRange    ErrorCode = "royalty_out_of_range"
	ErrCodeDurationOutOfRange   ErrorCode = "duration_out_of_range"
	ErrCodeInsufficientPayment  ErrorCode = "insufficient_payment"
	ErrCodeBuyerIsOwner         ErrorCode = "buyer_is_owner"
	ErrCodeFeesExceedBase       ErrorCode = "fees_exceed_base"
	ErrCodeFeeOutOfRange        ErrorCode = "fee_out_of_range"
	ErrCodeNothingToWithdraw    ErrorCode = "nothing_to_withdraw"
	ErrCodeInvalidAddress       ErrorCode = "invalid_address"
	ErrCodeInvalidTokenURI      ErrorCode = "invalid_token_uri"
	ErrCodePayoutNotFound       ErrorCode = "payout_not_found"
)

// APIError represents a structured API error that carries error code and details
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	jsonErr, _ := json.Marshal(e)
	return string(jsonErr)
}

// Error constructors for common error types
func NewBadRequestError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewNotFoundError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewValidationError(details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Message: "Validation failed",
		Details: strings.Join(details, ", "),
	}
}

func NewUnauthorizedError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewForbiddenError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeForbidden,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewTooManyRequestsError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeTooManyRequests,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewInternalError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeInternalError,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewServiceError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeServiceError,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

type domainMapping struct {
	err    error
	code   ErrorCode
	status int
}

// domainErrors maps marketplace rule violations to their code and HTTP status:
// 403 for identity checks, 409 for state conflicts and 422 for bad values
var domainErrors = []domainMapping{
	{domain.ErrTokenNotFound, ErrCodeTokenNotFound, http.StatusNotFound},
	{domain.ErrPayoutNotFound, ErrCodePayoutNotFound, http.StatusNotFound},
	{domain.ErrNotOwner, ErrCodeNotOwner, http.StatusForbidden},
	{domain.ErrBidderIsSeller, ErrCodeBidderIsSeller, http.StatusForbidden},
	{domain.ErrBuyerIsOwner, ErrCodeBuyerIsOwner, http.StatusForbidden},
	{domain.ErrAlreadyListed, ErrCodeAlreadyListed, http.StatusConflict},
	{domain.ErrNotListed, ErrCodeNotListed, http.StatusConflict},
	{domain.ErrAuctionAlreadyActive, ErrCodeAuctionAlreadyActive, http.StatusConflict},
	{domain.ErrNoActiveAuction, ErrCodeNoActiveAuction, http.StatusConflict},
	{domain.ErrAuctionExpired, ErrCodeAuctionExpired, http.StatusConflict},
	{domain.ErrAuctionNotExpired, ErrCodeAuctionNotExpired, http.StatusConflict},
	{domain.ErrAuctionHasBids, ErrCodeAuctionHasBids, http.StatusConflict},
	{domain.ErrNothingToWithdraw, ErrCodeNothingToWithdraw, http.StatusConflict},
	{domain.ErrInvalidPrice, ErrCodeInvalidPrice, http.StatusUnprocessableEntity},
	{domain.ErrBidTooLow, ErrCodeBidTooLow, http.StatusUnprocessableEntity},
	{domain.ErrRoyaltyOutOfRange, ErrCodeRoyaltyOutOfRange, http.StatusUnprocessableEntity},
	{domain.ErrDurationOutOfRange, ErrCodeDurationOutOfRange, http.StatusUnprocessableEntity},
	{domain.ErrInsufficientPayment, ErrCodeInsufficientPayment, http.StatusUnprocessableEntity},
	{domain.ErrFeesExceedBase, ErrCodeFeesExceedBase, http.StatusUnprocessableEntity},
	{domain.ErrFeeOutOfRange, ErrCodeFeeOutOfRange, http.StatusUnprocessableEntity},
	{domain.ErrInvalidAddress, ErrCodeInvalidAddress, http.StatusUnprocessableEntity},
	{domain.ErrInvalidTokenURI, ErrCodeInvalidTokenURI, http.StatusUnprocessableEntity},
}

// FromDomainError converts a marketplace error into its HTTP status and API error.
// ok is false for errors that are not rule violations.
func FromDomainError(err error) (status int, apiErr *APIError, ok bool) {
	for _, m := range domainErrors {
		if stderrors.Is(err, m.err) {
			return m.status, &APIError{Code: m.code, Message: err.Error()}, true
		}
	}
	return http.StatusInternalServerError, nil, false
}
