package domain

import "errors"

var (
	// ErrInvalidAmount reports a negative or non-finite money amount.
	ErrInvalidAmount = errors.New("invalid money amount")

	// ErrMalformedSource reports a product source record without an
	// identifying key.
	ErrMalformedSource = errors.New("malformed source record")

	// ErrInvalidQuantity reports a quantity update outside the allowed
	// per-line range.
	ErrInvalidQuantity = errors.New("quantity out of range")

	// ErrLineItemNotFound reports an update targeting an absent line item.
	ErrLineItemNotFound = errors.New("line item not found")

	// ErrPersistenceUnavailable reports that the storage medium rejected
	// a cart write. The in-memory cart keeps the mutation.
	ErrPersistenceUnavailable = errors.New("cart persistence unavailable")
)
