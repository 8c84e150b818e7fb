package domain

import "errors"

var (
	ErrUnknownQuote   = errors.New("payment_unknown_quote")
	ErrInvalidAmount  = errors.New("payment_invalid_amount")
	ErrAlreadyPaid    = errors.New("checkout_quote_already_paid")
	ErrMissingEventID = errors.New("payment_event_id_required")
)
