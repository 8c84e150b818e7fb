package domain

import "errors"

var (
	ErrNotFound            = errors.New("quote: not found")
	ErrScreeningIncomplete = errors.New("quote: medical screening incomplete")
	ErrMemberDeclined      = errors.New("quote: a member was declined cover")
	ErrInvalidDayCount     = errors.New("quote: invalid trip dates for duration")
	ErrUnknownCurrency     = errors.New("quote: no exchange rate for currency")
)
