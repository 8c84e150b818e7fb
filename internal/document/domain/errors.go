package domain

import "errors"

var (
	ErrNotIssuable = errors.New("membership_not_issuable")
	ErrNoRecipient = errors.New("membership_has_no_recipient_email")
)
