package errors

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrUnknownChannel       = errors.New("unknown delivery channel")
	ErrEmptyPage            = errors.New("listing section not found in page")
)
