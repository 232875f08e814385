package paylink

import "errors"

// Sentinel errors for the payment link service layer.
var (
	ErrNotFound            = errors.New("payment link not found")
	ErrRedirectURLRequired = errors.New("redirect url is required")
	ErrDuplicateID         = errors.New("payment link id already exists")
)
