package domain

import "errors"

var (
	ErrSignatureMissing   = errors.New("signature header missing")
	ErrSignatureMalformed = errors.New("signature header malformed")
	ErrSignatureMismatch  = errors.New("signature mismatch")
	ErrSignatureExpired   = errors.New("signature timestamp outside tolerance")

	ErrMalformedMetadata = errors.New("completed event missing fulfillment metadata")

	ErrNotFound       = errors.New("not found")
	ErrRecordTerminal = errors.New("processing record already terminal")
)
