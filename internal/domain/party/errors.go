package party

import "errors"

var (
	ErrPartyNotFound      = errors.New("party not found")
	ErrMissingBankDetails = errors.New("party is missing bank details")
)
