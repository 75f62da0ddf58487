package offer

import "errors"

var (
	ErrOfferNotFound     = errors.New("no offer exists for this application")
	ErrOfferNotPending   = errors.New("offer is no longer pending")
	ErrOfferNotAccepted  = errors.New("no accepted offer exists for this application")
	ErrOfferLocked       = errors.New("offer has approved hours and cannot be cancelled")
	ErrInvalidDecision   = errors.New("decision must be accepted or declined")
	ErrJobHasActiveOffer = errors.New("another active offer already exists for this job")
)
