package offer

import "context"

type Repository interface {
	GetByApplicationID(ctx context.Context, applicationID string) (Offer, error)
	// Create inserts the offer; the UNIQUE(application_id) constraint backs
	// the one-offer-per-application invariant.
	Create(ctx context.Context, o Offer) (Offer, error)
	// UpdateTerms replaces the editable terms of a pending offer.
	UpdateTerms(ctx context.Context, o Offer) (Offer, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	// JobHasActiveOffer reports whether the job already has a pending or
	// accepted offer on a different application.
	JobHasActiveOffer(ctx context.Context, jobID, excludeApplicationID string) (bool, error)
}
