package offer

import (
	"context"

	"github.com/ozziework/contracts-backend-go/internal/domain/contract"
)

type OfferService interface {
	// CreateOrUpdate sends a new offer or, while the existing offer is still
	// pending, replaces its terms.
	CreateOrUpdate(ctx context.Context, actor contract.Actor, applicationID string, req TermsRequest) (Response, error)
	// Respond records the traveller's accept/decline decision; accepting
	// creates the empty draft timesheet.
	Respond(ctx context.Context, actor contract.Actor, applicationID string, req RespondRequest) (Response, error)
	// Cancel withdraws a pending or accepted offer, unless hours have
	// already been approved under it.
	Cancel(ctx context.Context, actor contract.Actor, applicationID string) (Response, error)
	Get(ctx context.Context, actor contract.Actor, applicationID string) (Response, error)
}
