package timesheet

import (
	"context"

	"github.com/ozziework/contracts-backend-go/internal/domain/contract"
)

type TimesheetService interface {
	// UpsertEntries replaces the unlocked tail of the timesheet. Rows
	// colliding with a locked date are dropped, never applied.
	UpsertEntries(ctx context.Context, actor contract.Actor, applicationID string, req UpsertRequest) (Response, error)
	// Submit moves the unlocked tail toward employer approval.
	Submit(ctx context.Context, actor contract.Actor, applicationID string) (Response, error)
	// Approve locks every current entry and stamps the approval.
	Approve(ctx context.Context, actor contract.Actor, applicationID string, req ApproveRequest) (Response, error)
	Get(ctx context.Context, actor contract.Actor, applicationID string) (Response, error)
}
