package payslip

import (
	"context"

	"github.com/ozziework/contracts-backend-go/internal/domain/contract"
)

type PayslipService interface {
	// RunPayroll pays out every locked, unpaid hour under the application's
	// accepted offer: computes the breakdown, renders the PDF and bank
	// instruction artifacts, and atomically marks the entries paid with the
	// completed payslip.
	RunPayroll(ctx context.Context, actor contract.Actor, applicationID string) (Response, error)
	// DownloadABA resolves the bank file URL and records that the employer
	// has actioned the instructions.
	DownloadABA(ctx context.Context, actor contract.Actor, applicationID string) (ABADownloadResponse, error)
	// ConfirmSettlement is the employer's one-way attestation that the
	// transfers were executed.
	ConfirmSettlement(ctx context.Context, actor contract.Actor, applicationID string) (Response, error)
	Get(ctx context.Context, actor contract.Actor, applicationID string) (Response, error)

	// ReconcileStale fails payroll runs stuck in processing; background job.
	ReconcileStale(ctx context.Context) error
	// MonitorOverdue marks unconfirmed instruction sets overdue and suspends
	// the delinquent employers; background job.
	MonitorOverdue(ctx context.Context) error
}
