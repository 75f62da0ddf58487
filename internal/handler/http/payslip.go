package http

import (
	"net/http"

	"github.com/ozziework/contracts-backend-go/internal/domain/payslip"
	"github.com/ozziework/contracts-backend-go/internal/handler/http/response"
)

// PayslipHandler defines the payslip handler interface
type PayslipHandler interface {
	RunPayroll(w http.ResponseWriter, r *http.Request)
	DownloadABA(w http.ResponseWriter, r *http.Request)
	ConfirmSettlement(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
}

type payslipHandlerImpl struct {
	payslipService payslip.PayslipService
}

// NewPayslipHandler creates a new payslip handler
func NewPayslipHandler(payslipService payslip.PayslipService) PayslipHandler {
	return &payslipHandlerImpl{payslipService: payslipService}
}

// RunPayroll executes a payroll run for the application's approved hours
func (h *payslipHandlerImpl) RunPayroll(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}
	applicationID, ok := getApplicationID(w, r)
	if !ok {
		return
	}

	result, err := h.payslipService.RunPayroll(r.Context(), actor, applicationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll run completed", result)
}

// DownloadABA resolves the bank instruction file URL
func (h *payslipHandlerImpl) DownloadABA(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}
	applicationID, ok := getApplicationID(w, r)
	if !ok {
		return
	}

	result, err := h.payslipService.DownloadABA(r.Context(), actor, applicationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ConfirmSettlement records the employer's attestation that the transfers ran
func (h *payslipHandlerImpl) ConfirmSettlement(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}
	applicationID, ok := getApplicationID(w, r)
	if !ok {
		return
	}

	result, err := h.payslipService.ConfirmSettlement(r.Context(), actor, applicationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Settlement confirmed", result)
}

// Get returns the latest payslip for the application
func (h *payslipHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}
	applicationID, ok := getApplicationID(w, r)
	if !ok {
		return
	}

	result, err := h.payslipService.Get(r.Context(), actor, applicationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
