package http

import (
	"encoding/json"
	"net/http"

	"github.com/ozziework/contracts-backend-go/internal/domain/timesheet"
	"github.com/ozziework/contracts-backend-go/internal/handler/http/response"
)

// TimesheetHandler defines the timesheet handler interface
type TimesheetHandler interface {
	Upsert(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
}

type timesheetHandlerImpl struct {
	timesheetService timesheet.TimesheetService
}

// NewTimesheetHandler creates a new timesheet handler
func NewTimesheetHandler(timesheetService timesheet.TimesheetService) TimesheetHandler {
	return &timesheetHandlerImpl{timesheetService: timesheetService}
}

// Upsert replaces the unlocked tail of the timesheet
func (h *timesheetHandlerImpl) Upsert(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}
	applicationID, ok := getApplicationID(w, r)
	if !ok {
		return
	}

	var req timesheet.UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.timesheetService.UpsertEntries(r.Context(), actor, applicationID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Submit moves the unlocked tail toward approval
func (h *timesheetHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}
	applicationID, ok := getApplicationID(w, r)
	if !ok {
		return
	}

	result, err := h.timesheetService.Submit(r.Context(), actor, applicationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Approve locks every entry and stamps the approval
func (h *timesheetHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}
	applicationID, ok := getApplicationID(w, r)
	if !ok {
		return
	}

	var req timesheet.ApproveRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body", nil)
			return
		}
	}

	result, err := h.timesheetService.Approve(r.Context(), actor, applicationID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get returns the timesheet with its entries
func (h *timesheetHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}
	applicationID, ok := getApplicationID(w, r)
	if !ok {
		return
	}

	result, err := h.timesheetService.Get(r.Context(), actor, applicationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
