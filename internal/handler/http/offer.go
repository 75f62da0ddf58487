package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ozziework/contracts-backend-go/internal/domain/contract"
	"github.com/ozziework/contracts-backend-go/internal/domain/offer"
	"github.com/ozziework/contracts-backend-go/internal/handler/http/middleware"
	"github.com/ozziework/contracts-backend-go/internal/handler/http/response"
)

// OfferHandler defines the offer handler interface
type OfferHandler interface {
	CreateOrUpdate(w http.ResponseWriter, r *http.Request)
	Respond(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
}

type offerHandlerImpl struct {
	offerService offer.OfferService
}

// NewOfferHandler creates a new offer handler
func NewOfferHandler(offerService offer.OfferService) OfferHandler {
	return &offerHandlerImpl{offerService: offerService}
}

// getActor resolves the authenticated actor, writing a 401 on failure.
func getActor(w http.ResponseWriter, r *http.Request) (contract.Actor, bool) {
	actor, ok := middleware.ActorFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
	}
	return actor, ok
}

// getApplicationID extracts the application route param, writing a 400 when
// it is missing.
func getApplicationID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "applicationID")
	if id == "" {
		response.BadRequest(w, "Application ID is required", nil)
		return "", false
	}
	return id, true
}

// CreateOrUpdate sends or re-sends an offer for the application
func (h *offerHandlerImpl) CreateOrUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}
	applicationID, ok := getApplicationID(w, r)
	if !ok {
		return
	}

	var req offer.TermsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.offerService.CreateOrUpdate(r.Context(), actor, applicationID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Respond records the traveller's accept or decline decision
func (h *offerHandlerImpl) Respond(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}
	applicationID, ok := getApplicationID(w, r)
	if !ok {
		return
	}

	var req offer.RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.offerService.Respond(r.Context(), actor, applicationID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Cancel withdraws the offer
func (h *offerHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}
	applicationID, ok := getApplicationID(w, r)
	if !ok {
		return
	}

	result, err := h.offerService.Cancel(r.Context(), actor, applicationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get returns the offer for the application
func (h *offerHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}
	applicationID, ok := getApplicationID(w, r)
	if !ok {
		return
	}

	result, err := h.offerService.Get(r.Context(), actor, applicationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
