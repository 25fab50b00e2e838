package controllers

import (
	"net/http"
	"time"

	"hostelswap_server/services"
	"hostelswap_server/utils"

	"github.com/gorilla/mux"
)

type MatchRequestController struct {
	Requests *services.MatchRequestService
}

type scheduleInput struct {
	ScheduledDate string `json:"scheduledDate" validate:"required"`
}

// Create handles POST /api/match-requests
func (c *MatchRequestController) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateMatchRequestInput
	if err := decodeJSON(r, &input); err != nil {
		utils.RespondError(w, err)
		return
	}
	req, err := c.Requests.CreateRequest(r.Context(), currentUser(r), input)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusCreated, req, "Match request sent")
}

func (c *MatchRequestController) Sent(w http.ResponseWriter, r *http.Request) {
	reqs, err := c.Requests.ListSent(r.Context(), currentUser(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, reqs, "")
}

func (c *MatchRequestController) Received(w http.ResponseWriter, r *http.Request) {
	reqs, err := c.Requests.ListReceived(r.Context(), currentUser(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, reqs, "")
}

func (c *MatchRequestController) Get(w http.ResponseWriter, r *http.Request) {
	req, err := c.Requests.GetRequest(r.Context(), mux.Vars(r)["id"], currentUser(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, req, "")
}

// ForListing handles GET /api/match-requests/listing/{listingId}
func (c *MatchRequestController) ForListing(w http.ResponseWriter, r *http.Request) {
	reqs, err := c.Requests.ListForListing(r.Context(), mux.Vars(r)["listingId"], currentUser(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, reqs, "")
}

// Respond handles PUT /api/match-requests/{id}/respond
func (c *MatchRequestController) Respond(w http.ResponseWriter, r *http.Request) {
	var input services.RespondInput
	if err := decodeJSON(r, &input); err != nil {
		utils.RespondError(w, err)
		return
	}
	req, err := c.Requests.Respond(r.Context(), mux.Vars(r)["id"], currentUser(r), input)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, req, "Request "+req.Status)
}

// Approve handles PUT /api/match-requests/{id}/approve
func (c *MatchRequestController) Approve(w http.ResponseWriter, r *http.Request) {
	var input services.ApproveInput
	if err := decodeJSON(r, &input); err != nil {
		utils.RespondError(w, err)
		return
	}
	req, err := c.Requests.Approve(r.Context(), mux.Vars(r)["id"], currentUser(r), *input.Approved, input.Comments)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	message := "Approval recorded"
	if req.SwapDetails.Completed {
		message = "Exchange completed"
	}
	utils.RespondSuccess(w, http.StatusOK, req, message)
}

// Complete handles POST /api/match-requests/{id}/complete
func (c *MatchRequestController) Complete(w http.ResponseWriter, r *http.Request) {
	req, err := c.Requests.CompleteSwap(r.Context(), mux.Vars(r)["id"], currentUser(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, req, "Exchange completed")
}

// Schedule handles PUT /api/match-requests/{id}/schedule
func (c *MatchRequestController) Schedule(w http.ResponseWriter, r *http.Request) {
	var input scheduleInput
	if err := decodeJSON(r, &input); err != nil {
		utils.RespondError(w, err)
		return
	}
	date, err := time.Parse(time.RFC3339, input.ScheduledDate)
	if err != nil {
		utils.RespondError(w, utils.NewValidationError("scheduledDate must be an RFC3339 timestamp"))
		return
	}
	req, err := c.Requests.ScheduleSwap(r.Context(), mux.Vars(r)["id"], currentUser(r), date)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, req, "Swap scheduled")
}
