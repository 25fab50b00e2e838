package controllers

import (
	"net/http"

	"hostelswap_server/services"
	"hostelswap_server/utils"

	"github.com/gorilla/mux"
)

type EventController struct {
	Events *services.EventService
}

func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	var input services.EventInput
	if err := decodeJSON(r, &input); err != nil {
		utils.RespondError(w, err)
		return
	}
	event, err := c.Events.CreateEvent(r.Context(), currentUser(r), input)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusCreated, event, "Event created")
}

func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	events, err := c.Events.ListUpcoming(r.Context(), r.URL.Query().Get("hostel"))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, events, "")
}

func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	event, err := c.Events.GetEvent(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, event, "")
}

func (c *EventController) Join(w http.ResponseWriter, r *http.Request) {
	event, err := c.Events.JoinEvent(r.Context(), mux.Vars(r)["id"], currentUser(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, event, "Joined event")
}

func (c *EventController) Leave(w http.ResponseWriter, r *http.Request) {
	event, err := c.Events.LeaveEvent(r.Context(), mux.Vars(r)["id"], currentUser(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, event, "Left event")
}

func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.Events.DeleteEvent(r.Context(), mux.Vars(r)["id"], currentUser(r)); err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, nil, "Event deleted")
}
