package controllers

import (
	"net/http"

	"hostelswap_server/services"
	"hostelswap_server/utils"

	"github.com/gorilla/mux"
)

type FriendController struct {
	Friends *services.FriendService
}

func (c *FriendController) SendRequest(w http.ResponseWriter, r *http.Request) {
	var input services.FriendRequestInput
	if err := decodeJSON(r, &input); err != nil {
		utils.RespondError(w, err)
		return
	}
	row, err := c.Friends.SendRequest(r.Context(), currentUser(r), input.UserID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusCreated, row, "Friend request sent")
}

// Respond handles PUT /api/friends/requests/{userId}
func (c *FriendController) Respond(w http.ResponseWriter, r *http.Request) {
	var input services.FriendResponseInput
	if err := decodeJSON(r, &input); err != nil {
		utils.RespondError(w, err)
		return
	}
	row, err := c.Friends.Respond(r.Context(), currentUser(r), mux.Vars(r)["userId"], input.Action)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	if input.Action == services.FriendActionReject {
		utils.RespondSuccess(w, http.StatusOK, nil, "Friend request rejected")
		return
	}
	utils.RespondSuccess(w, http.StatusOK, row, "Friend request accepted")
}

func (c *FriendController) List(w http.ResponseWriter, r *http.Request) {
	friends, err := c.Friends.ListFriends(r.Context(), currentUser(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, friends, "")
}

func (c *FriendController) Requests(w http.ResponseWriter, r *http.Request) {
	reqs, err := c.Friends.ListRequests(r.Context(), currentUser(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, reqs, "")
}

func (c *FriendController) Remove(w http.ResponseWriter, r *http.Request) {
	if err := c.Friends.RemoveFriend(r.Context(), currentUser(r), mux.Vars(r)["userId"]); err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, nil, "Friend removed")
}
