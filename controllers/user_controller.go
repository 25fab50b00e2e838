package controllers

import (
	"net/http"
	"strings"

	"hostelswap_server/services"
	"hostelswap_server/utils"

	"github.com/gorilla/mux"
)

// Presence reports which users have a live real-time connection
type Presence interface {
	OnlineUsers() []string
}

type UserController struct {
	Users    *services.UserService
	Presence Presence
}

func (c *UserController) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := c.Users.GetUser(r.Context(), currentUser(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, user, "")
}

func (c *UserController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var update services.ProfileUpdate
	if err := decodeJSON(r, &update); err != nil {
		utils.RespondError(w, err)
		return
	}
	user, err := c.Users.UpdateProfile(r.Context(), currentUser(r), update)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, user, "Profile updated")
}

// GetUser returns another user's public profile
func (c *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := c.Users.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, user.Public(), "")
}

// Search handles GET /api/users?q=&hostel=
func (c *UserController) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	hostel := strings.TrimSpace(r.URL.Query().Get("hostel"))
	profiles, err := c.Users.SearchUsers(r.Context(), q, hostel)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, profiles, "")
}

// Online lists the profiles of connected users
func (c *UserController) Online(w http.ResponseWriter, r *http.Request) {
	profiles, err := c.Users.PublicProfiles(r.Context(), c.Presence.OnlineUsers())
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, profiles, "")
}
