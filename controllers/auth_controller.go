package controllers

import (
	"net/http"

	"hostelswap_server/services"
	"hostelswap_server/utils"
)

type AuthController struct {
	Auth  *services.AuthService
	Users *services.UserService
}

// Register handles POST /api/auth/register
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := decodeJSON(r, &input); err != nil {
		utils.RespondError(w, err)
		return
	}
	result, err := c.Auth.Register(r.Context(), input)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusCreated, result, "Registration successful")
}

// Login handles POST /api/auth/login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := decodeJSON(r, &input); err != nil {
		utils.RespondError(w, err)
		return
	}
	result, err := c.Auth.Login(r.Context(), input)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, result, "Login successful")
}

// Me handles GET /api/auth/me
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	user, err := c.Users.GetUser(r.Context(), currentUser(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, user, "")
}
