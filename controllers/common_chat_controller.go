package controllers

import (
	"net/http"

	"hostelswap_server/services"
	"hostelswap_server/utils"
)

type CommonChatController struct {
	Chat *services.CommonChatService
}

func (c *CommonChatController) Post(w http.ResponseWriter, r *http.Request) {
	var input services.CommonMessageInput
	if err := decodeJSON(r, &input); err != nil {
		utils.RespondError(w, err)
		return
	}
	msg, err := c.Chat.PostMessage(r.Context(), currentUser(r), input)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusCreated, msg, "Message posted")
}

// Recent handles GET /api/common-chat?room=&limit=
func (c *CommonChatController) Recent(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", services.DefaultMessageLimit)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	msgs, err := c.Chat.RecentMessages(r.Context(), r.URL.Query().Get("room"), limit)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, msgs, "")
}
