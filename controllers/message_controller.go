package controllers

import (
	"net/http"

	"hostelswap_server/services"
	"hostelswap_server/utils"

	"github.com/gorilla/mux"
)

type MessageController struct {
	Messages *services.MessageService
}

func (c *MessageController) Send(w http.ResponseWriter, r *http.Request) {
	var input services.SendMessageInput
	if err := decodeJSON(r, &input); err != nil {
		utils.RespondError(w, err)
		return
	}
	msg, err := c.Messages.SendMessage(r.Context(), currentUser(r), input)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusCreated, msg, "Message sent")
}

func (c *MessageController) Conversations(w http.ResponseWriter, r *http.Request) {
	convs, err := c.Messages.ListConversations(r.Context(), currentUser(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, convs, "")
}

// Conversation handles GET /api/messages/{userId}?limit=
func (c *MessageController) Conversation(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", services.DefaultMessageLimit)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	msgs, err := c.Messages.GetConversation(r.Context(), currentUser(r), mux.Vars(r)["userId"], limit)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, msgs, "")
}

func (c *MessageController) MarkRead(w http.ResponseWriter, r *http.Request) {
	count, err := c.Messages.MarkRead(r.Context(), currentUser(r), mux.Vars(r)["userId"])
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, map[string]int{"updated": count}, "Messages marked as read")
}
