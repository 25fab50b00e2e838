package controllers

import (
	"net/http"
	"time"

	"hostelswap_server/services"
	"hostelswap_server/utils"
)

type SyncController struct {
	Sync *services.SyncService
}

// Since handles GET /api/sync?since=RFC3339; a missing since returns everything
func (c *SyncController) Since(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.RespondError(w, utils.NewValidationError("since must be an RFC3339 timestamp"))
			return
		}
		since = parsed
	}
	result, err := c.Sync.Since(r.Context(), currentUser(r), since)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, result, "")
}
