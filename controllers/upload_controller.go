package controllers

import (
	"net/http"

	"hostelswap_server/services"
	"hostelswap_server/utils"
)

type presignInput struct {
	FileName string `json:"fileName" validate:"required,max=200"`
	FileType string `json:"fileType" validate:"required"`
}

type UploadController struct {
	Uploads *services.UploadService
}

// PresignProfilePicture handles POST /api/uploads/profile-picture. The client PUTs the image
// to the returned URL and then saves the key through PUT /api/users/me.
func (c *UploadController) PresignProfilePicture(w http.ResponseWriter, r *http.Request) {
	var input presignInput
	if err := decodeJSON(r, &input); err != nil {
		utils.RespondError(w, err)
		return
	}
	upload, err := c.Uploads.PresignProfilePicture(r.Context(), currentUser(r), input.FileName, input.FileType)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, upload, "")
}
