package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"hostelswap_server/services"
	"hostelswap_server/utils"

	"github.com/gorilla/mux"
)

const (
	listingFormField = "listing"
	proofFormField   = "roomProof"
)

type ListingController struct {
	Listings    *services.ListingService
	Suggestions *services.SuggestionService
	Uploads     *services.UploadService
}

// Create accepts JSON, or multipart with a "listing" JSON field and an optional "roomProof" file
func (c *ListingController) Create(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var input services.ListingInput
		if err := decodeJSON(r, &input); err != nil {
			utils.RespondError(w, err)
			return
		}
		listing, err := c.Listings.CreateListing(r.Context(), userID, input)
		if err != nil {
			utils.RespondError(w, err)
			return
		}
		utils.RespondSuccess(w, http.StatusCreated, listing, "Listing created")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, c.Uploads.MaxBytes+maxJSONBody)
	if err := r.ParseMultipartForm(c.Uploads.MaxBytes); err != nil {
		utils.RespondError(w, utils.NewValidationError("invalid or oversized multipart form"))
		return
	}

	var input services.ListingInput
	if err := json.Unmarshal([]byte(r.FormValue(listingFormField)), &input); err != nil {
		utils.RespondError(w, utils.NewValidationError("listing field must contain the listing JSON"))
		return
	}
	if err := validateStruct(&input); err != nil {
		utils.RespondError(w, err)
		return
	}

	var stored *services.StoredFile
	file, header, err := r.FormFile(proofFormField)
	if err == nil {
		defer file.Close()
		stored, err = c.Uploads.SaveProof(r.Context(), userID, header.Filename, file)
		if err != nil {
			utils.RespondError(w, err)
			return
		}
	} else if err != http.ErrMissingFile {
		utils.RespondError(w, utils.NewValidationError("could not read roomProof file"))
		return
	}

	listing, err := c.Listings.CreateListing(r.Context(), userID, input)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	if stored != nil {
		listing, err = c.Listings.AttachProof(r.Context(), listing.ListingID, userID, stored.Key)
		if err != nil {
			utils.RespondError(w, err)
			return
		}
	}
	utils.RespondSuccess(w, http.StatusCreated, listing, "Listing created")
}

// UploadProof handles POST /api/listings/{id}/proof
func (c *ListingController) UploadProof(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	listingID := mux.Vars(r)["id"]

	r.Body = http.MaxBytesReader(w, r.Body, c.Uploads.MaxBytes+maxJSONBody)
	file, header, err := r.FormFile(proofFormField)
	if err != nil {
		utils.RespondError(w, utils.NewValidationError("roomProof file is required"))
		return
	}
	defer file.Close()

	if _, err := c.Listings.GetListing(r.Context(), listingID); err != nil {
		utils.RespondError(w, err)
		return
	}
	stored, err := c.Uploads.SaveProof(r.Context(), userID, header.Filename, file)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	listing, err := c.Listings.AttachProof(r.Context(), listingID, userID, stored.Key)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, listing, "Proof uploaded")
}

// List handles GET /api/listings?hostel=&block=&roomType=
func (c *ListingController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	listings, err := c.Listings.ListOpen(r.Context(), currentUser(r), services.ListingFilter{
		Hostel:   q.Get("hostel"),
		Block:    q.Get("block"),
		RoomType: q.Get("roomType"),
	})
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, listings, "")
}

func (c *ListingController) Mine(w http.ResponseWriter, r *http.Request) {
	listings, err := c.Listings.ListMine(r.Context(), currentUser(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, listings, "")
}

func (c *ListingController) Suggest(w http.ResponseWriter, r *http.Request) {
	suggestions, err := c.Suggestions.Suggest(r.Context(), currentUser(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	if suggestions == nil {
		suggestions = []services.Suggestion{}
	}
	utils.RespondSuccess(w, http.StatusOK, suggestions, "")
}

func (c *ListingController) Get(w http.ResponseWriter, r *http.Request) {
	listing, err := c.Listings.GetListing(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, listing, "")
}

func (c *ListingController) Update(w http.ResponseWriter, r *http.Request) {
	var input services.ListingInput
	if err := decodeJSON(r, &input); err != nil {
		utils.RespondError(w, err)
		return
	}
	listing, err := c.Listings.UpdateListing(r.Context(), mux.Vars(r)["id"], currentUser(r), input)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, listing, "Listing updated")
}

func (c *ListingController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.Listings.DeleteListing(r.Context(), mux.Vars(r)["id"], currentUser(r)); err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, nil, "Listing closed")
}

func (c *ListingController) ExpressInterest(w http.ResponseWriter, r *http.Request) {
	listing, err := c.Listings.ExpressInterest(r.Context(), mux.Vars(r)["id"], currentUser(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, listing, "Interest recorded")
}

func (c *ListingController) WithdrawInterest(w http.ResponseWriter, r *http.Request) {
	listing, err := c.Listings.WithdrawInterest(r.Context(), mux.Vars(r)["id"], currentUser(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, listing, "Interest withdrawn")
}

// ProofURL handles GET /api/listings/{id}/proof and resolves a readable URL for the stored proof
func (c *ListingController) ProofURL(w http.ResponseWriter, r *http.Request) {
	listing, err := c.Listings.GetListing(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	if listing.ProofDocument == "" {
		utils.RespondError(w, utils.NewNotFoundError("listing has no proof document"))
		return
	}
	url, err := c.Uploads.Storage.URL(r.Context(), listing.ProofDocument)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, map[string]string{"url": url}, "")
}
