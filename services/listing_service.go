package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"hostelswap_server/models"
	"hostelswap_server/utils"

	"github.com/google/uuid"
)

// ListingInput is the payload for creating or updating a listing
type ListingInput struct {
	CurrentRoom   *models.RoomDetails    `json:"currentRoom"`
	DesiredRoom   models.RoomPreferences `json:"desiredRoom"`
	Description   string                 `json:"description" validate:"max=1000"`
	AvailableTill string                 `json:"availableTill"`
}

// ListingFilter narrows the open listing feed
type ListingFilter struct {
	Hostel   string
	Block    string
	RoomType string
}

// ListingService manages room listings
type ListingService struct {
	Listings   ListingStore
	Requests   MatchRequestStore
	Users      UserStore
	Notifier   Notifier
	Now        func() time.Time
	DefaultTTL time.Duration
}

// CreateListing posts a room for exchange. An owner can have only one active listing.
func (s *ListingService) CreateListing(ctx context.Context, ownerID string, input ListingInput) (*models.RoomListing, error) {
	owner, err := s.Users.Get(ctx, ownerID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NewNotFoundError("user not found")
		}
		return nil, fmt.Errorf("failed to fetch owner: %w", err)
	}

	existing, err := s.Listings.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing listings: %w", err)
	}
	now := s.Now()
	for _, l := range existing {
		if l.IsAvailable(now) {
			return nil, utils.NewConflictError("you already have an active listing")
		}
	}

	room := input.CurrentRoom
	if room == nil {
		room = owner.CurrentRoom
	}
	if room == nil {
		return nil, utils.NewValidationError("currentRoom is required when your profile has no room")
	}

	availableTill, err := s.resolveAvailableTill(input.AvailableTill, now)
	if err != nil {
		return nil, err
	}

	listing := &models.RoomListing{
		ListingID:     uuid.NewString(),
		ListedBy:      ownerID,
		OwnerGender:   owner.Gender,
		CurrentRoom:   *room,
		DesiredRoom:   input.DesiredRoom,
		Description:   strings.TrimSpace(input.Description),
		Status:        models.ListingStatusOpen,
		IsActive:      true,
		Version:       1,
		AvailableTill: availableTill,
		CreatedAt:     models.Timestamp(now),
		UpdatedAt:     models.Timestamp(now),
	}
	if err := s.Listings.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	log.Printf("✅ Listing %s created by %s", listing.ListingID, ownerID)
	return listing, nil
}

func (s *ListingService) resolveAvailableTill(raw string, now time.Time) (string, error) {
	if raw == "" {
		return models.Timestamp(now.Add(s.DefaultTTL)), nil
	}
	till, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return "", utils.NewValidationError("availableTill must be an RFC3339 timestamp")
	}
	if !till.After(now) {
		return "", utils.NewValidationError("availableTill must be in the future")
	}
	return models.Timestamp(till), nil
}

// GetListing returns a listing or NotFound
func (s *ListingService) GetListing(ctx context.Context, listingID string) (*models.RoomListing, error) {
	listing, err := s.Listings.Get(ctx, listingID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NewNotFoundError("listing not found")
		}
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	return listing, nil
}

func (s *ListingService) save(ctx context.Context, listing *models.RoomListing) error {
	if err := s.Listings.Save(ctx, listing, listing.Version); err != nil {
		if errors.Is(err, ErrListingConflict) {
			return utils.WrapConflict("listing was updated by someone else, reload and retry", err)
		}
		return err
	}
	return nil
}

func (s *ListingService) getOwned(ctx context.Context, listingID, userID string) (*models.RoomListing, error) {
	listing, err := s.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.ListedBy != userID {
		return nil, utils.NewForbiddenError("only the listing owner can do this")
	}
	return listing, nil
}

// UpdateListing edits an owner's listing that is not yet closed
func (s *ListingService) UpdateListing(ctx context.Context, listingID, userID string, input ListingInput) (*models.RoomListing, error) {
	listing, err := s.getOwned(ctx, listingID, userID)
	if err != nil {
		return nil, err
	}
	if listing.Status == models.ListingStatusClosed || !listing.IsActive {
		return nil, utils.NewValidationError("closed listings cannot be edited")
	}

	now := s.Now()
	if input.CurrentRoom != nil {
		listing.CurrentRoom = *input.CurrentRoom
	}
	listing.DesiredRoom = input.DesiredRoom
	listing.Description = strings.TrimSpace(input.Description)
	if input.AvailableTill != "" {
		till, err := s.resolveAvailableTill(input.AvailableTill, now)
		if err != nil {
			return nil, err
		}
		listing.AvailableTill = till
	}
	listing.UpdatedAt = models.Timestamp(now)

	if err := s.save(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}
	return listing, nil
}

// DeleteListing closes and deactivates the listing and rejects its open requests
func (s *ListingService) DeleteListing(ctx context.Context, listingID, userID string) error {
	listing, err := s.getOwned(ctx, listingID, userID)
	if err != nil {
		return err
	}
	if listing.Status == models.ListingStatusClosed && !listing.IsActive {
		return nil
	}
	now := s.Now()
	listing.Status = models.ListingStatusClosed
	listing.IsActive = false
	listing.UpdatedAt = models.Timestamp(now)
	if err := s.save(ctx, listing); err != nil {
		return fmt.Errorf("failed to close listing: %w", err)
	}

	reqs, err := s.Requests.ListByListing(ctx, listingID)
	if err != nil {
		log.Printf("⚠️ Warning: failed to list requests of listing %s: %v", listingID, err)
	}
	closed := closeOpenRequests(ctx, s.Requests, s.Notifier, reqs, "", []string{userID}, models.EventListingClosed, now)
	log.Printf("✅ Listing %s closed by owner, %d open requests rejected", listingID, closed)
	return nil
}

// AttachProof records the stored proof document on the listing
func (s *ListingService) AttachProof(ctx context.Context, listingID, userID, key string) (*models.RoomListing, error) {
	listing, err := s.getOwned(ctx, listingID, userID)
	if err != nil {
		return nil, err
	}
	listing.ProofDocument = key
	listing.UpdatedAt = models.Timestamp(s.Now())
	if err := s.save(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to attach proof: %w", err)
	}
	return listing, nil
}

// ListOpen returns available listings of other users, newest first
func (s *ListingService) ListOpen(ctx context.Context, userID string, filter ListingFilter) ([]models.RoomListing, error) {
	listings, err := s.Listings.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listings: %w", err)
	}

	now := s.Now()
	result := make([]models.RoomListing, 0, len(listings))
	for _, l := range listings {
		if !l.IsAvailable(now) || l.ListedBy == userID {
			continue
		}
		if filter.Hostel != "" && !strings.EqualFold(l.CurrentRoom.Hostel, filter.Hostel) {
			continue
		}
		if filter.Block != "" && !strings.EqualFold(l.CurrentRoom.Block, filter.Block) {
			continue
		}
		if filter.RoomType != "" && l.CurrentRoom.RoomType != filter.RoomType {
			continue
		}
		result = append(result, l)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt > result[j].CreatedAt })
	return result, nil
}

// ListMine returns every listing of the user, active or not
func (s *ListingService) ListMine(ctx context.Context, userID string) ([]models.RoomListing, error) {
	listings, err := s.Listings.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listings: %w", err)
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].CreatedAt > listings[j].CreatedAt })
	return listings, nil
}

// ExpressInterest marks userID as interested in the listing
func (s *ListingService) ExpressInterest(ctx context.Context, listingID, userID string) (*models.RoomListing, error) {
	listing, err := s.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.ListedBy == userID {
		return nil, utils.NewValidationError("you cannot show interest in your own listing")
	}
	if !listing.IsAvailable(s.Now()) {
		return nil, utils.NewValidationError("listing is no longer available")
	}
	if err := s.Listings.AddInterest(ctx, listingID, userID, models.Timestamp(s.Now())); err != nil {
		return nil, fmt.Errorf("failed to record interest: %w", err)
	}
	s.Notifier.NotifyUser(listing.ListedBy, models.EventListingInterest, map[string]string{
		"listingId": listingID,
		"userId":    userID,
	})
	return s.GetListing(ctx, listingID)
}

// WithdrawInterest removes userID from the interested set
func (s *ListingService) WithdrawInterest(ctx context.Context, listingID, userID string) (*models.RoomListing, error) {
	if _, err := s.GetListing(ctx, listingID); err != nil {
		return nil, err
	}
	if err := s.Listings.RemoveInterest(ctx, listingID, userID, models.Timestamp(s.Now())); err != nil {
		return nil, fmt.Errorf("failed to remove interest: %w", err)
	}
	return s.GetListing(ctx, listingID)
}

// ExpireListings deactivates listings whose availableTill has passed. A listing written
// since it was read is skipped; the next sweep sees its fresh state.
func (s *ListingService) ExpireListings(ctx context.Context) (int, error) {
	listings, err := s.Listings.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch listings: %w", err)
	}
	now := s.Now()
	expired := 0
	var errs []error
	for i := range listings {
		l := listings[i]
		if !l.IsExpired(now) {
			continue
		}
		l.IsActive = false
		l.UpdatedAt = models.Timestamp(now)
		err := s.Listings.Save(ctx, &l, l.Version)
		if errors.Is(err, ErrListingConflict) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("listing %s: %w", l.ListingID, err))
			continue
		}
		expired++
	}
	return expired, errors.Join(errs...)
}
