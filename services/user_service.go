package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"hostelswap_server/models"
	"hostelswap_server/utils"
)

// UserService manages profiles
type UserService struct {
	Users UserStore
	Now   func() time.Time
}

// ProfileUpdate holds the editable profile fields; nil means unchanged
type ProfileUpdate struct {
	Name           *string                 `json:"name" validate:"omitempty,min=2,max=80"`
	Phone          *string                 `json:"phone" validate:"omitempty,max=20"`
	Bio            *string                 `json:"bio" validate:"omitempty,max=500"`
	Year           *int                    `json:"year" validate:"omitempty,min=1,max=10"`
	Hostel         *string                 `json:"hostel" validate:"omitempty,max=80"`
	ProfilePicture *string                 `json:"profilePicture" validate:"omitempty,max=512"`
	CurrentRoom    *models.RoomDetails     `json:"currentRoom"`
	Preferences    *models.RoomPreferences `json:"preferences"`
}

// GetUser returns a user or a NotFound error
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NewNotFoundError("user not found")
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of update
func (s *UserService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.Year != nil {
		user.Year = *update.Year
	}
	if update.Hostel != nil {
		user.Hostel = *update.Hostel
	}
	if update.ProfilePicture != nil {
		user.ProfilePicture = *update.ProfilePicture
	}
	if update.CurrentRoom != nil {
		room := *update.CurrentRoom
		user.CurrentRoom = &room
		if user.Hostel == "" {
			user.Hostel = room.Hostel
		}
	}
	if update.Preferences != nil {
		prefs := *update.Preferences
		if prefs.MinFloor != nil && prefs.MaxFloor != nil && *prefs.MinFloor > *prefs.MaxFloor {
			return nil, utils.NewValidationError("minFloor cannot be greater than maxFloor")
		}
		user.Preferences = &prefs
	}
	user.UpdatedAt = models.Timestamp(s.Now())

	if err := s.Users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	log.Printf("✅ Updated profile for user %s", userID)
	return user, nil
}

// SearchUsers returns public profiles matching a name fragment and/or hostel
func (s *UserService) SearchUsers(ctx context.Context, query, hostel string) ([]models.PublicProfile, error) {
	users, err := s.Users.Search(ctx, query, hostel)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	profiles := make([]models.PublicProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Public())
	}
	return profiles, nil
}

// PublicProfiles resolves ids to profiles, skipping users that no longer exist
func (s *UserService) PublicProfiles(ctx context.Context, userIDs []string) ([]models.PublicProfile, error) {
	profiles := make([]models.PublicProfile, 0, len(userIDs))
	for _, id := range userIDs {
		user, err := s.Users.Get(ctx, id)
		if err != nil {
			if isNotFound(err) {
				log.Printf("⚠️ Warning: user %s no longer exists", id)
				continue
			}
			return nil, fmt.Errorf("failed to fetch user %s: %w", id, err)
		}
		profiles = append(profiles, user.Public())
	}
	return profiles, nil
}
