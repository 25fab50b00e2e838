package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"hostelswap_server/models"
	"hostelswap_server/utils"
)

// Suggestion is a listing ranked for a particular user
type Suggestion struct {
	Listing models.RoomListing `json:"listing"`
	Score   int                `json:"score"`
	Mutual  bool               `json:"mutual"`
}

// SuggestionService ranks open listings for a user. Scoring is local; the
// AI-suggestion key in the config is not needed by this implementation.
type SuggestionService struct {
	Listings *ListingService
	Users    UserStore
	Limit    int
}

// Suggest returns the best-scoring gender-compatible listings for userID
func (s *SuggestionService) Suggest(ctx context.Context, userID string) ([]Suggestion, error) {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NewNotFoundError("user not found")
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	listings, err := s.Listings.ListOpen(ctx, userID, ListingFilter{})
	if err != nil {
		return nil, err
	}

	var suggestions []Suggestion
	for _, l := range listings {
		if l.OwnerGender != "" && user.Gender != "" && l.OwnerGender != user.Gender {
			continue
		}
		score, mutual := ScoreListing(*user, l)
		if score <= 0 {
			continue
		}
		suggestions = append(suggestions, Suggestion{Listing: l, Score: score, Mutual: mutual})
	}

	sort.SliceStable(suggestions, func(i, j int) bool { return suggestions[i].Score > suggestions[j].Score })
	if s.Limit > 0 && len(suggestions) > s.Limit {
		suggestions = suggestions[:s.Limit]
	}
	return suggestions, nil
}

// ScoreListing scores how well the listing's room fits the user's preferences and, the
// other way round, how well the user's room fits what the owner wants. Mutual is true
// when both directions match.
func ScoreListing(user models.User, listing models.RoomListing) (int, bool) {
	forward := 0
	if user.Preferences != nil {
		forward = roomScore(listing.CurrentRoom, *user.Preferences)
	}
	backward := 0
	if user.CurrentRoom != nil {
		backward = roomScore(*user.CurrentRoom, listing.DesiredRoom)
	}
	return forward + backward, forward > 0 && backward > 0
}

// roomScore is 0 when a hard preference (hostel, room type, floor range) is violated
func roomScore(room models.RoomDetails, prefs models.RoomPreferences) int {
	score := 1
	if len(prefs.Hostels) > 0 {
		if !containsFold(prefs.Hostels, room.Hostel) {
			return 0
		}
		score += 3
	}
	if len(prefs.RoomTypes) > 0 {
		if !containsFold(prefs.RoomTypes, room.RoomType) {
			return 0
		}
		score += 2
	}
	if prefs.MinFloor != nil && room.Floor < *prefs.MinFloor {
		return 0
	}
	if prefs.MaxFloor != nil && room.Floor > *prefs.MaxFloor {
		return 0
	}
	if len(prefs.Blocks) > 0 && containsFold(prefs.Blocks, room.Block) {
		score += 2
	}
	for _, a := range prefs.Amenities {
		if containsFold(room.Amenities, a) {
			score++
		}
	}
	return score
}

func containsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}
