package models

import "time"

const (
	ListingStatusOpen    = "Open"
	ListingStatusBidding = "Bidding"
	ListingStatusClosed  = "Closed"
)

// RoomListing is a room posted for exchange
type RoomListing struct {
	ListingID       string          `dynamodbav:"listingId" json:"listingId"`
	ListedBy        string          `dynamodbav:"listedBy" json:"listedBy"`
	OwnerGender     string          `dynamodbav:"ownerGender" json:"ownerGender"`
	CurrentRoom     RoomDetails     `dynamodbav:"currentRoom" json:"currentRoom"`
	DesiredRoom     RoomPreferences `dynamodbav:"desiredRoom" json:"desiredRoom"`
	Description     string          `dynamodbav:"description,omitempty" json:"description,omitempty"`
	Status          string          `dynamodbav:"status" json:"status"`
	InterestedUsers []string        `dynamodbav:"interestedUsers,stringset,omitempty" json:"interestedUsers"`
	ProofDocument   string          `dynamodbav:"proofDocument,omitempty" json:"proofDocument,omitempty"`
	IsActive        bool            `dynamodbav:"isActive" json:"isActive"`
	Version         int             `dynamodbav:"version" json:"version"`
	AvailableTill   string          `dynamodbav:"availableTill" json:"availableTill"`
	CreatedAt       string          `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt       string          `dynamodbav:"updatedAt" json:"updatedAt"`
}

// IsExpired reports whether availableTill has passed
func (l RoomListing) IsExpired(now time.Time) bool {
	till := ParseTimestamp(l.AvailableTill)
	return !till.IsZero() && now.After(till)
}

// IsAvailable reports whether the listing can still receive requests
func (l RoomListing) IsAvailable(now time.Time) bool {
	return l.IsActive && l.Status != ListingStatusClosed && !l.IsExpired(now)
}

func (l RoomListing) HasInterest(userID string) bool {
	for _, id := range l.InterestedUsers {
		if id == userID {
			return true
		}
	}
	return false
}
