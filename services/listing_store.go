package services

import (
	"context"
	"errors"
	"strconv"

	"hostelswap_server/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrListingConflict means the listing changed since it was read
var ErrListingConflict = errors.New("listing was modified concurrently")

// ListingStore persists room listings. Save is a compare-and-swap on Version; every
// other write bumps Version too.
type ListingStore interface {
	Create(ctx context.Context, listing *models.RoomListing) error
	Get(ctx context.Context, listingID string) (*models.RoomListing, error)
	Save(ctx context.Context, listing *models.RoomListing, expectedVersion int) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.RoomListing, error)
	ListActive(ctx context.Context) ([]models.RoomListing, error)
	AddInterest(ctx context.Context, listingID, userID, updatedAt string) error
	RemoveInterest(ctx context.Context, listingID, userID, updatedAt string) error
}

type DynamoListingStore struct {
	Dynamo *DynamoService
}

func (s *DynamoListingStore) Create(ctx context.Context, listing *models.RoomListing) error {
	return s.Dynamo.PutItemWithCondition(ctx, models.ListingsTable, listing, "attribute_not_exists(listingId)", nil, nil)
}

func (s *DynamoListingStore) Get(ctx context.Context, listingID string) (*models.RoomListing, error) {
	var listing models.RoomListing
	if err := s.Dynamo.GetItem(ctx, models.ListingsTable, StringKey("listingId", listingID), &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// Save overwrites the listing only if the stored version still equals expectedVersion
func (s *DynamoListingStore) Save(ctx context.Context, listing *models.RoomListing, expectedVersion int) error {
	listing.Version = expectedVersion + 1
	err := s.Dynamo.PutItemWithCondition(ctx, models.ListingsTable, listing,
		"#version = :expected",
		map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.Itoa(expectedVersion)},
		},
		map[string]string{"#version": "version"},
	)
	if errors.Is(err, ErrConditionFailed) {
		listing.Version = expectedVersion
		return ErrListingConflict
	}
	return err
}

func (s *DynamoListingStore) ListByOwner(ctx context.Context, ownerID string) ([]models.RoomListing, error) {
	var listings []models.RoomListing
	err := s.Dynamo.QueryItems(ctx, models.ListingsTable,
		"listedBy = :owner",
		map[string]types.AttributeValue{":owner": &types.AttributeValueMemberS{Value: ownerID}},
		nil,
		QueryOptions{IndexName: models.ListedByIndex},
		&listings,
	)
	return listings, err
}

func (s *DynamoListingStore) ListActive(ctx context.Context) ([]models.RoomListing, error) {
	var listings []models.RoomListing
	err := s.Dynamo.ScanWithFilter(ctx, models.ListingsTable,
		"isActive = :active",
		map[string]types.AttributeValue{":active": &types.AttributeValueMemberBOOL{Value: true}},
		nil, nil, &listings,
	)
	return listings, err
}

// AddInterest adds userID to the interested set and moves an Open listing to Bidding
func (s *DynamoListingStore) AddInterest(ctx context.Context, listingID, userID, updatedAt string) error {
	_, err := s.Dynamo.UpdateItem(ctx, models.ListingsTable, StringKey("listingId", listingID),
		"ADD interestedUsers :user, #version :one SET updatedAt = :now",
		"attribute_exists(listingId)",
		map[string]types.AttributeValue{
			":user": &types.AttributeValueMemberSS{Value: []string{userID}},
			":now":  &types.AttributeValueMemberS{Value: updatedAt},
			":one":  &types.AttributeValueMemberN{Value: "1"},
		},
		map[string]string{"#version": "version"},
	)
	if err != nil {
		return err
	}

	_, err = s.Dynamo.UpdateItem(ctx, models.ListingsTable, StringKey("listingId", listingID),
		"SET #status = :bidding ADD #version :one",
		"#status = :open",
		map[string]types.AttributeValue{
			":bidding": &types.AttributeValueMemberS{Value: models.ListingStatusBidding},
			":open":    &types.AttributeValueMemberS{Value: models.ListingStatusOpen},
			":one":     &types.AttributeValueMemberN{Value: "1"},
		},
		map[string]string{"#status": "status", "#version": "version"},
	)
	if errors.Is(err, ErrConditionFailed) {
		// Already Bidding or Closed.
		return nil
	}
	return err
}

func (s *DynamoListingStore) RemoveInterest(ctx context.Context, listingID, userID, updatedAt string) error {
	_, err := s.Dynamo.UpdateItem(ctx, models.ListingsTable, StringKey("listingId", listingID),
		"DELETE interestedUsers :user SET updatedAt = :now ADD #version :one",
		"attribute_exists(listingId)",
		map[string]types.AttributeValue{
			":user": &types.AttributeValueMemberSS{Value: []string{userID}},
			":now":  &types.AttributeValueMemberS{Value: updatedAt},
			":one":  &types.AttributeValueMemberN{Value: "1"},
		},
		map[string]string{"#version": "version"},
	)
	return err
}
