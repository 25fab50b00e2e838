package services

import (
	"context"
	"errors"
	"strconv"

	"hostelswap_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	// ErrVersionConflict means the request changed since it was read
	ErrVersionConflict = errors.New("match request was modified concurrently")
	// ErrSwapAlreadyCompleted means the swap transaction already ran for the request
	ErrSwapAlreadyCompleted = errors.New("swap already completed")
	// ErrRoomChanged means a party no longer holds the room the swap was planned with
	ErrRoomChanged = errors.New("room changed since the swap was planned")
	// ErrListingUnavailable means the listing was closed or deactivated before the swap
	ErrListingUnavailable = errors.New("listing is no longer available")
)

// MatchRequestStore persists match requests. Save is a compare-and-swap on Version.
type MatchRequestStore interface {
	Create(ctx context.Context, req *models.MatchRequest) error
	Get(ctx context.Context, requestID string) (*models.MatchRequest, error)
	Save(ctx context.Context, req *models.MatchRequest, expectedVersion int) error
	ListByRequester(ctx context.Context, requesterID string) ([]models.MatchRequest, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.MatchRequest, error)
	ListByListing(ctx context.Context, listingID string) ([]models.MatchRequest, error)
	ListActive(ctx context.Context) ([]models.MatchRequest, error)
}

// SwapPlan is everything the swap transaction writes
type SwapPlan struct {
	RequestID     string
	ListingID     string
	RequesterID   string
	OwnerID       string
	RequesterRoom models.RoomDetails
	OwnerRoom     models.RoomDetails
	CompletedAt   string
}

// SwapExecutor applies a SwapPlan atomically. Running a plan twice yields
// ErrSwapAlreadyCompleted and changes nothing. A party whose room differs from the
// plan yields ErrRoomChanged, and a listing that is no longer open yields
// ErrListingUnavailable.
type SwapExecutor interface {
	ExecuteSwap(ctx context.Context, plan SwapPlan) error
}

// DynamoMatchRequestStore implements MatchRequestStore and SwapExecutor on DynamoDB
type DynamoMatchRequestStore struct {
	Dynamo *DynamoService
}

func (s *DynamoMatchRequestStore) Create(ctx context.Context, req *models.MatchRequest) error {
	return s.Dynamo.PutItemWithCondition(ctx, models.MatchRequestsTable, req, "attribute_not_exists(requestId)", nil, nil)
}

func (s *DynamoMatchRequestStore) Get(ctx context.Context, requestID string) (*models.MatchRequest, error) {
	var req models.MatchRequest
	if err := s.Dynamo.GetItem(ctx, models.MatchRequestsTable, StringKey("requestId", requestID), &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Save overwrites the request only if the stored version still equals expectedVersion
func (s *DynamoMatchRequestStore) Save(ctx context.Context, req *models.MatchRequest, expectedVersion int) error {
	req.Version = expectedVersion + 1
	err := s.Dynamo.PutItemWithCondition(ctx, models.MatchRequestsTable, req,
		"#version = :expected",
		map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.Itoa(expectedVersion)},
		},
		map[string]string{"#version": "version"},
	)
	if errors.Is(err, ErrConditionFailed) {
		req.Version = expectedVersion
		return ErrVersionConflict
	}
	return err
}

func (s *DynamoMatchRequestStore) queryIndex(ctx context.Context, index, attr, value string) ([]models.MatchRequest, error) {
	var reqs []models.MatchRequest
	err := s.Dynamo.QueryItems(ctx, models.MatchRequestsTable,
		"#k = :v",
		map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		map[string]string{"#k": attr},
		QueryOptions{IndexName: index, LatestFirst: true},
		&reqs,
	)
	return reqs, err
}

func (s *DynamoMatchRequestStore) ListByRequester(ctx context.Context, requesterID string) ([]models.MatchRequest, error) {
	return s.queryIndex(ctx, models.RequesterIndex, "requesterId", requesterID)
}

func (s *DynamoMatchRequestStore) ListByOwner(ctx context.Context, ownerID string) ([]models.MatchRequest, error) {
	return s.queryIndex(ctx, models.ListingOwnerIndex, "listingOwnerId", ownerID)
}

func (s *DynamoMatchRequestStore) ListByListing(ctx context.Context, listingID string) ([]models.MatchRequest, error) {
	return s.queryIndex(ctx, models.ListingRequestIndex, "listingId", listingID)
}

func (s *DynamoMatchRequestStore) ListActive(ctx context.Context) ([]models.MatchRequest, error) {
	var reqs []models.MatchRequest
	err := s.Dynamo.ScanWithFilter(ctx, models.MatchRequestsTable,
		"isActive = :active",
		map[string]types.AttributeValue{":active": &types.AttributeValueMemberBOOL{Value: true}},
		nil, nil, &reqs,
	)
	return reqs, err
}

// ExecuteSwap writes both users' rooms, closes the listing and completes the request in
// one transaction. The request item is conditioned on swapDetails.completed = false, so
// a replay is rejected as a whole.
func (s *DynamoMatchRequestStore) ExecuteSwap(ctx context.Context, plan SwapPlan) error {
	items, err := BuildSwapTransaction(s.Dynamo, plan)
	if err != nil {
		return err
	}

	err = s.Dynamo.TransactWrite(ctx, items)
	var condErr *TransactionConditionError
	if errors.As(err, &condErr) {
		switch condErr.Index {
		case 0:
			return ErrSwapAlreadyCompleted
		case 1, 2:
			return ErrRoomChanged
		case 3:
			return ErrListingUnavailable
		}
	}
	return err
}

// roomGuard builds a condition that the user still holds room
func roomGuard(room models.RoomDetails) (string, map[string]types.AttributeValue) {
	expr := "currentRoom.hostel = :fromHostel AND currentRoom.roomNumber = :fromRoom"
	values := map[string]types.AttributeValue{
		":fromHostel": &types.AttributeValueMemberS{Value: room.Hostel},
		":fromRoom":   &types.AttributeValueMemberS{Value: room.RoomNumber},
	}
	if room.Block != "" {
		expr += " AND currentRoom.block = :fromBlock"
		values[":fromBlock"] = &types.AttributeValueMemberS{Value: room.Block}
	} else {
		expr += " AND attribute_not_exists(currentRoom.block)"
	}
	return expr, values
}

func userSwapUpdate(ds *DynamoService, userID string, from, to models.RoomDetails, now types.AttributeValue) (types.TransactWriteItem, error) {
	room, err := attributevalue.MarshalMap(to)
	if err != nil {
		return types.TransactWriteItem{}, err
	}
	cond, values := roomGuard(from)
	values[":room"] = &types.AttributeValueMemberM{Value: room}
	values[":hostel"] = &types.AttributeValueMemberS{Value: to.Hostel}
	values[":now"] = now
	return types.TransactWriteItem{
		Update: &types.Update{
			TableName:                 aws.String(ds.Table(models.UsersTable)),
			Key:                       StringKey("userId", userID),
			UpdateExpression:          aws.String("SET currentRoom = :room, hostel = :hostel, updatedAt = :now"),
			ConditionExpression:       aws.String(cond),
			ExpressionAttributeValues: values,
		},
	}, nil
}

// BuildSwapTransaction returns the transaction items for plan: the request guard, the
// requester, the owner and the listing, in that order
func BuildSwapTransaction(ds *DynamoService, plan SwapPlan) ([]types.TransactWriteItem, error) {
	now := &types.AttributeValueMemberS{Value: plan.CompletedAt}
	requester, err := userSwapUpdate(ds, plan.RequesterID, plan.RequesterRoom, plan.OwnerRoom, now)
	if err != nil {
		return nil, err
	}
	owner, err := userSwapUpdate(ds, plan.OwnerID, plan.OwnerRoom, plan.RequesterRoom, now)
	if err != nil {
		return nil, err
	}

	return []types.TransactWriteItem{
		{
			Update: &types.Update{
				TableName:           aws.String(ds.Table(models.MatchRequestsTable)),
				Key:                 StringKey("requestId", plan.RequestID),
				UpdateExpression:    aws.String("SET swapDetails.completed = :true, swapDetails.completedAt = :now, updatedAt = :now, #version = #version + :one"),
				ConditionExpression: aws.String("swapDetails.completed = :false AND #status = :accepted"),
				ExpressionAttributeNames: map[string]string{
					"#status":  "status",
					"#version": "version",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":true":     &types.AttributeValueMemberBOOL{Value: true},
					":false":    &types.AttributeValueMemberBOOL{Value: false},
					":now":      now,
					":one":      &types.AttributeValueMemberN{Value: "1"},
					":accepted": &types.AttributeValueMemberS{Value: models.MatchStatusAccepted},
				},
			},
		},
		requester,
		owner,
		{
			Update: &types.Update{
				TableName:           aws.String(ds.Table(models.ListingsTable)),
				Key:                 StringKey("listingId", plan.ListingID),
				UpdateExpression:    aws.String("SET #status = :closed, isActive = :false, updatedAt = :now ADD #version :one"),
				ConditionExpression: aws.String("isActive = :true AND #status <> :closed"),
				ExpressionAttributeNames: map[string]string{
					"#status":  "status",
					"#version": "version",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":closed": &types.AttributeValueMemberS{Value: models.ListingStatusClosed},
					":true":   &types.AttributeValueMemberBOOL{Value: true},
					":false":  &types.AttributeValueMemberBOOL{Value: false},
					":now":    now,
					":one":    &types.AttributeValueMemberN{Value: "1"},
				},
			},
		},
	}, nil
}
