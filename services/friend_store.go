package services

import (
	"context"
	"fmt"

	"hostelswap_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// FriendStore persists friendships as two mirrored rows that are always written together
type FriendStore interface {
	Get(ctx context.Context, userID, friendID string) (*models.Friendship, error)
	List(ctx context.Context, userID string) ([]models.Friendship, error)
	// CreateRequest fails with ErrConditionFailed when either row already exists
	CreateRequest(ctx context.Context, fromID, toID, now string) error
	// Accept fails with ErrConditionFailed unless toID holds an incoming request from fromID
	Accept(ctx context.Context, toID, fromID, now string) error
	Delete(ctx context.Context, userID, friendID string) error
}

type DynamoFriendStore struct {
	Dynamo *DynamoService
}

func friendKey(userID, friendID string) map[string]types.AttributeValue {
	return CompositeKey("userId", userID, "friendId", friendID)
}

func (s *DynamoFriendStore) Get(ctx context.Context, userID, friendID string) (*models.Friendship, error) {
	var f models.Friendship
	if err := s.Dynamo.GetItem(ctx, models.FriendshipsTable, friendKey(userID, friendID), &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *DynamoFriendStore) List(ctx context.Context, userID string) ([]models.Friendship, error) {
	var friendships []models.Friendship
	err := s.Dynamo.QueryItems(ctx, models.FriendshipsTable,
		"userId = :uid",
		map[string]types.AttributeValue{":uid": &types.AttributeValueMemberS{Value: userID}},
		nil,
		QueryOptions{},
		&friendships,
	)
	return friendships, err
}

func (s *DynamoFriendStore) CreateRequest(ctx context.Context, fromID, toID, now string) error {
	rows := []models.Friendship{
		{UserID: fromID, FriendID: toID, Status: models.FriendStatusRequested, CreatedAt: now, UpdatedAt: now},
		{UserID: toID, FriendID: fromID, Status: models.FriendStatusIncoming, CreatedAt: now, UpdatedAt: now},
	}
	items := make([]types.TransactWriteItem, 0, len(rows))
	for _, row := range rows {
		av, err := attributevalue.MarshalMap(row)
		if err != nil {
			return fmt.Errorf("failed to marshal friendship: %w", err)
		}
		items = append(items, types.TransactWriteItem{Put: &types.Put{
			TableName:           aws.String(s.Dynamo.Table(models.FriendshipsTable)),
			Item:                av,
			ConditionExpression: aws.String("attribute_not_exists(userId)"),
		}})
	}
	return s.Dynamo.TransactWrite(ctx, items)
}

func (s *DynamoFriendStore) Accept(ctx context.Context, toID, fromID, now string) error {
	update := func(userID, friendID, expected string) types.TransactWriteItem {
		return types.TransactWriteItem{Update: &types.Update{
			TableName:           aws.String(s.Dynamo.Table(models.FriendshipsTable)),
			Key:                 friendKey(userID, friendID),
			UpdateExpression:    aws.String("SET #status = :accepted, updatedAt = :now"),
			ConditionExpression: aws.String("#status = :expected"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":accepted": &types.AttributeValueMemberS{Value: models.FriendStatusAccepted},
				":expected": &types.AttributeValueMemberS{Value: expected},
				":now":      &types.AttributeValueMemberS{Value: now},
			},
		}}
	}
	return s.Dynamo.TransactWrite(ctx, []types.TransactWriteItem{
		update(toID, fromID, models.FriendStatusIncoming),
		update(fromID, toID, models.FriendStatusRequested),
	})
}

func (s *DynamoFriendStore) Delete(ctx context.Context, userID, friendID string) error {
	table := aws.String(s.Dynamo.Table(models.FriendshipsTable))
	return s.Dynamo.TransactWrite(ctx, []types.TransactWriteItem{
		{Delete: &types.Delete{TableName: table, Key: friendKey(userID, friendID)}},
		{Delete: &types.Delete{TableName: table, Key: friendKey(friendID, userID)}},
	})
}
