package services

import (
	"context"
	"errors"
	"strings"

	"hostelswap_server/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// UserStore persists users
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	Search(ctx context.Context, query, hostel string) ([]models.User, error)
}

// DynamoUserStore keeps users in the Users table with an EmailIndex GSI
type DynamoUserStore struct {
	Dynamo *DynamoService
}

func (s *DynamoUserStore) Create(ctx context.Context, user *models.User) error {
	return s.Dynamo.PutItemWithCondition(ctx, models.UsersTable, user, "attribute_not_exists(userId)", nil, nil)
}

func (s *DynamoUserStore) Get(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.Dynamo.GetItem(ctx, models.UsersTable, StringKey("userId", userID), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *DynamoUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var users []models.User
	err := s.Dynamo.QueryItems(ctx, models.UsersTable,
		"email = :email",
		map[string]types.AttributeValue{":email": &types.AttributeValueMemberS{Value: email}},
		nil,
		QueryOptions{IndexName: models.EmailIndex, Limit: 1},
		&users,
	)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrItemNotFound
	}
	// The index projects keys only on some deployments; re-read the full item.
	return s.Get(ctx, users[0].UserID)
}

func (s *DynamoUserStore) Save(ctx context.Context, user *models.User) error {
	return s.Dynamo.PutItemWithCondition(ctx, models.UsersTable, user, "attribute_exists(userId)", nil, nil)
}

func (s *DynamoUserStore) Search(ctx context.Context, query, hostel string) ([]models.User, error) {
	filter := "isActive = :active"
	values := map[string]types.AttributeValue{
		":active": &types.AttributeValueMemberBOOL{Value: true},
	}
	names := map[string]string{}
	if hostel != "" {
		filter += " AND #hostel = :hostel"
		values[":hostel"] = &types.AttributeValueMemberS{Value: hostel}
		names["#hostel"] = "hostel"
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	var users []models.User
	err := s.Dynamo.ScanWithFilter(ctx, models.UsersTable, filter, values, names,
		func(item map[string]types.AttributeValue) bool {
			if needle == "" {
				return true
			}
			name, _ := item["name"].(*types.AttributeValueMemberS)
			return name != nil && strings.Contains(strings.ToLower(name.Value), needle)
		},
		&users,
	)
	return users, err
}

// isNotFound reports whether err is a missing-item error from a store
func isNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound)
}
