package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"hostelswap_server/models"
	"hostelswap_server/utils"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

type CommonMessageInput struct {
	Room    string `json:"room" validate:"omitempty,max=64"`
	Content string `json:"content" validate:"required"`
}

// CommonChatService backs the shared per-hostel chat rooms
type CommonChatService struct {
	Dynamo   *DynamoService
	Users    UserStore
	Notifier Notifier
	Now      func() time.Time
}

// CommonChatTopic is the real-time room of a common chat room
func CommonChatTopic(room string) string {
	return models.CommonChatTopicPrefix + room
}

// NormalizeRoom maps a user supplied room name to its stored key
func NormalizeRoom(room string) string {
	room = strings.ToLower(strings.TrimSpace(room))
	if room == "" {
		return models.DefaultCommonRoom
	}
	return room
}

// PostMessage stores a message in a common room. The room defaults to the sender's hostel.
func (s *CommonChatService) PostMessage(ctx context.Context, userID string, input CommonMessageInput) (*models.CommonMessage, error) {
	content, err := validateContent(input.Content)
	if err != nil {
		return nil, err
	}
	sender, err := s.Users.Get(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NewNotFoundError("user not found")
		}
		return nil, fmt.Errorf("failed to fetch sender: %w", err)
	}

	room := input.Room
	if strings.TrimSpace(room) == "" {
		room = sender.Hostel
	}
	msg := &models.CommonMessage{
		Room:       NormalizeRoom(room),
		CreatedAt:  models.Timestamp(s.Now()),
		MessageID:  uuid.NewString(),
		SenderID:   userID,
		SenderName: sender.Name,
		Content:    content,
	}
	if err := s.Dynamo.PutItem(ctx, models.CommonMessagesTable, msg); err != nil {
		return nil, fmt.Errorf("failed to save common message: %w", err)
	}

	s.Notifier.NotifyTopic(CommonChatTopic(msg.Room), models.EventNewCommonMessage, msg)
	return msg, nil
}

// RecentMessages returns the latest messages of a room, oldest first
func (s *CommonChatService) RecentMessages(ctx context.Context, room string, limit int) ([]models.CommonMessage, error) {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	if limit > MaxMessageLimit {
		limit = MaxMessageLimit
	}

	var messages []models.CommonMessage
	err := s.Dynamo.QueryItems(ctx, models.CommonMessagesTable,
		"#room = :room",
		map[string]types.AttributeValue{":room": &types.AttributeValueMemberS{Value: NormalizeRoom(room)}},
		map[string]string{"#room": "room"},
		QueryOptions{Limit: int32(limit), LatestFirst: true},
		&messages,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch common messages: %w", err)
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].CreatedAt < messages[j].CreatedAt })
	if messages == nil {
		messages = []models.CommonMessage{}
	}
	return messages, nil
}
