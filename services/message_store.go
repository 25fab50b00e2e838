package services

import (
	"context"
	"errors"
	"strconv"

	"hostelswap_server/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MessageStore persists direct messages and per-user conversation summaries
type MessageStore interface {
	PutMessage(ctx context.Context, msg *models.Message) error
	// ListMessages returns up to limit messages of a conversation, newest first
	ListMessages(ctx context.Context, conversationID string, limit int32) ([]models.Message, error)
	ListUnread(ctx context.Context, conversationID, receiverID string) ([]models.Message, error)
	MarkRead(ctx context.Context, msg models.Message) error
	// TouchConversation upserts the summary row of userID; unread is added to unreadCount
	TouchConversation(ctx context.Context, conv models.Conversation, unread int) error
	ResetUnread(ctx context.Context, userID, peerID string) error
	ListConversations(ctx context.Context, userID string) ([]models.Conversation, error)
}

type DynamoMessageStore struct {
	Dynamo *DynamoService
}

func (s *DynamoMessageStore) PutMessage(ctx context.Context, msg *models.Message) error {
	return s.Dynamo.PutItem(ctx, models.MessagesTable, msg)
}

func (s *DynamoMessageStore) ListMessages(ctx context.Context, conversationID string, limit int32) ([]models.Message, error) {
	var messages []models.Message
	err := s.Dynamo.QueryItems(ctx, models.MessagesTable,
		"conversationId = :cid",
		map[string]types.AttributeValue{":cid": &types.AttributeValueMemberS{Value: conversationID}},
		nil,
		QueryOptions{Limit: limit, LatestFirst: true},
		&messages,
	)
	return messages, err
}

func (s *DynamoMessageStore) ListUnread(ctx context.Context, conversationID, receiverID string) ([]models.Message, error) {
	var messages []models.Message
	err := s.Dynamo.QueryItems(ctx, models.MessagesTable,
		"conversationId = :cid",
		map[string]types.AttributeValue{
			":cid":      &types.AttributeValueMemberS{Value: conversationID},
			":receiver": &types.AttributeValueMemberS{Value: receiverID},
			":false":    &types.AttributeValueMemberBOOL{Value: false},
		},
		nil,
		QueryOptions{FilterExpression: "receiverId = :receiver AND isRead = :false"},
		&messages,
	)
	return messages, err
}

func (s *DynamoMessageStore) MarkRead(ctx context.Context, msg models.Message) error {
	_, err := s.Dynamo.UpdateItem(ctx, models.MessagesTable,
		CompositeKey("conversationId", msg.ConversationID, "createdAt", msg.CreatedAt),
		"SET isRead = :true",
		"",
		map[string]types.AttributeValue{":true": &types.AttributeValueMemberBOOL{Value: true}},
		nil,
	)
	return err
}

func (s *DynamoMessageStore) TouchConversation(ctx context.Context, conv models.Conversation, unread int) error {
	_, err := s.Dynamo.UpdateItem(ctx, models.ConversationsTable,
		CompositeKey("userId", conv.UserID, "peerId", conv.PeerID),
		"SET lastMessage = :msg, lastSenderId = :sender, lastMessageAt = :at ADD unreadCount :unread",
		"",
		map[string]types.AttributeValue{
			":msg":    &types.AttributeValueMemberS{Value: conv.LastMessage},
			":sender": &types.AttributeValueMemberS{Value: conv.LastSenderID},
			":at":     &types.AttributeValueMemberS{Value: conv.LastMessageAt},
			":unread": &types.AttributeValueMemberN{Value: strconv.Itoa(unread)},
		},
		nil,
	)
	return err
}

func (s *DynamoMessageStore) ResetUnread(ctx context.Context, userID, peerID string) error {
	_, err := s.Dynamo.UpdateItem(ctx, models.ConversationsTable,
		CompositeKey("userId", userID, "peerId", peerID),
		"SET unreadCount = :zero",
		"attribute_exists(userId)",
		map[string]types.AttributeValue{":zero": &types.AttributeValueMemberN{Value: "0"}},
		nil,
	)
	if errors.Is(err, ErrConditionFailed) {
		// No conversation row yet.
		return nil
	}
	return err
}

func (s *DynamoMessageStore) ListConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := s.Dynamo.QueryItems(ctx, models.ConversationsTable,
		"userId = :uid",
		map[string]types.AttributeValue{":uid": &types.AttributeValueMemberS{Value: userID}},
		nil,
		QueryOptions{},
		&conversations,
	)
	return conversations, err
}
