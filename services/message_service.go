package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"hostelswap_server/models"
	"hostelswap_server/utils"

	"github.com/google/uuid"
)

const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 200
)

// SendMessageInput is the payload of POST /api/messages and the sendMessage socket event
type SendMessageInput struct {
	ReceiverID string `json:"receiverId" validate:"required"`
	Content    string `json:"content" validate:"required"`
}

// ConversationView is a conversation summary with the peer's public profile
type ConversationView struct {
	models.Conversation
	Peer *models.PublicProfile `json:"peer,omitempty"`
}

type MessageService struct {
	Messages MessageStore
	Users    UserStore
	Notifier Notifier
	Now      func() time.Time
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", utils.NewValidationError("message content cannot be empty")
	}
	if len([]rune(content)) > models.MaxMessageLength {
		return "", utils.NewValidationError(fmt.Sprintf("message content cannot exceed %d characters", models.MaxMessageLength))
	}
	return content, nil
}

// SendMessage stores a direct message and bumps both conversation summaries
func (s *MessageService) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*models.Message, error) {
	content, err := validateContent(input.Content)
	if err != nil {
		return nil, err
	}
	if input.ReceiverID == senderID {
		return nil, utils.NewValidationError("you cannot message yourself")
	}
	if _, err := s.Users.Get(ctx, input.ReceiverID); err != nil {
		if isNotFound(err) {
			return nil, utils.NewNotFoundError("receiver not found")
		}
		return nil, fmt.Errorf("failed to fetch receiver: %w", err)
	}

	now := models.Timestamp(s.Now())
	msg := &models.Message{
		ConversationID: models.ConversationID(senderID, input.ReceiverID),
		CreatedAt:      now,
		MessageID:      uuid.NewString(),
		SenderID:       senderID,
		ReceiverID:     input.ReceiverID,
		Content:        content,
	}
	if err := s.Messages.PutMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	summary := models.Conversation{LastMessage: content, LastSenderID: senderID, LastMessageAt: now}
	senderSide, receiverSide := summary, summary
	senderSide.UserID, senderSide.PeerID = senderID, input.ReceiverID
	receiverSide.UserID, receiverSide.PeerID = input.ReceiverID, senderID
	if err := s.Messages.TouchConversation(ctx, senderSide, 0); err != nil {
		log.Printf("⚠️ Warning: failed to update conversation for %s: %v", senderID, err)
	}
	if err := s.Messages.TouchConversation(ctx, receiverSide, 1); err != nil {
		log.Printf("⚠️ Warning: failed to update conversation for %s: %v", input.ReceiverID, err)
	}

	s.Notifier.NotifyUser(input.ReceiverID, models.EventNewMessage, msg)
	return msg, nil
}

// ListConversations returns userID's conversations, most recent first
func (s *MessageService) ListConversations(ctx context.Context, userID string) ([]ConversationView, error) {
	conversations, err := s.Messages.ListConversations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversations: %w", err)
	}
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastMessageAt > conversations[j].LastMessageAt
	})

	views := make([]ConversationView, 0, len(conversations))
	for _, c := range conversations {
		view := ConversationView{Conversation: c}
		if peer, err := s.Users.Get(ctx, c.PeerID); err == nil {
			profile := peer.Public()
			view.Peer = &profile
		}
		views = append(views, view)
	}
	return views, nil
}

// GetConversation returns the latest messages with peerID, oldest first
func (s *MessageService) GetConversation(ctx context.Context, userID, peerID string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	if limit > MaxMessageLimit {
		limit = MaxMessageLimit
	}
	messages, err := s.Messages.ListMessages(ctx, models.ConversationID(userID, peerID), int32(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].CreatedAt < messages[j].CreatedAt })
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

// MarkRead marks every message from peerID to userID as read
func (s *MessageService) MarkRead(ctx context.Context, userID, peerID string) (int, error) {
	unread, err := s.Messages.ListUnread(ctx, models.ConversationID(userID, peerID), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch unread messages: %w", err)
	}
	for _, msg := range unread {
		if err := s.Messages.MarkRead(ctx, msg); err != nil {
			return 0, fmt.Errorf("failed to mark message read: %w", err)
		}
	}
	if err := s.Messages.ResetUnread(ctx, userID, peerID); err != nil {
		return 0, fmt.Errorf("failed to reset unread count: %w", err)
	}
	if len(unread) > 0 {
		s.Notifier.NotifyUser(peerID, models.EventMessagesRead, map[string]interface{}{
			"readerId": userID,
			"count":    len(unread),
		})
	}
	return len(unread), nil
}
