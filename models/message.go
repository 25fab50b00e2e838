package models

import (
	"sort"
	"strings"
)

// MaxMessageLength bounds direct and common chat messages
const MaxMessageLength = 2000

// Message is a direct message between two users
type Message struct {
	ConversationID string `dynamodbav:"conversationId" json:"conversationId"`
	CreatedAt      string `dynamodbav:"createdAt" json:"createdAt"`
	MessageID      string `dynamodbav:"messageId" json:"messageId"`
	SenderID       string `dynamodbav:"senderId" json:"senderId"`
	ReceiverID     string `dynamodbav:"receiverId" json:"receiverId"`
	Content        string `dynamodbav:"content" json:"content"`
	IsRead         bool   `dynamodbav:"isRead" json:"isRead"`
}

// Conversation is one user's view of a direct message thread
type Conversation struct {
	UserID        string `dynamodbav:"userId" json:"userId"`
	PeerID        string `dynamodbav:"peerId" json:"peerId"`
	LastMessage   string `dynamodbav:"lastMessage" json:"lastMessage"`
	LastSenderID  string `dynamodbav:"lastSenderId" json:"lastSenderId"`
	LastMessageAt string `dynamodbav:"lastMessageAt" json:"lastMessageAt"`
	UnreadCount   int    `dynamodbav:"unreadCount" json:"unreadCount"`
}

// ConversationID is the same for both directions of a pair
func ConversationID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "#")
}

// CommonMessage is a message in a shared hostel chat room
type CommonMessage struct {
	Room       string `dynamodbav:"room" json:"room"`
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
	MessageID  string `dynamodbav:"messageId" json:"messageId"`
	SenderID   string `dynamodbav:"senderId" json:"senderId"`
	SenderName string `dynamodbav:"senderName" json:"senderName"`
	Content    string `dynamodbav:"content" json:"content"`
}
