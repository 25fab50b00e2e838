package models

import "time"

// DynamoDB table names (prefixed at runtime with TABLE_PREFIX)
const (
	UsersTable          = "Users"
	ListingsTable       = "RoomListings"
	MatchRequestsTable  = "MatchRequests"
	MessagesTable       = "Messages"
	ConversationsTable  = "Conversations"
	CommonMessagesTable = "CommonMessages"
	EventsTable         = "Events"
	CoursesTable        = "Courses"
	FriendshipsTable    = "Friendships"
)

// Global secondary indexes
const (
	EmailIndex          = "EmailIndex"
	ListedByIndex       = "ListedByIndex"
	RequesterIndex      = "RequesterIndex"
	ListingOwnerIndex   = "ListingOwnerIndex"
	ListingRequestIndex = "ListingIndex"
)

// Real-time event names pushed to clients
const (
	EventNewMatchRequest       = "newMatchRequest"
	EventRequestAccepted       = "requestAccepted"
	EventRequestRejected       = "requestRejected"
	EventRequestWithdrawn      = "requestWithdrawn"
	EventRequestApproved       = "requestApproved"
	EventApprovalUpdated       = "approvalUpdated"
	EventExchangeCompleted     = "exchangeCompleted"
	EventSwapScheduled         = "swapScheduled"
	EventListingClosed         = "listingClosed"
	EventListingInterest       = "listingInterest"
	EventNewMessage            = "newMessage"
	EventMessagesRead          = "messagesRead"
	EventTyping                = "typing"
	EventNewCommonMessage      = "newCommonMessage"
	EventNewEvent              = "newEvent"
	EventFriendRequest         = "friendRequest"
	EventFriendRequestAccepted = "friendRequestAccepted"
)

// Topic rooms on the real-time channel
const (
	TopicEvents           = "events"
	CommonChatTopicPrefix = "chat:"
	DefaultCommonRoom     = "general"
)

// DefaultMatchRequestTTL is how long a request stays open without a response
const DefaultMatchRequestTTL = 7 * 24 * time.Hour

// TimestampLayout is fixed width so stored timestamps sort lexicographically
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Timestamp formats a time the way every record stores it
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a stored timestamp; the zero time is returned on failure
func ParseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
