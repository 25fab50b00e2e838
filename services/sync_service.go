package services

import (
	"context"
	"fmt"
	"time"

	"hostelswap_server/models"
)

// SyncResult is everything that changed for a user since a point in time
type SyncResult struct {
	MatchRequests  []models.MatchRequest `json:"matchRequests"`
	Conversations  []models.Conversation `json:"conversations"`
	FriendRequests []models.Friendship   `json:"friendRequests"`
	ServerTime     string                `json:"serverTime"`
}

// SyncService lets clients that missed real-time events catch up
type SyncService struct {
	Requests MatchRequestStore
	Messages MessageStore
	Friends  FriendStore
	Now      func() time.Time
}

func (s *SyncService) Since(ctx context.Context, userID string, since time.Time) (*SyncResult, error) {
	cutoff := models.Timestamp(since)
	result := &SyncResult{
		MatchRequests:  []models.MatchRequest{},
		Conversations:  []models.Conversation{},
		FriendRequests: []models.Friendship{},
		ServerTime:     models.Timestamp(s.Now()),
	}

	sent, err := s.Requests.ListByRequester(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sent requests: %w", err)
	}
	received, err := s.Requests.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch received requests: %w", err)
	}
	for _, r := range append(sent, received...) {
		if r.UpdatedAt > cutoff {
			result.MatchRequests = append(result.MatchRequests, r)
		}
	}
	sortRequests(result.MatchRequests)

	conversations, err := s.Messages.ListConversations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversations: %w", err)
	}
	for _, c := range conversations {
		if c.LastMessageAt > cutoff {
			result.Conversations = append(result.Conversations, c)
		}
	}

	friendships, err := s.Friends.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch friend requests: %w", err)
	}
	for _, f := range friendships {
		if f.Status == models.FriendStatusIncoming && f.UpdatedAt > cutoff {
			result.FriendRequests = append(result.FriendRequests, f)
		}
	}
	return result, nil
}
