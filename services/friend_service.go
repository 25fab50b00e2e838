package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"hostelswap_server/models"
	"hostelswap_server/utils"
)

const (
	FriendActionAccept = "accept"
	FriendActionReject = "reject"
)

type FriendRequestInput struct {
	UserID string `json:"userId" validate:"required"`
}

type FriendResponseInput struct {
	Action string `json:"action" validate:"required,oneof=accept reject"`
}

// FriendView is a friendship row with the other user's profile
type FriendView struct {
	models.Friendship
	Profile *models.PublicProfile `json:"profile,omitempty"`
}

// FriendRequests splits pending requests by direction
type FriendRequests struct {
	Incoming []FriendView `json:"incoming"`
	Outgoing []FriendView `json:"outgoing"`
}

type FriendService struct {
	Friends  FriendStore
	Users    UserStore
	Notifier Notifier
	Now      func() time.Time
}

func (s *FriendService) SendRequest(ctx context.Context, userID, targetID string) (*models.Friendship, error) {
	if userID == targetID {
		return nil, utils.NewValidationError("you cannot befriend yourself")
	}
	sender, err := s.Users.Get(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NewNotFoundError("user not found")
		}
		return nil, fmt.Errorf("failed to fetch sender: %w", err)
	}
	if _, err := s.Users.Get(ctx, targetID); err != nil {
		if isNotFound(err) {
			return nil, utils.NewNotFoundError("user not found")
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	now := models.Timestamp(s.Now())
	if err := s.Friends.CreateRequest(ctx, userID, targetID, now); err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return nil, utils.NewConflictError("a friendship or request already exists with this user")
		}
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}

	s.Notifier.NotifyUser(targetID, models.EventFriendRequest, sender.Public())
	log.Printf("✅ Friend request %s → %s", userID, targetID)
	return &models.Friendship{UserID: userID, FriendID: targetID, Status: models.FriendStatusRequested, CreatedAt: now, UpdatedAt: now}, nil
}

// Respond accepts or rejects the incoming request from requesterID
func (s *FriendService) Respond(ctx context.Context, userID, requesterID, action string) (*models.Friendship, error) {
	row, err := s.Friends.Get(ctx, userID, requesterID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NewNotFoundError("friend request not found")
		}
		return nil, fmt.Errorf("failed to fetch friend request: %w", err)
	}
	if row.Status != models.FriendStatusIncoming {
		return nil, utils.NewValidationError("only the recipient can respond to a pending request")
	}

	switch action {
	case FriendActionAccept:
		now := models.Timestamp(s.Now())
		if err := s.Friends.Accept(ctx, userID, requesterID, now); err != nil {
			if errors.Is(err, ErrConditionFailed) {
				return nil, utils.NewConflictError("friend request changed, reload and retry")
			}
			return nil, fmt.Errorf("failed to accept friend request: %w", err)
		}
		row.Status = models.FriendStatusAccepted
		row.UpdatedAt = now
		s.Notifier.NotifyUser(requesterID, models.EventFriendRequestAccepted, row)
		return row, nil
	case FriendActionReject:
		if err := s.Friends.Delete(ctx, userID, requesterID); err != nil {
			return nil, fmt.Errorf("failed to reject friend request: %w", err)
		}
		return nil, nil
	default:
		return nil, utils.NewValidationError("action must be accept or reject")
	}
}

func (s *FriendService) ListFriends(ctx context.Context, userID string) ([]FriendView, error) {
	rows, err := s.Friends.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch friends: %w", err)
	}
	friends := []FriendView{}
	for _, row := range rows {
		if row.Status == models.FriendStatusAccepted {
			friends = append(friends, s.view(ctx, row))
		}
	}
	return friends, nil
}

func (s *FriendService) ListRequests(ctx context.Context, userID string) (*FriendRequests, error) {
	rows, err := s.Friends.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch friend requests: %w", err)
	}
	requests := &FriendRequests{Incoming: []FriendView{}, Outgoing: []FriendView{}}
	for _, row := range rows {
		switch row.Status {
		case models.FriendStatusIncoming:
			requests.Incoming = append(requests.Incoming, s.view(ctx, row))
		case models.FriendStatusRequested:
			requests.Outgoing = append(requests.Outgoing, s.view(ctx, row))
		}
	}
	return requests, nil
}

// RemoveFriend deletes a friendship or cancels an outgoing request
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	if _, err := s.Friends.Get(ctx, userID, friendID); err != nil {
		if isNotFound(err) {
			return utils.NewNotFoundError("friendship not found")
		}
		return fmt.Errorf("failed to fetch friendship: %w", err)
	}
	if err := s.Friends.Delete(ctx, userID, friendID); err != nil {
		return fmt.Errorf("failed to remove friendship: %w", err)
	}
	return nil
}

func (s *FriendService) view(ctx context.Context, row models.Friendship) FriendView {
	v := FriendView{Friendship: row}
	if user, err := s.Users.Get(ctx, row.FriendID); err == nil {
		profile := user.Public()
		v.Profile = &profile
	}
	return v
}
