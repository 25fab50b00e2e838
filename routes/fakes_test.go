package routes

import (
	"context"
	"sort"
	"strings"
	"sync"

	"hostelswap_server/models"
	"hostelswap_server/services"
)

// memUsers, memListings and memRequests are just enough storage to drive the HTTP stack
type memUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func (s *memUsers) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.UserID]; ok {
		return services.ErrConditionFailed
	}
	s.users[user.UserID] = *user
	return nil
}

func (s *memUsers) Get(_ context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, services.ErrItemNotFound
	}
	return &u, nil
}

func (s *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, services.ErrItemNotFound
}

func (s *memUsers) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.UserID] = *user
	return nil
}

func (s *memUsers) Search(_ context.Context, query, hostel string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if (hostel == "" || u.Hostel == hostel) && strings.Contains(strings.ToLower(u.Name), strings.ToLower(query)) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

type memListings struct {
	mu       sync.Mutex
	listings map[string]models.RoomListing
}

func (s *memListings) Create(_ context.Context, l *models.RoomListing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ListingID] = *l
	return nil
}

func (s *memListings) Get(_ context.Context, id string) (*models.RoomListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, services.ErrItemNotFound
	}
	return &l, nil
}

func (s *memListings) Save(_ context.Context, l *models.RoomListing, expected int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listings[l.ListingID].Version != expected {
		return services.ErrListingConflict
	}
	l.Version = expected + 1
	s.listings[l.ListingID] = *l
	return nil
}

func (s *memListings) filter(keep func(models.RoomListing) bool) []models.RoomListing {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.RoomListing
	for _, l := range s.listings {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func (s *memListings) ListByOwner(_ context.Context, ownerID string) ([]models.RoomListing, error) {
	return s.filter(func(l models.RoomListing) bool { return l.ListedBy == ownerID }), nil
}

func (s *memListings) ListActive(_ context.Context) ([]models.RoomListing, error) {
	return s.filter(func(l models.RoomListing) bool { return l.IsActive }), nil
}

func (s *memListings) AddInterest(_ context.Context, id, userID, updatedAt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return services.ErrConditionFailed
	}
	if !l.HasInterest(userID) {
		l.InterestedUsers = append(append([]string{}, l.InterestedUsers...), userID)
	}
	if l.Status == models.ListingStatusOpen {
		l.Status = models.ListingStatusBidding
	}
	l.UpdatedAt = updatedAt
	l.Version++
	s.listings[id] = l
	return nil
}

func (s *memListings) RemoveInterest(_ context.Context, id, userID, updatedAt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return services.ErrConditionFailed
	}
	var kept []string
	for _, u := range l.InterestedUsers {
		if u != userID {
			kept = append(kept, u)
		}
	}
	l.InterestedUsers = kept
	l.UpdatedAt = updatedAt
	l.Version++
	s.listings[id] = l
	return nil
}

type memRequests struct {
	mu       sync.Mutex
	requests map[string]models.MatchRequest
	users    *memUsers
	listings *memListings
}

func (s *memRequests) Create(_ context.Context, r *models.MatchRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[r.RequestID] = *r
	return nil
}

func (s *memRequests) Get(_ context.Context, id string) (*models.MatchRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, services.ErrItemNotFound
	}
	r.Approvals = append([]models.Approval(nil), r.Approvals...)
	return &r, nil
}

func (s *memRequests) Save(_ context.Context, r *models.MatchRequest, expected int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.requests[r.RequestID].Version != expected {
		return services.ErrVersionConflict
	}
	r.Version = expected + 1
	stored := *r
	stored.Approvals = append([]models.Approval(nil), r.Approvals...)
	s.requests[r.RequestID] = stored
	return nil
}

func (s *memRequests) list(keep func(models.MatchRequest) bool) []models.MatchRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.MatchRequest
	for _, r := range s.requests {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *memRequests) ListByRequester(_ context.Context, id string) ([]models.MatchRequest, error) {
	return s.list(func(r models.MatchRequest) bool { return r.RequesterID == id }), nil
}

func (s *memRequests) ListByOwner(_ context.Context, id string) ([]models.MatchRequest, error) {
	return s.list(func(r models.MatchRequest) bool { return r.ListingOwnerID == id }), nil
}

func (s *memRequests) ListByListing(_ context.Context, id string) ([]models.MatchRequest, error) {
	return s.list(func(r models.MatchRequest) bool { return r.ListingID == id }), nil
}

func (s *memRequests) ListActive(_ context.Context) ([]models.MatchRequest, error) {
	return s.list(func(r models.MatchRequest) bool { return r.IsActive }), nil
}

// ExecuteSwap mirrors the guarded transaction of the DynamoDB store
func (s *memRequests) ExecuteSwap(_ context.Context, plan services.SwapPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users.mu.Lock()
	defer s.users.mu.Unlock()
	s.listings.mu.Lock()
	defer s.listings.mu.Unlock()

	req := s.requests[plan.RequestID]
	requester, owner := s.users.users[plan.RequesterID], s.users.users[plan.OwnerID]
	listing := s.listings.listings[plan.ListingID]
	holds := func(u models.User, room models.RoomDetails) bool {
		return u.CurrentRoom != nil && u.CurrentRoom.Hostel == room.Hostel && u.CurrentRoom.RoomNumber == room.RoomNumber
	}
	switch {
	case req.SwapDetails.Completed || req.Status != models.MatchStatusAccepted:
		return services.ErrSwapAlreadyCompleted
	case !holds(requester, plan.RequesterRoom) || !holds(owner, plan.OwnerRoom):
		return services.ErrRoomChanged
	case !listing.IsActive || listing.Status == models.ListingStatusClosed:
		return services.ErrListingUnavailable
	}

	req.SwapDetails.Completed = true
	req.SwapDetails.CompletedAt = plan.CompletedAt
	req.Version++
	s.requests[plan.RequestID] = req

	ownerRoom, requesterRoom := plan.OwnerRoom, plan.RequesterRoom
	requester.CurrentRoom, requester.Hostel = &ownerRoom, ownerRoom.Hostel
	owner.CurrentRoom, owner.Hostel = &requesterRoom, requesterRoom.Hostel
	s.users.users[plan.RequesterID], s.users.users[plan.OwnerID] = requester, owner

	listing.Status, listing.IsActive = models.ListingStatusClosed, false
	listing.Version++
	s.listings.listings[plan.ListingID] = listing
	return nil
}

type fakePresence struct {
	ids []string
}

func (p *fakePresence) OnlineUsers() []string { return p.ids }
