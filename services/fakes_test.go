package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"hostelswap_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// clone deep-copies a record through its DynamoDB representation, as a real store round trip would
func clone[T any](in T) T {
	var out T
	av, err := attributevalue.MarshalMap(in)
	if err != nil {
		panic(err)
	}
	if err := attributevalue.UnmarshalMap(av, &out); err != nil {
		panic(err)
	}
	return out
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	s := &fakeUserStore{users: map[string]models.User{}}
	for _, u := range users {
		s.users[u.UserID] = clone(u)
	}
	return s
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.UserID]; ok {
		return ErrConditionFailed
	}
	s.users[user.UserID] = clone(*user)
	return nil
}

func (s *fakeUserStore) Get(_ context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, ErrItemNotFound
	}
	c := clone(u)
	return &c, nil
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	var id string
	for _, u := range s.users {
		if u.Email == email {
			id = u.UserID
		}
	}
	s.mu.Unlock()
	if id == "" {
		return nil, ErrItemNotFound
	}
	return s.Get(ctx, id)
}

func (s *fakeUserStore) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.UserID]; !ok {
		return ErrConditionFailed
	}
	s.users[user.UserID] = clone(*user)
	return nil
}

func (s *fakeUserStore) Search(_ context.Context, query, hostel string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if !u.IsActive {
			continue
		}
		if hostel != "" && u.Hostel != hostel {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(query)) {
			continue
		}
		out = append(out, clone(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

type fakeListingStore struct {
	mu       sync.Mutex
	listings map[string]models.RoomListing
}

func newFakeListingStore(listings ...models.RoomListing) *fakeListingStore {
	s := &fakeListingStore{listings: map[string]models.RoomListing{}}
	for _, l := range listings {
		s.listings[l.ListingID] = clone(l)
	}
	return s
}

func (s *fakeListingStore) Create(_ context.Context, listing *models.RoomListing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[listing.ListingID]; ok {
		return ErrConditionFailed
	}
	s.listings[listing.ListingID] = clone(*listing)
	return nil
}

func (s *fakeListingStore) Get(_ context.Context, listingID string) (*models.RoomListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[listingID]
	if !ok {
		return nil, ErrItemNotFound
	}
	c := clone(l)
	return &c, nil
}

// Save emulates the version compare-and-swap of the DynamoDB store
func (s *fakeListingStore) Save(_ context.Context, listing *models.RoomListing, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.listings[listing.ListingID]
	if !ok || stored.Version != expectedVersion {
		return ErrListingConflict
	}
	listing.Version = expectedVersion + 1
	s.listings[listing.ListingID] = clone(*listing)
	return nil
}

func (s *fakeListingStore) ListByOwner(_ context.Context, ownerID string) ([]models.RoomListing, error) {
	return s.filter(func(l models.RoomListing) bool { return l.ListedBy == ownerID }), nil
}

func (s *fakeListingStore) ListActive(_ context.Context) ([]models.RoomListing, error) {
	return s.filter(func(l models.RoomListing) bool { return l.IsActive }), nil
}

func (s *fakeListingStore) filter(keep func(models.RoomListing) bool) []models.RoomListing {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.RoomListing
	for _, l := range s.listings {
		if keep(l) {
			out = append(out, clone(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ListingID < out[j].ListingID })
	return out
}

func (s *fakeListingStore) AddInterest(_ context.Context, listingID, userID, updatedAt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[listingID]
	if !ok {
		return ErrConditionFailed
	}
	if !l.HasInterest(userID) {
		l.InterestedUsers = append(l.InterestedUsers, userID)
	}
	if l.Status == models.ListingStatusOpen {
		l.Status = models.ListingStatusBidding
	}
	l.UpdatedAt = updatedAt
	l.Version++
	s.listings[listingID] = l
	return nil
}

func (s *fakeListingStore) RemoveInterest(_ context.Context, listingID, userID, updatedAt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[listingID]
	if !ok {
		return ErrConditionFailed
	}
	kept := l.InterestedUsers[:0:0]
	for _, id := range l.InterestedUsers {
		if id != userID {
			kept = append(kept, id)
		}
	}
	l.InterestedUsers = kept
	l.UpdatedAt = updatedAt
	l.Version++
	s.listings[listingID] = l
	return nil
}

// fakeMatchRequestStore emulates the version compare-and-swap of the DynamoDB store
type fakeMatchRequestStore struct {
	mu       sync.Mutex
	requests map[string]models.MatchRequest
	saves    int
}

func newFakeMatchRequestStore(reqs ...models.MatchRequest) *fakeMatchRequestStore {
	s := &fakeMatchRequestStore{requests: map[string]models.MatchRequest{}}
	for _, r := range reqs {
		s.requests[r.RequestID] = clone(r)
	}
	return s
}

func (s *fakeMatchRequestStore) Create(_ context.Context, req *models.MatchRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[req.RequestID]; ok {
		return ErrConditionFailed
	}
	s.requests[req.RequestID] = clone(*req)
	return nil
}

func (s *fakeMatchRequestStore) Get(_ context.Context, requestID string) (*models.MatchRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok {
		return nil, ErrItemNotFound
	}
	c := clone(r)
	return &c, nil
}

func (s *fakeMatchRequestStore) Save(_ context.Context, req *models.MatchRequest, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.requests[req.RequestID]
	if !ok || stored.Version != expectedVersion {
		return ErrVersionConflict
	}
	req.Version = expectedVersion + 1
	s.requests[req.RequestID] = clone(*req)
	s.saves++
	return nil
}

func (s *fakeMatchRequestStore) list(keep func(models.MatchRequest) bool) []models.MatchRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.MatchRequest
	for _, r := range s.requests {
		if keep(r) {
			out = append(out, clone(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestID < out[j].RequestID })
	return out
}

func (s *fakeMatchRequestStore) ListByRequester(_ context.Context, requesterID string) ([]models.MatchRequest, error) {
	return s.list(func(r models.MatchRequest) bool { return r.RequesterID == requesterID }), nil
}

func (s *fakeMatchRequestStore) ListByOwner(_ context.Context, ownerID string) ([]models.MatchRequest, error) {
	return s.list(func(r models.MatchRequest) bool { return r.ListingOwnerID == ownerID }), nil
}

func (s *fakeMatchRequestStore) ListByListing(_ context.Context, listingID string) ([]models.MatchRequest, error) {
	return s.list(func(r models.MatchRequest) bool { return r.ListingID == listingID }), nil
}

func (s *fakeMatchRequestStore) ListActive(_ context.Context) ([]models.MatchRequest, error) {
	return s.list(func(r models.MatchRequest) bool { return r.IsActive }), nil
}

func (s *fakeMatchRequestStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// fakeSwapExecutor applies a SwapPlan to the fake stores with the same guards as the transaction
type fakeSwapExecutor struct {
	requests *fakeMatchRequestStore
	users    *fakeUserStore
	listings *fakeListingStore
	failWith error
	applied  int
}

func sameRoom(held *models.RoomDetails, planned models.RoomDetails) bool {
	return held != nil && held.Hostel == planned.Hostel && held.Block == planned.Block && held.RoomNumber == planned.RoomNumber
}

func (e *fakeSwapExecutor) ExecuteSwap(_ context.Context, plan SwapPlan) error {
	if e.failWith != nil {
		return e.failWith
	}
	e.requests.mu.Lock()
	defer e.requests.mu.Unlock()
	e.users.mu.Lock()
	defer e.users.mu.Unlock()
	e.listings.mu.Lock()
	defer e.listings.mu.Unlock()

	req := e.requests.requests[plan.RequestID]
	requester := e.users.users[plan.RequesterID]
	owner := e.users.users[plan.OwnerID]
	listing := e.listings.listings[plan.ListingID]
	switch {
	case req.SwapDetails.Completed || req.Status != models.MatchStatusAccepted:
		return ErrSwapAlreadyCompleted
	case !sameRoom(requester.CurrentRoom, plan.RequesterRoom) || !sameRoom(owner.CurrentRoom, plan.OwnerRoom):
		return ErrRoomChanged
	case !listing.IsActive || listing.Status == models.ListingStatusClosed:
		return ErrListingUnavailable
	}

	req.SwapDetails.Completed = true
	req.SwapDetails.CompletedAt = plan.CompletedAt
	req.UpdatedAt = plan.CompletedAt
	req.Version++
	e.requests.requests[plan.RequestID] = req

	ownerRoom, requesterRoom := plan.OwnerRoom, plan.RequesterRoom
	requester.CurrentRoom, requester.Hostel = &ownerRoom, ownerRoom.Hostel
	owner.CurrentRoom, owner.Hostel = &requesterRoom, requesterRoom.Hostel
	e.users.users[plan.RequesterID] = requester
	e.users.users[plan.OwnerID] = owner

	listing.Status = models.ListingStatusClosed
	listing.IsActive = false
	listing.Version++
	e.listings.listings[plan.ListingID] = listing

	e.applied++
	return nil
}

type fakeMessageStore struct {
	mu            sync.Mutex
	messages      []models.Message
	conversations map[string]models.Conversation
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{conversations: map[string]models.Conversation{}}
}

func (s *fakeMessageStore) PutMessage(_ context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *fakeMessageStore) ListMessages(_ context.Context, conversationID string, limit int32) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].ConversationID == conversationID {
			out = append(out, s.messages[i])
		}
		if limit > 0 && int32(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeMessageStore) ListUnread(_ context.Context, conversationID, receiverID string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for _, m := range s.messages {
		if m.ConversationID == conversationID && m.ReceiverID == receiverID && !m.IsRead {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeMessageStore) MarkRead(_ context.Context, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].MessageID == msg.MessageID {
			s.messages[i].IsRead = true
		}
	}
	return nil
}

func (s *fakeMessageStore) TouchConversation(_ context.Context, conv models.Conversation, unread int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := conv.UserID + "|" + conv.PeerID
	existing := s.conversations[key]
	conv.UnreadCount = existing.UnreadCount + unread
	s.conversations[key] = conv
	return nil
}

func (s *fakeMessageStore) ResetUnread(_ context.Context, userID, peerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := userID + "|" + peerID
	if c, ok := s.conversations[key]; ok {
		c.UnreadCount = 0
		s.conversations[key] = c
	}
	return nil
}

func (s *fakeMessageStore) ListConversations(_ context.Context, userID string) ([]models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Conversation
	for _, c := range s.conversations {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeFriendStore struct {
	mu   sync.Mutex
	rows map[string]models.Friendship
}

func newFakeFriendStore() *fakeFriendStore {
	return &fakeFriendStore{rows: map[string]models.Friendship{}}
}

func friendRowKey(userID, friendID string) string { return userID + "|" + friendID }

func (s *fakeFriendStore) Get(_ context.Context, userID, friendID string) (*models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.rows[friendRowKey(userID, friendID)]
	if !ok {
		return nil, ErrItemNotFound
	}
	return &f, nil
}

func (s *fakeFriendStore) List(_ context.Context, userID string) ([]models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Friendship
	for _, f := range s.rows {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FriendID < out[j].FriendID })
	return out, nil
}

func (s *fakeFriendStore) CreateRequest(_ context.Context, fromID, toID, now string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[friendRowKey(fromID, toID)]; ok {
		return &TransactionConditionError{Index: 0}
	}
	if _, ok := s.rows[friendRowKey(toID, fromID)]; ok {
		return &TransactionConditionError{Index: 1}
	}
	s.rows[friendRowKey(fromID, toID)] = models.Friendship{UserID: fromID, FriendID: toID, Status: models.FriendStatusRequested, CreatedAt: now, UpdatedAt: now}
	s.rows[friendRowKey(toID, fromID)] = models.Friendship{UserID: toID, FriendID: fromID, Status: models.FriendStatusIncoming, CreatedAt: now, UpdatedAt: now}
	return nil
}

func (s *fakeFriendStore) Accept(_ context.Context, toID, fromID, now string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, out := s.rows[friendRowKey(toID, fromID)], s.rows[friendRowKey(fromID, toID)]
	if in.Status != models.FriendStatusIncoming || out.Status != models.FriendStatusRequested {
		return ErrConditionFailed
	}
	in.Status, out.Status = models.FriendStatusAccepted, models.FriendStatusAccepted
	in.UpdatedAt, out.UpdatedAt = now, now
	s.rows[friendRowKey(toID, fromID)] = in
	s.rows[friendRowKey(fromID, toID)] = out
	return nil
}

func (s *fakeFriendStore) Delete(_ context.Context, userID, friendID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, friendRowKey(userID, friendID))
	delete(s.rows, friendRowKey(friendID, userID))
	return nil
}

type notification struct {
	UserID  string
	Topic   string
	Event   string
	Payload interface{}
}

// recordingNotifier captures every notification for assertions
type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) NotifyUser(userID, event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{UserID: userID, Event: event, Payload: payload})
}

func (n *recordingNotifier) NotifyTopic(topic, event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{Topic: topic, Event: event, Payload: payload})
}

// eventsFor lists the events delivered to userID in order
func (n *recordingNotifier) eventsFor(userID string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var events []string
	for _, s := range n.sent {
		if s.UserID == userID {
			events = append(events, s.Event)
		}
	}
	return events
}

var errStoreDown = errors.New("store unavailable")
