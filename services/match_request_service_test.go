package services

import (
	"context"
	"testing"
	"time"

	"hostelswap_server/models"
	"hostelswap_server/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validMessage = "Would love to swap rooms with you"

var (
	roomA = models.RoomDetails{Hostel: "Ganga", Block: "A", RoomNumber: "101", Floor: 1, RoomType: models.RoomTypeDouble}
	roomB = models.RoomDetails{Hostel: "Yamuna", Block: "B", RoomNumber: "202", Floor: 2, RoomType: models.RoomTypeSingle}
	roomC = models.RoomDetails{Hostel: "Ganga", Block: "C", RoomNumber: "303", Floor: 3, RoomType: models.RoomTypeTriple}
)

type exchangeFixture struct {
	users    *fakeUserStore
	listings *fakeListingStore
	requests *fakeMatchRequestStore
	swaps    *fakeSwapExecutor
	notifier *recordingNotifier
	svc      *MatchRequestService
}

func newUser(id, gender string, room *models.RoomDetails) models.User {
	u := models.User{UserID: id, Name: id, Email: id + "@hostel.edu", Gender: gender, IsActive: true}
	if room != nil {
		r := *room
		u.CurrentRoom = &r
		u.Hostel = r.Hostel
	}
	return u
}

func newExchangeFixture(t *testing.T) *exchangeFixture {
	t.Helper()
	users := newFakeUserStore(
		newUser("requester", models.GenderMale, &roomA),
		newUser("owner", models.GenderMale, &roomB),
		newUser("second", models.GenderMale, &roomC),
		newUser("outsider", models.GenderMale, &roomC),
		newUser("roomless", models.GenderMale, nil),
		newUser("other-gender", models.GenderFemale, &roomC),
	)
	listings := newFakeListingStore(models.RoomListing{
		ListingID:     "listing-1",
		ListedBy:      "owner",
		OwnerGender:   models.GenderMale,
		CurrentRoom:   roomB,
		Status:        models.ListingStatusOpen,
		IsActive:      true,
		AvailableTill: models.Timestamp(testNow.Add(30 * 24 * time.Hour)),
		CreatedAt:     models.Timestamp(testNow.Add(-time.Hour)),
		UpdatedAt:     models.Timestamp(testNow.Add(-time.Hour)),
	})
	requests := newFakeMatchRequestStore()
	swaps := &fakeSwapExecutor{requests: requests, users: users, listings: listings}
	notifier := &recordingNotifier{}

	return &exchangeFixture{
		users:    users,
		listings: listings,
		requests: requests,
		swaps:    swaps,
		notifier: notifier,
		svc: &MatchRequestService{
			Requests: requests,
			Swaps:    swaps,
			Listings: listings,
			Users:    users,
			Notifier: notifier,
			Now:      fixedClock,
			TTL:      7 * 24 * time.Hour,
		},
	}
}

func (f *exchangeFixture) create(t *testing.T, requesterID string) *models.MatchRequest {
	t.Helper()
	req, err := f.svc.CreateRequest(context.Background(), requesterID, CreateMatchRequestInput{ListingID: "listing-1", Message: validMessage})
	require.NoError(t, err)
	return req
}

func (f *exchangeFixture) accepted(t *testing.T, requesterID string) *models.MatchRequest {
	t.Helper()
	req := f.create(t, requesterID)
	req, err := f.svc.Respond(context.Background(), req.RequestID, "owner", RespondInput{Status: models.MatchStatusAccepted})
	require.NoError(t, err)
	return req
}

func (f *exchangeFixture) listing(t *testing.T) *models.RoomListing {
	t.Helper()
	l, err := f.listings.Get(context.Background(), "listing-1")
	require.NoError(t, err)
	return l
}

func (f *exchangeFixture) user(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := f.users.Get(context.Background(), id)
	require.NoError(t, err)
	return u
}

func assertKind(t *testing.T, err error, kind utils.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, kind), "expected kind %v, got %v", kind, err)
}

func TestCreateRequest_Success(t *testing.T) {
	f := newExchangeFixture(t)

	req := f.create(t, "requester")

	assert.Equal(t, models.MatchStatusPending, req.Status)
	assert.True(t, req.IsActive)
	assert.Equal(t, "owner", req.ListingOwnerID)
	assert.Equal(t, 1, req.Version)
	assert.Equal(t, models.Timestamp(testNow.Add(7*24*time.Hour)), req.ExpiresAt)
	assert.Empty(t, req.Approvals)
	assert.False(t, req.SwapDetails.Completed)

	listing := f.listing(t)
	assert.Equal(t, models.ListingStatusBidding, listing.Status)
	assert.True(t, listing.HasInterest("requester"))
	assert.Equal(t, []string{models.EventNewMatchRequest}, f.notifier.eventsFor("owner"))
}

func TestCreateRequest_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		requester string
		message   string
		prepare   func(l *models.RoomListing)
		kind      utils.ErrorKind
	}{
		{name: "short message", requester: "requester", message: "  too short ", kind: utils.KindValidation},
		{name: "own listing", requester: "owner", message: validMessage, kind: utils.KindValidation},
		{name: "inactive listing", requester: "requester", message: validMessage, kind: utils.KindValidation,
			prepare: func(l *models.RoomListing) { l.IsActive = false }},
		{name: "closed listing", requester: "requester", message: validMessage, kind: utils.KindValidation,
			prepare: func(l *models.RoomListing) { l.Status = models.ListingStatusClosed }},
		{name: "expired listing", requester: "requester", message: validMessage, kind: utils.KindValidation,
			prepare: func(l *models.RoomListing) { l.AvailableTill = models.Timestamp(testNow.Add(-time.Minute)) }},
		{name: "gender mismatch", requester: "other-gender", message: validMessage, kind: utils.KindValidation},
		{name: "requester without room", requester: "roomless", message: validMessage, kind: utils.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newExchangeFixture(t)
			if tt.prepare != nil {
				l := f.listing(t)
				tt.prepare(l)
				require.NoError(t, f.listings.Save(context.Background(), l, l.Version))
			}
			before := f.listing(t)

			_, err := f.svc.CreateRequest(context.Background(), tt.requester, CreateMatchRequestInput{ListingID: "listing-1", Message: tt.message})

			assertKind(t, err, tt.kind)
			assert.Zero(t, f.requests.count())
			assert.Equal(t, before, f.listing(t))
			assert.Empty(t, f.notifier.sent)
		})
	}
}

func TestCreateRequest_ListingNotFound(t *testing.T) {
	f := newExchangeFixture(t)

	_, err := f.svc.CreateRequest(context.Background(), "requester", CreateMatchRequestInput{ListingID: "missing", Message: validMessage})

	assertKind(t, err, utils.KindNotFound)
	assert.Zero(t, f.requests.count())
}

func TestCreateRequest_DuplicateActiveRequest(t *testing.T) {
	f := newExchangeFixture(t)
	f.create(t, "requester")

	_, err := f.svc.CreateRequest(context.Background(), "requester", CreateMatchRequestInput{ListingID: "listing-1", Message: validMessage})

	assertKind(t, err, utils.KindConflict)
	assert.Equal(t, 1, f.requests.count())
}

func TestCreateRequest_AllowedAfterPreviousExpired(t *testing.T) {
	f := newExchangeFixture(t)
	first := f.create(t, "requester")
	first.ExpiresAt = models.Timestamp(testNow.Add(-time.Minute))
	require.NoError(t, f.requests.Save(context.Background(), first, first.Version))

	_, err := f.svc.CreateRequest(context.Background(), "requester", CreateMatchRequestInput{ListingID: "listing-1", Message: validMessage})

	require.NoError(t, err)
	assert.Equal(t, 2, f.requests.count())
}

func TestRespond_OwnerAccepts(t *testing.T) {
	f := newExchangeFixture(t)
	req := f.create(t, "requester")

	updated, err := f.svc.Respond(context.Background(), req.RequestID, "owner", RespondInput{Status: models.MatchStatusAccepted, ResponseMessage: " sure "})

	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusAccepted, updated.Status)
	assert.True(t, updated.IsActive)
	assert.Equal(t, "sure", updated.ResponseMessage)
	assert.Equal(t, models.Timestamp(testNow), updated.RespondedAt)
	assert.Equal(t, 2, updated.Version)
	assert.Contains(t, f.notifier.eventsFor("requester"), models.EventRequestAccepted)
}

func TestRespond_OwnerRejectsDeactivates(t *testing.T) {
	f := newExchangeFixture(t)
	req := f.create(t, "requester")

	updated, err := f.svc.Respond(context.Background(), req.RequestID, "owner", RespondInput{Status: models.MatchStatusRejected})

	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusRejected, updated.Status)
	assert.False(t, updated.IsActive)
	assert.Contains(t, f.notifier.eventsFor("requester"), models.EventRequestRejected)
}

func TestRespond_RequesterWithdraws(t *testing.T) {
	f := newExchangeFixture(t)
	req := f.create(t, "requester")

	updated, err := f.svc.Respond(context.Background(), req.RequestID, "requester", RespondInput{Status: models.MatchStatusWithdrawn})

	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusWithdrawn, updated.Status)
	assert.False(t, updated.IsActive)
	assert.Empty(t, updated.RespondedAt)
	assert.False(t, f.listing(t).HasInterest("requester"))
	assert.Contains(t, f.notifier.eventsFor("owner"), models.EventRequestWithdrawn)
}

func TestRespond_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name   string
		user   string
		status string
		kind   utils.ErrorKind
	}{
		{"requester cannot accept", "requester", models.MatchStatusAccepted, utils.KindValidation},
		{"owner cannot withdraw", "owner", models.MatchStatusWithdrawn, utils.KindValidation},
		{"outsider forbidden", "outsider", models.MatchStatusRejected, utils.KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newExchangeFixture(t)
			req := f.create(t, "requester")

			_, err := f.svc.Respond(context.Background(), req.RequestID, tt.user, RespondInput{Status: tt.status})

			assertKind(t, err, tt.kind)
			stored, _ := f.requests.Get(context.Background(), req.RequestID)
			assert.Equal(t, models.MatchStatusPending, stored.Status)
			assert.Equal(t, 1, stored.Version)
		})
	}
}

func TestRespond_NotPendingOrExpired(t *testing.T) {
	f := newExchangeFixture(t)
	req := f.accepted(t, "requester")

	_, err := f.svc.Respond(context.Background(), req.RequestID, "owner", RespondInput{Status: models.MatchStatusRejected})
	assertKind(t, err, utils.KindValidation)

	f2 := newExchangeFixture(t)
	pending := f2.create(t, "requester")
	f2.svc.Now = func() time.Time { return testNow.Add(8 * 24 * time.Hour) }

	_, err = f2.svc.Respond(context.Background(), pending.RequestID, "owner", RespondInput{Status: models.MatchStatusAccepted})
	assertKind(t, err, utils.KindValidation)
}

// racingRequestStore bumps the stored version right after every read, as a concurrent writer would
type racingRequestStore struct {
	*fakeMatchRequestStore
}

func (s racingRequestStore) Get(ctx context.Context, requestID string) (*models.MatchRequest, error) {
	req, err := s.fakeMatchRequestStore.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	stored := s.requests[requestID]
	stored.Version++
	s.requests[requestID] = stored
	s.mu.Unlock()
	return req, nil
}

func TestRespond_StaleWriteConflicts(t *testing.T) {
	f := newExchangeFixture(t)
	req := f.create(t, "requester")
	f.svc.Requests = racingRequestStore{f.requests}

	_, err := f.svc.Respond(context.Background(), req.RequestID, "owner", RespondInput{Status: models.MatchStatusAccepted})

	assertKind(t, err, utils.KindConflict)
	assert.ErrorIs(t, err, ErrVersionConflict)
	stored, _ := f.requests.Get(context.Background(), req.RequestID)
	assert.Equal(t, models.MatchStatusPending, stored.Status)
}

func TestApprove_StaleWriteConflicts(t *testing.T) {
	f := newExchangeFixture(t)
	req := f.accepted(t, "requester")
	f.svc.Requests = racingRequestStore{f.requests}

	_, err := f.svc.Approve(context.Background(), req.RequestID, "owner", true, "")

	assertKind(t, err, utils.KindConflict)
	stored, _ := f.requests.Get(context.Background(), req.RequestID)
	assert.Empty(t, stored.Approvals)
}

func TestApprove_FullExchangeSwapsRooms(t *testing.T) {
	f := newExchangeFixture(t)
	req := f.accepted(t, "requester")

	afterOwner, err := f.svc.Approve(context.Background(), req.RequestID, "owner", true, "ok")
	require.NoError(t, err)
	assert.False(t, afterOwner.SwapDetails.Completed)
	assert.Equal(t, models.ApprovalAwaiting, afterOwner.Outcome())
	assert.Contains(t, f.notifier.eventsFor("requester"), models.EventApprovalUpdated)

	done, err := f.svc.Approve(context.Background(), req.RequestID, "requester", true, "")
	require.NoError(t, err)

	assert.True(t, done.SwapDetails.Completed)
	assert.Equal(t, models.Timestamp(testNow), done.SwapDetails.CompletedAt)
	assert.Equal(t, 1, f.swaps.applied)

	assert.Equal(t, roomB, *f.user(t, "requester").CurrentRoom)
	assert.Equal(t, roomA, *f.user(t, "owner").CurrentRoom)
	listing := f.listing(t)
	assert.Equal(t, models.ListingStatusClosed, listing.Status)
	assert.False(t, listing.IsActive)

	assert.Contains(t, f.notifier.eventsFor("requester"), models.EventExchangeCompleted)
	assert.Contains(t, f.notifier.eventsFor("owner"), models.EventExchangeCompleted)
}

func TestApprove_FalseRejectsWithoutSwap(t *testing.T) {
	f := newExchangeFixture(t)
	req := f.accepted(t, "requester")

	_, err := f.svc.Approve(context.Background(), req.RequestID, "owner", true, "")
	require.NoError(t, err)
	rejected, err := f.svc.Approve(context.Background(), req.RequestID, "requester", false, "changed my mind")
	require.NoError(t, err)

	assert.Equal(t, models.MatchStatusRejected, rejected.Status)
	assert.False(t, rejected.IsActive)
	assert.False(t, rejected.SwapDetails.Completed)
	assert.Zero(t, f.swaps.applied)
	assert.Equal(t, roomA, *f.user(t, "requester").CurrentRoom)
	assert.Equal(t, models.ListingStatusBidding, f.listing(t).Status)
	assert.Contains(t, f.notifier.eventsFor("owner"), models.EventRequestRejected)
}

func TestApprove_LastWriteWinsPerUser(t *testing.T) {
	f := newExchangeFixture(t)
	req := f.accepted(t, "requester")

	_, err := f.svc.Approve(context.Background(), req.RequestID, "owner", true, "first")
	require.NoError(t, err)
	updated, err := f.svc.Approve(context.Background(), req.RequestID, "owner", true, "second")
	require.NoError(t, err)

	require.Len(t, updated.Approvals, 1)
	assert.Equal(t, "second", updated.Approvals[0].Comments)
	assert.Equal(t, models.ApprovalAwaiting, updated.Outcome())
	assert.Zero(t, f.swaps.applied)
}

func TestApprove_RequiresAcceptedParty(t *testing.T) {
	f := newExchangeFixture(t)
	pending := f.create(t, "requester")

	_, err := f.svc.Approve(context.Background(), pending.RequestID, "owner", true, "")
	assertKind(t, err, utils.KindValidation)

	_, err = f.svc.Approve(context.Background(), pending.RequestID, "outsider", true, "")
	assertKind(t, err, utils.KindForbidden)

	_, err = f.svc.Approve(context.Background(), "missing", "owner", true, "")
	assertKind(t, err, utils.KindNotFound)
}

func TestApprove_ReplayAfterCompletionIsNoop(t *testing.T) {
	f := newExchangeFixture(t)
	req := f.accepted(t, "requester")
	_, err := f.svc.Approve(context.Background(), req.RequestID, "owner", true, "")
	require.NoError(t, err)
	done, err := f.svc.Approve(context.Background(), req.RequestID, "requester", true, "")
	require.NoError(t, err)

	replay, err := f.svc.Approve(context.Background(), req.RequestID, "requester", false, "too late")

	require.NoError(t, err)
	assert.Equal(t, done, replay)
	assert.Equal(t, 1, f.swaps.applied)
	assert.Equal(t, roomB, *f.user(t, "requester").CurrentRoom)
}

func TestCompleteSwap_RetriesAfterFailureExactlyOnce(t *testing.T) {
	f := newExchangeFixture(t)
	req := f.accepted(t, "requester")
	_, err := f.svc.Approve(context.Background(), req.RequestID, "owner", true, "")
	require.NoError(t, err)

	f.swaps.failWith = errStoreDown
	approved, err := f.svc.Approve(context.Background(), req.RequestID, "requester", true, "")
	require.NoError(t, err)
	assert.False(t, approved.SwapDetails.Completed)
	assert.Equal(t, models.ApprovalApproved, approved.Outcome())
	assert.Equal(t, roomA, *f.user(t, "requester").CurrentRoom)

	f.swaps.failWith = nil
	done, err := f.svc.CompleteSwap(context.Background(), req.RequestID, "owner")
	require.NoError(t, err)
	assert.True(t, done.SwapDetails.Completed)

	again, err := f.svc.CompleteSwap(context.Background(), req.RequestID, "requester")
	require.NoError(t, err)
	assert.True(t, again.SwapDetails.Completed)
	assert.Equal(t, 1, f.swaps.applied)
	assert.Equal(t, roomB, *f.user(t, "requester").CurrentRoom)
	assert.Equal(t, roomA, *f.user(t, "owner").CurrentRoom)
}

func TestCompleteSwap_RequiresBothApprovals(t *testing.T) {
	f := newExchangeFixture(t)
	req := f.accepted(t, "requester")
	_, err := f.svc.Approve(context.Background(), req.RequestID, "owner", true, "")
	require.NoError(t, err)

	_, err = f.svc.CompleteSwap(context.Background(), req.RequestID, "owner")

	assertKind(t, err, utils.KindValidation)
	assert.Zero(t, f.swaps.applied)
}

func TestSwapAlreadyCompletedIsNotAnError(t *testing.T) {
	f := newExchangeFixture(t)
	req := f.accepted(t, "requester")
	_, err := f.svc.Approve(context.Background(), req.RequestID, "owner", true, "")
	require.NoError(t, err)
	f.swaps.failWith = ErrSwapAlreadyCompleted

	result, err := f.svc.Approve(context.Background(), req.RequestID, "requester", true, "")

	require.NoError(t, err)
	assert.Equal(t, req.RequestID, result.RequestID)
	assert.NotContains(t, f.notifier.eventsFor("owner"), models.EventExchangeCompleted)
}

func TestApprove_ClosesCompetingRequests(t *testing.T) {
	f := newExchangeFixture(t)
	competing := f.create(t, "second")
	req := f.accepted(t, "requester")

	_, err := f.svc.Approve(context.Background(), req.RequestID, "owner", true, "")
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), req.RequestID, "requester", true, "")
	require.NoError(t, err)

	stored, err := f.requests.Get(context.Background(), competing.RequestID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.Equal(t, models.MatchStatusRejected, stored.Status)
	assert.Contains(t, f.notifier.eventsFor("second"), models.EventListingClosed)

	_, err = f.svc.CreateRequest(context.Background(), "outsider", CreateMatchRequestInput{ListingID: "listing-1", Message: validMessage})
	assertKind(t, err, utils.KindValidation)
}

func TestScheduleSwap(t *testing.T) {
	f := newExchangeFixture(t)
	req := f.accepted(t, "requester")
	date := testNow.Add(48 * time.Hour)

	updated, err := f.svc.ScheduleSwap(context.Background(), req.RequestID, "requester", date)
	require.NoError(t, err)
	assert.Equal(t, models.Timestamp(date), updated.SwapDetails.ScheduledDate)
	assert.Contains(t, f.notifier.eventsFor("owner"), models.EventSwapScheduled)

	_, err = f.svc.ScheduleSwap(context.Background(), req.RequestID, "requester", testNow.Add(-time.Hour))
	assertKind(t, err, utils.KindValidation)

	_, err = f.svc.ScheduleSwap(context.Background(), req.RequestID, "outsider", date)
	assertKind(t, err, utils.KindForbidden)
}

func TestQueries(t *testing.T) {
	f := newExchangeFixture(t)
	req := f.create(t, "requester")

	sent, err := f.svc.ListSent(context.Background(), "requester")
	require.NoError(t, err)
	require.Len(t, sent, 1)

	received, err := f.svc.ListReceived(context.Background(), "owner")
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, req.RequestID, received[0].RequestID)

	forListing, err := f.svc.ListForListing(context.Background(), "listing-1", "owner")
	require.NoError(t, err)
	assert.Len(t, forListing, 1)

	_, err = f.svc.ListForListing(context.Background(), "listing-1", "requester")
	assertKind(t, err, utils.KindForbidden)

	_, err = f.svc.GetRequest(context.Background(), req.RequestID, "outsider")
	assertKind(t, err, utils.KindForbidden)

	got, err := f.svc.GetRequest(context.Background(), req.RequestID, "requester")
	require.NoError(t, err)
	assert.Equal(t, req.RequestID, got.RequestID)
}

func TestExpireStale_OnlyPendingPastExpiry(t *testing.T) {
	f := newExchangeFixture(t)
	pending := f.create(t, "second")
	accepted := f.accepted(t, "requester")
	f.svc.Now = func() time.Time { return testNow.Add(8 * 24 * time.Hour) }

	n, err := f.svc.ExpireStale(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	stored, _ := f.requests.Get(context.Background(), pending.RequestID)
	assert.False(t, stored.IsActive)
	stillAccepted, _ := f.requests.Get(context.Background(), accepted.RequestID)
	assert.True(t, stillAccepted.IsActive)
}

func (f *exchangeFixture) listingService() *ListingService {
	return &ListingService{
		Listings: f.listings,
		Requests: f.requests,
		Users:    f.users,
		Notifier: f.notifier,
		Now:      f.svc.Now,
	}
}

func TestDeleteListing_StopsAcceptedExchange(t *testing.T) {
	f := newExchangeFixture(t)
	req := f.accepted(t, "requester")

	require.NoError(t, f.listingService().DeleteListing(context.Background(), "listing-1", "owner"))

	stored, err := f.requests.Get(context.Background(), req.RequestID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.Equal(t, models.MatchStatusRejected, stored.Status)
	assert.Contains(t, f.notifier.eventsFor("requester"), models.EventListingClosed)

	_, err = f.svc.Approve(context.Background(), req.RequestID, "requester", true, "")
	assertKind(t, err, utils.KindValidation)
	_, err = f.svc.Approve(context.Background(), req.RequestID, "owner", true, "")
	assertKind(t, err, utils.KindValidation)

	assert.Zero(t, f.swaps.applied)
	assert.Equal(t, roomA, *f.user(t, "requester").CurrentRoom)
	assert.Equal(t, roomB, *f.user(t, "owner").CurrentRoom)
}

func closeListingBehindService(t *testing.T, f *exchangeFixture) {
	t.Helper()
	l := f.listing(t)
	l.Status = models.ListingStatusClosed
	l.IsActive = false
	require.NoError(t, f.listings.Save(context.Background(), l, l.Version))
}

func TestRespond_AcceptRequiresAvailableListing(t *testing.T) {
	f := newExchangeFixture(t)
	req := f.create(t, "requester")
	closeListingBehindService(t, f)

	_, err := f.svc.Respond(context.Background(), req.RequestID, "owner", RespondInput{Status: models.MatchStatusAccepted})

	assertKind(t, err, utils.KindValidation)
	stored, _ := f.requests.Get(context.Background(), req.RequestID)
	assert.Equal(t, models.MatchStatusPending, stored.Status)
}

func TestCompleteSwap_ListingClosedMeanwhileIsNotSwapped(t *testing.T) {
	f := newExchangeFixture(t)
	req := f.accepted(t, "requester")
	_, err := f.svc.Approve(context.Background(), req.RequestID, "owner", true, "")
	require.NoError(t, err)
	f.swaps.failWith = errStoreDown
	_, err = f.svc.Approve(context.Background(), req.RequestID, "requester", true, "")
	require.NoError(t, err)
	f.swaps.failWith = nil

	closeListingBehindService(t, f)
	_, err = f.svc.CompleteSwap(context.Background(), req.RequestID, "owner")

	assertKind(t, err, utils.KindValidation)
	assert.Zero(t, f.swaps.applied)
	assert.Equal(t, roomA, *f.user(t, "requester").CurrentRoom)
}

// staleUsers serves an outdated copy of some users, as a read made before a concurrent edit would
type staleUsers struct {
	*fakeUserStore
	stale map[string]models.User
}

func (s *staleUsers) Get(ctx context.Context, userID string) (*models.User, error) {
	if u, ok := s.stale[userID]; ok {
		return &u, nil
	}
	return s.fakeUserStore.Get(ctx, userID)
}

func TestCompleteSwap_RoomEditedSinceReadConflicts(t *testing.T) {
	f := newExchangeFixture(t)
	req := f.accepted(t, "requester")
	_, err := f.svc.Approve(context.Background(), req.RequestID, "owner", true, "")
	require.NoError(t, err)
	f.swaps.failWith = errStoreDown
	_, err = f.svc.Approve(context.Background(), req.RequestID, "requester", true, "")
	require.NoError(t, err)
	f.swaps.failWith = nil

	before := *f.user(t, "requester")
	moved := before
	room := roomC
	moved.CurrentRoom = &room
	require.NoError(t, f.users.Save(context.Background(), &moved))
	f.svc.Users = &staleUsers{fakeUserStore: f.users, stale: map[string]models.User{"requester": before}}

	_, err = f.svc.CompleteSwap(context.Background(), req.RequestID, "owner")

	assertKind(t, err, utils.KindConflict)
	assert.Zero(t, f.swaps.applied)
	assert.Equal(t, roomC, *f.user(t, "requester").CurrentRoom)
	assert.Equal(t, roomB, *f.user(t, "owner").CurrentRoom)
	assert.True(t, f.listing(t).IsActive)
}

func TestApprove_ClosesOtherRequestsOfBothParties(t *testing.T) {
	f := newExchangeFixture(t)
	require.NoError(t, f.listings.Create(context.Background(), &models.RoomListing{
		ListingID: "listing-2", ListedBy: "second", OwnerGender: models.GenderMale, CurrentRoom: roomC,
		Status: models.ListingStatusOpen, IsActive: true, Version: 1,
		AvailableTill: models.Timestamp(testNow.Add(30 * 24 * time.Hour)),
	}))
	first := f.accepted(t, "requester")
	second, err := f.svc.CreateRequest(context.Background(), "requester", CreateMatchRequestInput{ListingID: "listing-2", Message: validMessage})
	require.NoError(t, err)
	second, err = f.svc.Respond(context.Background(), second.RequestID, "second", RespondInput{Status: models.MatchStatusAccepted})
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), second.RequestID, "second", true, "")
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), first.RequestID, "owner", true, "")
	require.NoError(t, err)
	done, err := f.svc.Approve(context.Background(), first.RequestID, "requester", true, "")
	require.NoError(t, err)
	require.True(t, done.SwapDetails.Completed)

	stale, err := f.requests.Get(context.Background(), second.RequestID)
	require.NoError(t, err)
	assert.False(t, stale.IsActive)
	assert.Equal(t, models.MatchStatusRejected, stale.Status)
	assert.Contains(t, f.notifier.eventsFor("second"), models.EventRequestRejected)

	_, err = f.svc.Approve(context.Background(), second.RequestID, "requester", true, "")
	assertKind(t, err, utils.KindValidation)
	assert.Equal(t, 1, f.swaps.applied)
	assert.Equal(t, roomC, *f.user(t, "second").CurrentRoom)
	assert.Equal(t, roomB, *f.user(t, "requester").CurrentRoom)
}

func TestApprove_RequiresAvailableListing(t *testing.T) {
	f := newExchangeFixture(t)
	req := f.accepted(t, "requester")
	closeListingBehindService(t, f)

	_, err := f.svc.Approve(context.Background(), req.RequestID, "owner", true, "")
	assertKind(t, err, utils.KindValidation)

	declined, err := f.svc.Approve(context.Background(), req.RequestID, "owner", false, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusRejected, declined.Status)
	assert.Zero(t, f.swaps.applied)
}
