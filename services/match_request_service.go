package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"hostelswap_server/models"
	"hostelswap_server/utils"

	"github.com/google/uuid"
)

// CreateMatchRequestInput is the payload of POST /api/match-requests
type CreateMatchRequestInput struct {
	ListingID string `json:"listingId" validate:"required"`
	Message   string `json:"message" validate:"required,max=1000"`
}

// RespondInput is the payload of PUT /api/match-requests/{id}/respond
type RespondInput struct {
	Status          string `json:"status" validate:"required,oneof=Accepted Rejected Withdrawn"`
	ResponseMessage string `json:"responseMessage" validate:"max=1000"`
}

// ApproveInput is the payload of PUT /api/match-requests/{id}/approve
type ApproveInput struct {
	Approved *bool  `json:"approved" validate:"required"`
	Comments string `json:"comments" validate:"max=500"`
}

// MatchRequestService runs the request → respond → dual approval → swap workflow
type MatchRequestService struct {
	Requests MatchRequestStore
	Swaps    SwapExecutor
	Listings ListingStore
	Users    UserStore
	Notifier Notifier
	Now      func() time.Time
	TTL      time.Duration
}

func (s *MatchRequestService) ttl() time.Duration {
	if s.TTL <= 0 {
		return models.DefaultMatchRequestTTL
	}
	return s.TTL
}

// CreateRequest files a request against a listing. Nothing is written when any check fails.
func (s *MatchRequestService) CreateRequest(ctx context.Context, requesterID string, input CreateMatchRequestInput) (*models.MatchRequest, error) {
	message := strings.TrimSpace(input.Message)
	if len([]rune(message)) < models.MinMatchMessageLength {
		return nil, utils.NewValidationError(fmt.Sprintf("message must be at least %d characters", models.MinMatchMessageLength))
	}

	listing, err := s.Listings.Get(ctx, input.ListingID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NewNotFoundError("listing not found")
		}
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}

	now := s.Now()
	if !listing.IsAvailable(now) {
		return nil, utils.NewValidationError("listing is no longer available")
	}
	if listing.ListedBy == requesterID {
		return nil, utils.NewValidationError("you cannot request your own listing")
	}

	requester, err := s.Users.Get(ctx, requesterID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NewNotFoundError("user not found")
		}
		return nil, fmt.Errorf("failed to fetch requester: %w", err)
	}
	if listing.OwnerGender != "" && requester.Gender != listing.OwnerGender {
		return nil, utils.NewValidationError("this listing is not available for your gender")
	}
	if requester.CurrentRoom == nil {
		return nil, utils.NewValidationError("set your current room before requesting an exchange")
	}

	existing, err := s.Requests.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing requests: %w", err)
	}
	for _, r := range existing {
		if r.ListingID == listing.ListingID && r.IsOpen(now) {
			return nil, utils.NewConflictError("you already have an active request for this listing")
		}
	}

	req := &models.MatchRequest{
		RequestID:      uuid.NewString(),
		RequesterID:    requesterID,
		ListingID:      listing.ListingID,
		ListingOwnerID: listing.ListedBy,
		Message:        message,
		Status:         models.MatchStatusPending,
		Approvals:      []models.Approval{},
		ExpiresAt:      models.Timestamp(now.Add(s.ttl())),
		IsActive:       true,
		Version:        1,
		CreatedAt:      models.Timestamp(now),
		UpdatedAt:      models.Timestamp(now),
	}
	if err := s.Requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create match request: %w", err)
	}

	if err := s.Listings.AddInterest(ctx, listing.ListingID, requesterID, models.Timestamp(now)); err != nil {
		log.Printf("⚠️ Warning: failed to record interest for request %s: %v", req.RequestID, err)
	}

	s.Notifier.NotifyUser(listing.ListedBy, models.EventNewMatchRequest, map[string]interface{}{
		"request":   req,
		"requester": requester.Public(),
	})
	log.Printf("✅ Match request %s created: %s → listing %s", req.RequestID, requesterID, listing.ListingID)
	return req, nil
}

// GetRequest returns a request visible to userID
func (s *MatchRequestService) GetRequest(ctx context.Context, requestID, userID string) (*models.MatchRequest, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.IsParty(userID) {
		return nil, utils.NewForbiddenError("you are not a party to this request")
	}
	return req, nil
}

func (s *MatchRequestService) load(ctx context.Context, requestID string) (*models.MatchRequest, error) {
	req, err := s.Requests.Get(ctx, requestID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NewNotFoundError("match request not found")
		}
		return nil, fmt.Errorf("failed to fetch match request: %w", err)
	}
	return req, nil
}

func (s *MatchRequestService) save(ctx context.Context, req *models.MatchRequest, expected int) error {
	if err := s.Requests.Save(ctx, req, expected); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return utils.WrapConflict("match request was updated by someone else, reload and retry", err)
		}
		return fmt.Errorf("failed to save match request: %w", err)
	}
	return nil
}

// Respond lets the owner accept or reject and the requester withdraw a pending request
func (s *MatchRequestService) Respond(ctx context.Context, requestID, userID string, input RespondInput) (*models.MatchRequest, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}

	switch userID {
	case req.ListingOwnerID:
		if input.Status != models.MatchStatusAccepted && input.Status != models.MatchStatusRejected {
			return nil, utils.NewValidationError("the listing owner can only accept or reject a request")
		}
	case req.RequesterID:
		if input.Status != models.MatchStatusWithdrawn {
			return nil, utils.NewValidationError("the requester can only withdraw a request")
		}
	default:
		return nil, utils.NewForbiddenError("you are not a party to this request")
	}

	now := s.Now()
	if req.Status != models.MatchStatusPending || !req.IsActive {
		return nil, utils.NewValidationError(fmt.Sprintf("request is already %s", strings.ToLower(req.Status)))
	}
	if req.IsExpired(now) {
		return nil, utils.NewValidationError("match request has expired")
	}
	if input.Status == models.MatchStatusAccepted {
		if err := s.requireAvailableListing(ctx, req.ListingID, now); err != nil {
			return nil, err
		}
	}

	expected := req.Version
	req.Status = input.Status
	req.UpdatedAt = models.Timestamp(now)
	if userID == req.ListingOwnerID {
		req.ResponseMessage = strings.TrimSpace(input.ResponseMessage)
		req.RespondedAt = models.Timestamp(now)
	}
	if input.Status != models.MatchStatusAccepted {
		req.IsActive = false
	}

	if err := s.save(ctx, req, expected); err != nil {
		return nil, err
	}

	event := map[string]string{
		models.MatchStatusAccepted:  models.EventRequestAccepted,
		models.MatchStatusRejected:  models.EventRequestRejected,
		models.MatchStatusWithdrawn: models.EventRequestWithdrawn,
	}[input.Status]
	s.Notifier.NotifyUser(req.Counterpart(userID), event, req)

	if input.Status == models.MatchStatusWithdrawn {
		if err := s.Listings.RemoveInterest(ctx, req.ListingID, req.RequesterID, models.Timestamp(now)); err != nil {
			log.Printf("⚠️ Warning: failed to remove interest for request %s: %v", req.RequestID, err)
		}
	}

	log.Printf("✅ Match request %s is now %s", req.RequestID, req.Status)
	return req, nil
}

// Approve records userID's vote. When every party's latest vote is true the swap runs;
// any false vote rejects the request. A closed listing or a party whose room changed is
// reported to the caller. Other swap failures are logged and left resumable via
// CompleteSwap; the stored approval is kept.
func (s *MatchRequestService) Approve(ctx context.Context, requestID, userID string, approved bool, comments string) (*models.MatchRequest, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.IsParty(userID) {
		return nil, utils.NewForbiddenError("you are not a party to this request")
	}
	if req.SwapDetails.Completed {
		return req, nil
	}
	if req.Status != models.MatchStatusAccepted {
		return nil, utils.NewValidationError("request must be accepted before approval")
	}

	now := s.Now()
	if approved {
		if err := s.requireAvailableListing(ctx, req.ListingID, now); err != nil {
			return nil, err
		}
	}
	expected := req.Version
	req.SetApproval(models.Approval{
		UserID:    userID,
		Approved:  approved,
		Comments:  strings.TrimSpace(comments),
		Timestamp: models.Timestamp(now),
	})
	outcome := req.Outcome()
	if outcome == models.ApprovalRejected {
		req.Status = models.MatchStatusRejected
		req.IsActive = false
	}
	req.UpdatedAt = models.Timestamp(now)

	if err := s.save(ctx, req, expected); err != nil {
		return nil, err
	}

	counterpart := req.Counterpart(userID)
	switch outcome {
	case models.ApprovalRejected:
		s.Notifier.NotifyUser(counterpart, models.EventRequestRejected, req)
		return req, nil
	case models.ApprovalAwaiting:
		s.Notifier.NotifyUser(counterpart, models.EventApprovalUpdated, req)
		return req, nil
	}

	s.Notifier.NotifyUser(counterpart, models.EventRequestApproved, req)
	completed, err := s.executeSwap(ctx, req)
	if err != nil {
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		log.Printf("❌ Swap for request %s failed, approvals kept for retry: %v", req.RequestID, err)
		return req, nil
	}
	return completed, nil
}

// requireAvailableListing fails unless the listing can still be exchanged
func (s *MatchRequestService) requireAvailableListing(ctx context.Context, listingID string, now time.Time) error {
	listing, err := s.Listings.Get(ctx, listingID)
	if err != nil {
		if isNotFound(err) {
			return utils.NewValidationError("listing is no longer available")
		}
		return fmt.Errorf("failed to fetch listing: %w", err)
	}
	if !listing.IsAvailable(now) {
		return utils.NewValidationError("listing is no longer available")
	}
	return nil
}

// CompleteSwap resumes a swap whose approvals are all affirmative
func (s *MatchRequestService) CompleteSwap(ctx context.Context, requestID, userID string) (*models.MatchRequest, error) {
	req, err := s.GetRequest(ctx, requestID, userID)
	if err != nil {
		return nil, err
	}
	if req.SwapDetails.Completed {
		return req, nil
	}
	if req.Status != models.MatchStatusAccepted || req.Outcome() != models.ApprovalApproved {
		return nil, utils.NewValidationError("both parties must approve before the swap can complete")
	}
	return s.executeSwap(ctx, req)
}

func (s *MatchRequestService) executeSwap(ctx context.Context, req *models.MatchRequest) (*models.MatchRequest, error) {
	requester, err := s.Users.Get(ctx, req.RequesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requester: %w", err)
	}
	owner, err := s.Users.Get(ctx, req.ListingOwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing owner: %w", err)
	}
	if requester.CurrentRoom == nil || owner.CurrentRoom == nil {
		return nil, utils.NewValidationError("both users need a current room to swap")
	}

	plan := SwapPlan{
		RequestID:     req.RequestID,
		ListingID:     req.ListingID,
		RequesterID:   requester.UserID,
		OwnerID:       owner.UserID,
		RequesterRoom: *requester.CurrentRoom,
		OwnerRoom:     *owner.CurrentRoom,
		CompletedAt:   models.Timestamp(s.Now()),
	}
	err = s.Swaps.ExecuteSwap(ctx, plan)
	alreadyDone := errors.Is(err, ErrSwapAlreadyCompleted)
	switch {
	case errors.Is(err, ErrListingUnavailable):
		return nil, utils.NewValidationError("listing is no longer available")
	case errors.Is(err, ErrRoomChanged):
		return nil, utils.WrapConflict("a room changed since the exchange was approved, reload and retry", err)
	case err != nil && !alreadyDone:
		return nil, err
	}

	completed, err := s.load(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}
	if alreadyDone {
		return completed, nil
	}

	log.Printf("✅ Swap completed for request %s: %s ⇄ %s", req.RequestID, requester.UserID, owner.UserID)
	for _, party := range completed.Parties() {
		s.Notifier.NotifyUser(party, models.EventExchangeCompleted, completed)
	}
	s.closeCompetingRequests(ctx, completed)
	return completed, nil
}

// closeCompetingRequests deactivates the other open requests on the closed listing and
// every open request of either party, since those were made with the rooms they just gave up
func (s *MatchRequestService) closeCompetingRequests(ctx context.Context, completed *models.MatchRequest) {
	onListing, err := s.Requests.ListByListing(ctx, completed.ListingID)
	if err != nil {
		log.Printf("⚠️ Warning: failed to list requests of listing %s: %v", completed.ListingID, err)
	}
	closeOpenRequests(ctx, s.Requests, s.Notifier, onListing, completed.RequestID, completed.Parties(), models.EventListingClosed, s.Now())

	var ofParties []models.MatchRequest
	for _, party := range completed.Parties() {
		sent, err := s.Requests.ListByRequester(ctx, party)
		if err != nil {
			log.Printf("⚠️ Warning: failed to list requests sent by %s: %v", party, err)
		}
		received, err := s.Requests.ListByOwner(ctx, party)
		if err != nil {
			log.Printf("⚠️ Warning: failed to list requests received by %s: %v", party, err)
		}
		ofParties = append(ofParties, sent...)
		ofParties = append(ofParties, received...)
	}
	closeOpenRequests(ctx, s.Requests, s.Notifier, ofParties, completed.RequestID, completed.Parties(), models.EventRequestRejected, s.Now())
}

// closeOpenRequests deactivates every active request in reqs except skipID and tells its
// parties, leaving out the already informed ones. A version conflict is logged and skipped.
func closeOpenRequests(ctx context.Context, store MatchRequestStore, notifier Notifier, reqs []models.MatchRequest, skipID string, informed []string, event string, now time.Time) int {
	seen := map[string]bool{skipID: true}
	quiet := map[string]bool{}
	for _, id := range informed {
		quiet[id] = true
	}
	closed := 0
	for i := range reqs {
		other := reqs[i]
		if seen[other.RequestID] || !other.IsActive || other.SwapDetails.Completed {
			continue
		}
		seen[other.RequestID] = true
		expected := other.Version
		other.IsActive = false
		if other.Status == models.MatchStatusPending || other.Status == models.MatchStatusAccepted {
			other.Status = models.MatchStatusRejected
		}
		other.UpdatedAt = models.Timestamp(now)
		if err := store.Save(ctx, &other, expected); err != nil {
			log.Printf("⚠️ Warning: failed to close request %s: %v", other.RequestID, err)
			continue
		}
		closed++
		for _, party := range other.Parties() {
			if !quiet[party] {
				notifier.NotifyUser(party, event, &other)
			}
		}
	}
	return closed
}

// ScheduleSwap records when the parties plan to move
func (s *MatchRequestService) ScheduleSwap(ctx context.Context, requestID, userID string, date time.Time) (*models.MatchRequest, error) {
	req, err := s.GetRequest(ctx, requestID, userID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.MatchStatusAccepted || req.SwapDetails.Completed {
		return nil, utils.NewValidationError("only accepted, uncompleted requests can be scheduled")
	}
	if !date.After(s.Now()) {
		return nil, utils.NewValidationError("scheduledDate must be in the future")
	}

	expected := req.Version
	req.SwapDetails.ScheduledDate = models.Timestamp(date)
	req.UpdatedAt = models.Timestamp(s.Now())
	if err := s.save(ctx, req, expected); err != nil {
		return nil, err
	}
	s.Notifier.NotifyUser(req.Counterpart(userID), models.EventSwapScheduled, req)
	return req, nil
}

// ListSent returns the requests userID made, newest first
func (s *MatchRequestService) ListSent(ctx context.Context, userID string) ([]models.MatchRequest, error) {
	reqs, err := s.Requests.ListByRequester(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sent requests: %w", err)
	}
	return sortRequests(reqs), nil
}

// ListReceived returns the requests against userID's listings, newest first
func (s *MatchRequestService) ListReceived(ctx context.Context, userID string) ([]models.MatchRequest, error) {
	reqs, err := s.Requests.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch received requests: %w", err)
	}
	return sortRequests(reqs), nil
}

// ListForListing returns every request on a listing; only its owner may ask
func (s *MatchRequestService) ListForListing(ctx context.Context, listingID, userID string) ([]models.MatchRequest, error) {
	listing, err := s.Listings.Get(ctx, listingID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NewNotFoundError("listing not found")
		}
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	if listing.ListedBy != userID {
		return nil, utils.NewForbiddenError("only the listing owner can see its requests")
	}
	reqs, err := s.Requests.ListByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing requests: %w", err)
	}
	return sortRequests(reqs), nil
}

// ExpireStale deactivates pending requests that passed expiresAt
func (s *MatchRequestService) ExpireStale(ctx context.Context) (int, error) {
	active, err := s.Requests.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch active requests: %w", err)
	}
	now := s.Now()
	expired := 0
	var errs []error
	for i := range active {
		req := active[i]
		if !req.IsExpired(now) {
			continue
		}
		expected := req.Version
		req.IsActive = false
		req.UpdatedAt = models.Timestamp(now)
		if err := s.Requests.Save(ctx, &req, expected); err != nil {
			errs = append(errs, fmt.Errorf("request %s: %w", req.RequestID, err))
			continue
		}
		expired++
	}
	return expired, errors.Join(errs...)
}

func sortRequests(reqs []models.MatchRequest) []models.MatchRequest {
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].CreatedAt > reqs[j].CreatedAt })
	return reqs
}
