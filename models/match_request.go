package models

import "time"

const (
	MatchStatusPending   = "Pending"
	MatchStatusAccepted  = "Accepted"
	MatchStatusRejected  = "Rejected"
	MatchStatusWithdrawn = "Withdrawn"
)

// MinMatchMessageLength is the minimum trimmed length of a request message
const MinMatchMessageLength = 10

// Approval is one party's vote on completing a swap
type Approval struct {
	UserID    string `dynamodbav:"userId" json:"userId"`
	Approved  bool   `dynamodbav:"approved" json:"approved"`
	Comments  string `dynamodbav:"comments,omitempty" json:"comments,omitempty"`
	Timestamp string `dynamodbav:"timestamp" json:"timestamp"`
}

type SwapDetails struct {
	ScheduledDate string `dynamodbav:"scheduledDate,omitempty" json:"scheduledDate,omitempty"`
	Completed     bool   `dynamodbav:"completed" json:"completed"`
	CompletedAt   string `dynamodbav:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// MatchRequest is a requester's proposal against a listing.
// Version is bumped on every write and used as the compare-and-swap guard.
type MatchRequest struct {
	RequestID       string      `dynamodbav:"requestId" json:"requestId"`
	RequesterID     string      `dynamodbav:"requesterId" json:"requesterId"`
	ListingID       string      `dynamodbav:"listingId" json:"listingId"`
	ListingOwnerID  string      `dynamodbav:"listingOwnerId" json:"listingOwnerId"`
	Message         string      `dynamodbav:"message" json:"message"`
	ResponseMessage string      `dynamodbav:"responseMessage,omitempty" json:"responseMessage,omitempty"`
	Status          string      `dynamodbav:"status" json:"status"`
	Approvals       []Approval  `dynamodbav:"approvals" json:"approvals"`
	SwapDetails     SwapDetails `dynamodbav:"swapDetails" json:"swapDetails"`
	ExpiresAt       string      `dynamodbav:"expiresAt" json:"expiresAt"`
	IsActive        bool        `dynamodbav:"isActive" json:"isActive"`
	Version         int         `dynamodbav:"version" json:"version"`
	CreatedAt       string      `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt       string      `dynamodbav:"updatedAt" json:"updatedAt"`
	RespondedAt     string      `dynamodbav:"respondedAt,omitempty" json:"respondedAt,omitempty"`
}

// ApprovalOutcome summarises the latest approvals of all parties
type ApprovalOutcome int

const (
	ApprovalAwaiting ApprovalOutcome = iota
	ApprovalApproved
	ApprovalRejected
)

// Parties returns the users whose approval is required for the swap
func (m MatchRequest) Parties() []string {
	return []string{m.RequesterID, m.ListingOwnerID}
}

func (m MatchRequest) IsParty(userID string) bool {
	for _, p := range m.Parties() {
		if p == userID {
			return true
		}
	}
	return false
}

// Counterpart returns the other party of the request
func (m MatchRequest) Counterpart(userID string) string {
	if userID == m.RequesterID {
		return m.ListingOwnerID
	}
	return m.RequesterID
}

// ApprovalFor returns the latest approval recorded by userID
func (m MatchRequest) ApprovalFor(userID string) (Approval, bool) {
	for _, a := range m.Approvals {
		if a.UserID == userID {
			return a, true
		}
	}
	return Approval{}, false
}

// SetApproval replaces any earlier approval by the same user
func (m *MatchRequest) SetApproval(a Approval) {
	for i := range m.Approvals {
		if m.Approvals[i].UserID == a.UserID {
			m.Approvals[i] = a
			return
		}
	}
	m.Approvals = append(m.Approvals, a)
}

// Outcome is Rejected if any party's latest vote is false, Approved once every party voted true
func (m MatchRequest) Outcome() ApprovalOutcome {
	approved := 0
	for _, p := range m.Parties() {
		a, ok := m.ApprovalFor(p)
		if !ok {
			continue
		}
		if !a.Approved {
			return ApprovalRejected
		}
		approved++
	}
	if approved == len(m.Parties()) {
		return ApprovalApproved
	}
	return ApprovalAwaiting
}

// IsExpired only applies while the owner has not responded
func (m MatchRequest) IsExpired(now time.Time) bool {
	if m.Status != MatchStatusPending {
		return false
	}
	exp := ParseTimestamp(m.ExpiresAt)
	return !exp.IsZero() && now.After(exp)
}

// IsOpen reports whether the request still blocks a duplicate from the same requester
func (m MatchRequest) IsOpen(now time.Time) bool {
	if !m.IsActive || m.IsExpired(now) {
		return false
	}
	return m.Status == MatchStatusPending || m.Status == MatchStatusAccepted
}
