package models

const (
	FriendStatusRequested = "requested"
	FriendStatusIncoming  = "incoming"
	FriendStatusAccepted  = "accepted"
)

// Friendship is one side of a mirrored friend relation
type Friendship struct {
	UserID    string `dynamodbav:"userId" json:"userId"`
	FriendID  string `dynamodbav:"friendId" json:"friendId"`
	Status    string `dynamodbav:"status" json:"status"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt string `dynamodbav:"updatedAt" json:"updatedAt"`
}
