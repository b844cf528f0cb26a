package models

import "strings"

// FriendInvitation represents a pending friend request between two users.
// Existence of the record is the pending state; accepting, rejecting or
// canceling the request deletes it.
type FriendInvitation struct {
	InvitationID     string `dynamodbav:"invitationId" json:"invitationId"` // Partition Key (PK)
	PairKey          string `dynamodbav:"pairKey" json:"-"`                 // Sorted "a#b" pair, one invitation per pair
	SenderID         string `dynamodbav:"senderId" json:"senderId"`
	ReceiverID       string `dynamodbav:"receiverId" json:"receiverId"`
	SenderUsername   string `dynamodbav:"senderUsername" json:"senderUsername"`
	SenderEmail      string `dynamodbav:"senderEmail" json:"senderEmail"`
	ReceiverUsername string `dynamodbav:"receiverUsername" json:"receiverUsername"`
	ReceiverEmail    string `dynamodbav:"receiverEmail" json:"receiverEmail"`
	CreatedAt        string `dynamodbav:"createdAt" json:"createdAt"`
}

// TableName returns the DynamoDB table name for the FriendInvitation model
func (FriendInvitation) TableName() string {
	return "FriendInvitations"
}

// GSI names on the FriendInvitations table
const (
	ReceiverIndex = "ReceiverIndex" // PK receiverId - pending invitations for a user
	SenderIndex   = "SenderIndex"   // PK senderId - sent invitations for a user
	PairIndex     = "PairIndex"     // PK pairKey - either-direction duplicate guard
)

// FriendPairKey builds the order-independent key for a pair of users
func FriendPairKey(userA, userB string) string {
	if strings.Compare(userA, userB) > 0 {
		userA, userB = userB, userA
	}
	return userA + "#" + userB
}
