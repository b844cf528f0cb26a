package models

// Message is immutable once created; the write path only ever appends
type Message struct {
	ConversationID string `dynamodbav:"conversationId" json:"conversationId"` // Partition Key (PK)
	CreatedAt      string `dynamodbav:"createdAt" json:"createdAt"`           // Sort Key (SK) - RFC3339Nano
	MessageID      string `dynamodbav:"messageId" json:"messageId"`
	SenderID       string `dynamodbav:"senderId" json:"senderId"`
	Content        string `dynamodbav:"content" json:"content"`
	Type           string `dynamodbav:"type" json:"type"` // "direct" or "group"
}

// MessagesTable is the DynamoDB table name for messages
const MessagesTable = "Messages"

// MessagePayload is pushed to both participants after a message commits
type MessagePayload struct {
	ConversationID string   `json:"conversationId"`
	ParticipantIDs []string `json:"participantIds"`
	Message        Message  `json:"message"`
}
