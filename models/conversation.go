package models

// Conversation links exactly two participants to their message history.
// The participant key is the primary key, so at most one conversation can
// ever exist for an unordered pair of users. Messages live in the Messages
// table keyed by conversationId and ordered by their sort key.
type Conversation struct {
	ParticipantKey string   `dynamodbav:"participantKey" json:"-"` // Partition Key (PK) - sorted "a#b"
	ConversationID string   `dynamodbav:"conversationId" json:"conversationId"`
	ParticipantIDs []string `dynamodbav:"participantIds" json:"participantIds"`
	CreatedAt      string   `dynamodbav:"createdAt" json:"createdAt"`
	LastMessageAt  string   `dynamodbav:"lastMessageAt" json:"lastMessageAt"`
}

// ConversationsTable is the DynamoDB table name for conversations
const ConversationsTable = "Conversations"

// Pagination describes the window of a direct-message page.
// HasMore is a heuristic: it is true when the page came back full, which can
// report a false positive when the conversation length is an exact multiple
// of the page size.
type Pagination struct {
	Skip    int  `json:"skip"`
	Take    int  `json:"take"`
	HasMore bool `json:"hasMore"`
}

// DirectMessagesPage is the payload returned for a conversation read
type DirectMessagesPage struct {
	ConversationID string        `json:"conversationId,omitempty"`
	Participants   []UserSummary `json:"participants,omitempty"`
	Messages       []Message     `json:"messages"`
	Pagination     Pagination    `json:"pagination"`
}
