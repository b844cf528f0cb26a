package models

// Server is a named group of members. Voice channel occupancy updates are
// pushed to every member, not only to the channel participants.
type Server struct {
	ServerID  string   `dynamodbav:"serverId" json:"serverId"` // Partition Key (PK)
	Name      string   `dynamodbav:"name" json:"name"`
	OwnerID   string   `dynamodbav:"ownerId" json:"ownerId"`
	Members   []string `dynamodbav:"members,stringset" json:"members"`
	CreatedAt string   `dynamodbav:"createdAt" json:"createdAt"`
}

// ServersTable is the DynamoDB table name for servers
const ServersTable = "Servers"
