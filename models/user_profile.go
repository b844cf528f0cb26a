package models

// UserProfile defines the structure for user accounts
type UserProfile struct {
	UserID       string   `dynamodbav:"userId" json:"userId"`
	Username     string   `dynamodbav:"username" json:"username"`
	Email        string   `dynamodbav:"email" json:"email"`
	PasswordHash string   `dynamodbav:"passwordHash" json:"-"`
	Friends      []string `dynamodbav:"friends,stringset,omitempty" json:"friends,omitempty"`
	CreatedAt    string   `dynamodbav:"createdAt" json:"createdAt"`
}

// UserProfilesTable is the DynamoDB table name for user profiles
const UserProfilesTable = "UserProfiles"

// EmailIndex is the GSI used to resolve a profile from an email address
const EmailIndex = "EmailIndex"

// UserSummary is the public projection of a profile pushed to clients
type UserSummary struct {
	UserID   string `dynamodbav:"userId" json:"userId"`
	Username string `dynamodbav:"username" json:"username"`
	Email    string `dynamodbav:"email" json:"email"`
}

// Summary strips a profile down to the fields other users may see
func (p UserProfile) Summary() UserSummary {
	return UserSummary{UserID: p.UserID, Username: p.Username, Email: p.Email}
}
