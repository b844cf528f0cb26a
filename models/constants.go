package models

// ✅ Message Types (direct, group)
const (
	MessageTypeDirect = "direct"
	MessageTypeGroup  = "group"
)

// Socket events pushed to clients. Every push goes through the connection
// registry; producers reference these names instead of building ad hoc
// callback lists.
const (
	EventFriendInvitations     = "friend:invitations"
	EventFriendSentInvitations = "friend:sentInvitations"
	EventFriendsList           = "friend:friendsList"
	EventOnlineFriends         = "friend:onlineFriends"
	EventOnlineFriendID        = "friend:onlineFriendID"
	EventOfflineFriendID       = "friend:offlineFriendID"

	EventAddedMessage        = "chat:addedMessage"
	EventUpdatedConversation = "chat:updatedConversation"

	EventVoiceChannelParticipants = "call:updateVoiceChannelParticipants"
	EventPrepareSignaling         = "call:prepareSignaling"
	EventPeerLeft                 = "call:peerLeft"
	EventSignalPeerData           = "call:signalPeerData"
)

// MaxVoiceChannelParticipants caps the occupancy of a single voice channel.
const MaxVoiceChannelParticipants = 4
