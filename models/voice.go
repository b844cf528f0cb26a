package models

// VoiceParticipant is one occupant of a voice channel. Channel state is held
// in memory only; it is rebuilt from nothing when the process restarts.
type VoiceParticipant struct {
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	ConnectionID string `json:"connectionId"`
}

// VoiceChannelState is the occupancy snapshot pushed to server members
type VoiceChannelState struct {
	ServerID     string             `json:"serverId"`
	VoiceChannel []VoiceParticipant `json:"voiceChannel"`
}

// SignalPayload wraps an opaque peer-signaling blob with the connection it
// came from. The relay never inspects Signal.
type SignalPayload struct {
	ConnectionID string      `json:"connectionId"`
	Signal       interface{} `json:"signal"`
}
