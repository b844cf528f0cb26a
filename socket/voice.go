package socket

import (
	"context"
	"log"
	"sync"

	"github.com/samber/lo"

	"github.com/jkpcodes/discord-clone-backend/models"
)

// MemberLister is the slice of the server service the voice coordinator
// needs for occupancy broadcasts.
type MemberLister interface {
	Members(ctx context.Context, serverID string) ([]string, error)
}

// VoiceChannels tracks who is in each server's voice channel. State is
// in-memory only, one entry per user carrying the connection that joined;
// the disconnect sweep clears a user's entry even when that connection was
// replaced by a reconnect.
type VoiceChannels struct {
	Registry *Registry
	Servers  MemberLister

	mu       sync.Mutex
	channels map[string][]models.VoiceParticipant
}

func NewVoiceChannels(registry *Registry, servers MemberLister) *VoiceChannels {
	return &VoiceChannels{
		Registry: registry,
		Servers:  servers,
		channels: make(map[string][]models.VoiceParticipant),
	}
}

// Join adds the participant to the server's voice channel. A user holds at
// most one slot per channel, so joining again from any connection is a no-op,
// and a full channel drops the join without an error to the caller. Either
// way every server member gets the current occupancy so their channel view
// stays in sync.
func (v *VoiceChannels) Join(ctx context.Context, serverID string, participant models.VoiceParticipant) {
	v.mu.Lock()
	channel := v.channels[serverID]

	alreadyJoined := lo.ContainsBy(channel, func(p models.VoiceParticipant) bool {
		return p.UserID == participant.UserID
	})

	var peers []models.VoiceParticipant
	switch {
	case alreadyJoined:
	case len(channel) >= models.MaxVoiceChannelParticipants:
		log.Printf("❌ Voice channel for server %s is full, dropping join from %s", serverID, participant.UserID)
	default:
		peers = append(peers, channel...)
		v.channels[serverID] = append(channel, participant)
	}
	v.mu.Unlock()

	// Existing participants open the WebRTC handshake toward the joiner
	for _, peer := range peers {
		if conn, ok := v.Registry.Find(peer.ConnectionID); ok {
			conn.Emit(models.EventPrepareSignaling, models.SignalPayload{ConnectionID: participant.ConnectionID})
		}
	}

	v.broadcastOccupancy(ctx, serverID)
}

// Leave removes the connection from the server's voice channel. The last
// participant leaving deletes the channel entry entirely.
func (v *VoiceChannels) Leave(ctx context.Context, serverID, connectionID string) {
	v.removeAndNotify(ctx, serverID, func(p models.VoiceParticipant) bool {
		return p.ConnectionID == connectionID
	})
}

// DisconnectSweep pulls a disconnected user out of every channel they were
// in. Matching by user id covers the case where the channel entry still
// carries an earlier, evicted connection of the same user; the connection id
// is only a fallback for sockets that never authenticated.
func (v *VoiceChannels) DisconnectSweep(ctx context.Context, userID, connectionID string) {
	match := func(p models.VoiceParticipant) bool {
		return p.ConnectionID == connectionID
	}
	if userID != "" {
		match = func(p models.VoiceParticipant) bool {
			return p.UserID == userID
		}
	}

	v.mu.Lock()
	serverIDs := lo.Keys(v.channels)
	v.mu.Unlock()

	for _, serverID := range serverIDs {
		v.removeAndNotify(ctx, serverID, match)
	}
}

// RelaySignal forwards an opaque WebRTC signal to the target connection,
// rewriting the connection id so the receiver knows who to answer.
func (v *VoiceChannels) RelaySignal(fromConnectionID string, payload models.SignalPayload) {
	if conn, ok := v.Registry.Find(payload.ConnectionID); ok {
		conn.Emit(models.EventSignalPeerData, models.SignalPayload{
			ConnectionID: fromConnectionID,
			Signal:       payload.Signal,
		})
	}
}

// InitializeConnection asks the target connection to start a handshake back
// toward the sender
func (v *VoiceChannels) InitializeConnection(fromConnectionID string, payload models.SignalPayload) {
	if conn, ok := v.Registry.Find(payload.ConnectionID); ok {
		conn.Emit(models.EventPrepareSignaling, models.SignalPayload{ConnectionID: fromConnectionID})
	}
}

// Participants returns the current channel membership, for tests and debug
func (v *VoiceChannels) Participants(serverID string) []models.VoiceParticipant {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.VoiceParticipant(nil), v.channels[serverID]...)
}

func (v *VoiceChannels) removeAndNotify(ctx context.Context, serverID string, match func(models.VoiceParticipant) bool) {
	removed := v.remove(serverID, match)
	if len(removed) == 0 {
		return
	}
	for _, gone := range removed {
		v.notifyPeerLeft(serverID, gone.ConnectionID)
	}
	v.broadcastOccupancy(ctx, serverID)
}

func (v *VoiceChannels) remove(serverID string, match func(models.VoiceParticipant) bool) []models.VoiceParticipant {
	v.mu.Lock()
	defer v.mu.Unlock()

	channel, ok := v.channels[serverID]
	if !ok {
		return nil
	}
	removed := lo.Filter(channel, func(p models.VoiceParticipant, _ int) bool {
		return match(p)
	})
	if len(removed) == 0 {
		return nil
	}
	remaining := lo.Filter(channel, func(p models.VoiceParticipant, _ int) bool {
		return !match(p)
	})
	if len(remaining) == 0 {
		delete(v.channels, serverID)
	} else {
		v.channels[serverID] = remaining
	}
	return removed
}

func (v *VoiceChannels) notifyPeerLeft(serverID, connectionID string) {
	v.mu.Lock()
	remaining := append([]models.VoiceParticipant(nil), v.channels[serverID]...)
	v.mu.Unlock()

	for _, peer := range remaining {
		if conn, ok := v.Registry.Find(peer.ConnectionID); ok {
			conn.Emit(models.EventPeerLeft, models.SignalPayload{ConnectionID: connectionID})
		}
	}
}

// broadcastOccupancy pushes the channel state to every member of the server,
// in or out of the channel
func (v *VoiceChannels) broadcastOccupancy(ctx context.Context, serverID string) {
	members, err := v.Servers.Members(ctx, serverID)
	if err != nil {
		log.Printf("❌ Failed to load members of server %s: %v", serverID, err)
		return
	}

	state := models.VoiceChannelState{ServerID: serverID, VoiceChannel: v.Participants(serverID)}
	for _, memberID := range members {
		v.Registry.Deliver(memberID, func(userID string, conns []*Connection) {
			EmitTo(conns, models.EventVoiceChannelParticipants, state)
		})
	}
}
