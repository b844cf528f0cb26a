package socket

import (
	"github.com/jkpcodes/discord-clone-backend/models"
)

// ChatNotifier delivers direct-message traffic over the registry
type ChatNotifier struct {
	Registry *Registry
}

// DeliverMessage pushes a freshly persisted message to every connection of
// both participants. Offline participants are skipped; they pick the message
// up from history on their next fetch.
func (n *ChatNotifier) DeliverMessage(payload models.MessagePayload) {
	notify := func(userID string, conns []*Connection) {
		EmitTo(conns, models.EventAddedMessage, payload)
	}
	for _, userID := range payload.ParticipantIDs {
		n.Registry.Deliver(userID, notify)
	}
}

// DeliverHistory answers a history request on the requesting connection only
func (n *ChatNotifier) DeliverHistory(conn *Connection, page models.DirectMessagesPage) {
	conn.Emit(models.EventUpdatedConversation, page)
}
