package socket

import (
	"context"
	"log"

	socketio "github.com/googollee/go-socket.io"

	"github.com/jkpcodes/discord-clone-backend/models"
	"github.com/jkpcodes/discord-clone-backend/services"
	"github.com/jkpcodes/discord-clone-backend/utils"
)

// DirectMessenger is the slice of the chat service the socket handlers need
type DirectMessenger interface {
	SendDirectMessage(ctx context.Context, senderID, receiverID, content, messageType string) (*models.MessagePayload, error)
	GetDirectMessages(ctx context.Context, userID, peerID string, skip, take int) (*models.DirectMessagesPage, error)
}

// Server bundles the realtime stack behind a single socket.io endpoint
type Server struct {
	IO       *socketio.Server
	Registry *Registry
	Presence *PresenceManager
	Chat     *ChatNotifier
	Voice    *VoiceChannels

	messenger DirectMessenger
}

type directMessageRequest struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

type chatHistoryRequest struct {
	PeerID string `json:"peerId"`
	Skip   int    `json:"skip"`
	Take   int    `json:"take"`
}

type voiceChannelRequest struct {
	ServerID string `json:"serverId"`
}

// NewServer wires the socket.io event handlers. Callers still need to mount
// s.IO on the HTTP mux and run s.IO.Serve in a goroutine.
func NewServer(registry *Registry, friends *services.FriendService, chat *services.ChatService, servers *services.ServerService) *Server {
	s := &Server{
		IO:        socketio.NewServer(nil),
		Registry:  registry,
		Presence:  &PresenceManager{Registry: registry, Friends: friends},
		Chat:      &ChatNotifier{Registry: registry},
		Voice:     NewVoiceChannels(registry, servers),
		messenger: chat,
	}
	s.registerHandlers()
	return s
}

func (s *Server) registerHandlers() {
	s.IO.OnConnect("/", s.onConnect)

	s.IO.OnEvent("/", "direct:message", s.onDirectMessage)
	s.IO.OnEvent("/", "direct:getChatHistory", s.onChatHistory)

	s.IO.OnEvent("/", "call:joinServerVoiceChannel", s.onVoiceJoin)
	s.IO.OnEvent("/", "call:leaveServerVoiceChannel", s.onVoiceLeave)
	s.IO.OnEvent("/", "call:initializeWebRTCConnection", s.onInitializeWebRTC)
	s.IO.OnEvent("/", "call:signalPeerData", s.onSignalPeerData)

	s.IO.OnError("/", func(conn socketio.Conn, err error) {
		log.Printf("❌ Socket error: %v", err)
	})

	s.IO.OnDisconnect("/", s.onDisconnect)
}

// onConnect authenticates the handshake and registers the connection. A bad
// or missing token rejects the connection before it joins the registry.
func (s *Server) onConnect(conn socketio.Conn) error {
	u := conn.URL()
	query := u.Query()

	claims, err := utils.VerifyToken(query.Get("token"))
	if err != nil {
		log.Printf("❌ Rejected socket connection %s: %v", conn.ID(), err)
		return err
	}

	instanceID := query.Get("instanceId")
	if instanceID == "" {
		instanceID = conn.ID()
	}

	user := claims.Identity()
	conn.SetContext(user)
	s.Registry.Register(conn, user.UserID, instanceID)
	log.Printf("✅ Socket connected: %s (user %s)", conn.ID(), user.UserID)

	s.Presence.HandleNewConnection(context.Background(), user.UserID)
	return nil
}

func (s *Server) onDisconnect(conn socketio.Conn, reason string) {
	log.Printf("✅ Socket disconnected: %s (%s)", conn.ID(), reason)

	ctx := context.Background()
	user, authed := conn.Context().(models.UserSummary)

	userID := ""
	if authed {
		userID = user.UserID
	}
	s.Voice.DisconnectSweep(ctx, userID, conn.ID())
	s.Registry.Unregister(conn.ID())

	if authed {
		s.Presence.HandleDisconnect(ctx, user.UserID)
	}
}

func (s *Server) onDirectMessage(conn socketio.Conn, req directMessageRequest) {
	user, ok := identityOf(conn)
	if !ok {
		return
	}

	payload, err := s.messenger.SendDirectMessage(context.Background(), user.UserID, req.ReceiverID, req.Content, models.MessageTypeDirect)
	if err != nil {
		log.Printf("❌ Failed to send direct message from %s: %v", user.UserID, err)
		return
	}
	s.Chat.DeliverMessage(*payload)
}

// onChatHistory answers on the requesting connection only, so a second
// device paging through history does not disturb the first
func (s *Server) onChatHistory(conn socketio.Conn, req chatHistoryRequest) {
	user, ok := identityOf(conn)
	if !ok {
		return
	}

	page, err := s.messenger.GetDirectMessages(context.Background(), user.UserID, req.PeerID, req.Skip, req.Take)
	if err != nil {
		log.Printf("❌ Failed to load chat history for %s: %v", user.UserID, err)
		return
	}
	if active, found := s.Registry.Find(conn.ID()); found {
		s.Chat.DeliverHistory(active, *page)
	}
}

func (s *Server) onVoiceJoin(conn socketio.Conn, req voiceChannelRequest) {
	user, ok := identityOf(conn)
	if !ok {
		return
	}

	s.Voice.Join(context.Background(), req.ServerID, models.VoiceParticipant{
		UserID:       user.UserID,
		Username:     user.Username,
		Email:        user.Email,
		ConnectionID: conn.ID(),
	})
}

func (s *Server) onVoiceLeave(conn socketio.Conn, req voiceChannelRequest) {
	if _, ok := identityOf(conn); !ok {
		return
	}
	s.Voice.Leave(context.Background(), req.ServerID, conn.ID())
}

func (s *Server) onInitializeWebRTC(conn socketio.Conn, payload models.SignalPayload) {
	s.Voice.InitializeConnection(conn.ID(), payload)
}

func (s *Server) onSignalPeerData(conn socketio.Conn, payload models.SignalPayload) {
	s.Voice.RelaySignal(conn.ID(), payload)
}

func identityOf(conn socketio.Conn) (models.UserSummary, bool) {
	user, ok := conn.Context().(models.UserSummary)
	if !ok {
		log.Printf("❌ Socket %s has no authenticated identity", conn.ID())
	}
	return user, ok
}
