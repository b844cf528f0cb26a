package socket

import (
	"sync"
)

// Emitter is the transport-side handle for one live connection. socketio.Conn
// satisfies it; tests substitute fakes.
type Emitter interface {
	ID() string
	Emit(event string, args ...interface{})
	Close() error
}

// Connection is one registered live session for a user
type Connection struct {
	ConnectionID string
	UserID       string
	InstanceID   string
	emitter      Emitter
}

// Emit pushes an event to this connection. Delivery is fire-and-forget: a
// concurrently closed transport just drops the event.
func (c *Connection) Emit(event string, args ...interface{}) {
	c.emitter.Emit(event, args...)
}

// Notifier is one named notification kind dispatched through Deliver
type Notifier func(userID string, conns []*Connection)

// Registry maps live connections to user identities. It is the single
// synchronization point the other components rely on; every read and write
// goes through the lock so registrations stay linearizable under concurrent
// connect/disconnect events for the same user.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]*Connection            // connectionId -> connection
	byUser map[string]map[string]*Connection // userId -> connectionId -> connection
}

func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[string]*Connection),
		byUser: make(map[string]map[string]*Connection),
	}
}

// Register inserts a connection for the user. An existing connection with the
// same (userId, instanceId) is evicted first, so a reconnect or tab refresh
// never leaves a stale session behind. Register always succeeds.
func (r *Registry) Register(emitter Emitter, userID, instanceID string) {
	var evicted Emitter

	r.mu.Lock()
	if userConns, ok := r.byUser[userID]; ok {
		for _, conn := range userConns {
			if conn.InstanceID == instanceID {
				delete(r.conns, conn.ConnectionID)
				delete(userConns, conn.ConnectionID)
				evicted = conn.emitter
				break
			}
		}
	}

	conn := &Connection{
		ConnectionID: emitter.ID(),
		UserID:       userID,
		InstanceID:   instanceID,
		emitter:      emitter,
	}
	r.conns[conn.ConnectionID] = conn
	if r.byUser[userID] == nil {
		r.byUser[userID] = make(map[string]*Connection)
	}
	r.byUser[userID][conn.ConnectionID] = conn
	r.mu.Unlock()

	if evicted != nil && evicted.ID() != emitter.ID() {
		_ = evicted.Close()
	}
}

// Unregister removes the connection if present; no-op otherwise
func (r *Registry) Unregister(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[connectionID]
	if !ok {
		return
	}
	delete(r.conns, connectionID)
	if userConns, ok := r.byUser[conn.UserID]; ok {
		delete(userConns, connectionID)
		if len(userConns) == 0 {
			delete(r.byUser, conn.UserID)
		}
	}
}

// Find returns the connection registered under connectionID
func (r *Registry) Find(connectionID string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[connectionID]
	return conn, ok
}

// ConnectionsOf returns the user's live connections; may be empty
func (r *Registry) ConnectionsOf(userID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userConns := r.byUser[userID]
	if len(userConns) == 0 {
		return nil
	}
	conns := make([]*Connection, 0, len(userConns))
	for _, conn := range userConns {
		conns = append(conns, conn)
	}
	return conns
}

// IsOnline reports whether the user has at least one live connection
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

// OnlineUsers returns the distinct user ids with at least one connection
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.byUser))
	for userID := range r.byUser {
		users = append(users, userID)
	}
	return users
}

// Deliver invokes each notifier with the user's live connections. A user with
// no connections receives nothing: there is no queuing and no retry, presence
// is the only delivery guarantee.
func (r *Registry) Deliver(userID string, notifiers ...Notifier) {
	conns := r.ConnectionsOf(userID)
	if len(conns) == 0 {
		return
	}
	for _, notifier := range notifiers {
		notifier(userID, conns)
	}
}

// EmitTo pushes one event to every connection in the set
func EmitTo(conns []*Connection, event string, payload interface{}) {
	for _, conn := range conns {
		conn.Emit(event, payload)
	}
}
