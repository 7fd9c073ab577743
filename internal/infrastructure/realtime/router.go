package realtime

import (
	"sync"
)

// Router tracks live connections and the conversation rooms each one
// joined. A user may hold several connections (one per open view); room
// fan-out only reaches connections that explicitly joined.
type Router struct {
	mu           sync.RWMutex
	sessions     map[string]*Connection            // connID -> connection
	userSessions map[string]map[string]struct{}    // userID -> connIDs
	rooms        map[string]map[string]*Connection // conversationID -> connID -> connection
	sessionRooms map[string]map[string]struct{}    // connID -> conversationIDs
}

func NewRouter() *Router {
	return &Router{
		sessions:     make(map[string]*Connection),
		userSessions: make(map[string]map[string]struct{}),
		rooms:        make(map[string]map[string]*Connection),
		sessionRooms: make(map[string]map[string]struct{}),
	}
}

// Attach registers conn and starts its write loop.
func (r *Router) Attach(conn *Connection) {
	r.mu.Lock()
	r.sessions[conn.ID] = conn
	ids := r.userSessions[conn.UserID]
	if ids == nil {
		ids = make(map[string]struct{})
		r.userSessions[conn.UserID] = ids
	}
	ids[conn.ID] = struct{}{}
	r.mu.Unlock()

	conn.Start()
}

// Detach forgets conn and all of its room memberships.
func (r *Router) Detach(conn *Connection) {
	r.mu.Lock()
	r.detachLocked(conn.ID)
	r.mu.Unlock()
}

// Join adds conn to the conversation room. It is a no-op for connections
// that are not attached.
func (r *Router) Join(conversationID string, conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[conn.ID]; !ok {
		return
	}

	room := r.rooms[conversationID]
	if room == nil {
		room = make(map[string]*Connection)
		r.rooms[conversationID] = room
	}
	room[conn.ID] = conn

	memberships := r.sessionRooms[conn.ID]
	if memberships == nil {
		memberships = make(map[string]struct{})
		r.sessionRooms[conn.ID] = memberships
	}
	memberships[conversationID] = struct{}{}
}

func (r *Router) Leave(conversationID string, conn *Connection) {
	r.mu.Lock()
	r.leaveLocked(conversationID, conn.ID)
	r.mu.Unlock()
}

// Joined reports whether conn is currently in the conversation room.
func (r *Router) Joined(conversationID string, conn *Connection) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[conversationID][conn.ID]
	return ok
}

// Broadcast writes payload to every connection in the room and returns
// how many accepted it. excludeUserID, when set, skips that user's
// connections.
func (r *Router) Broadcast(conversationID string, payload []byte, excludeUserID string) int {
	r.mu.RLock()
	room := r.rooms[conversationID]
	targets := make([]*Connection, 0, len(room))
	for _, conn := range room {
		if excludeUserID != "" && conn.UserID == excludeUserID {
			continue
		}
		targets = append(targets, conn)
	}
	r.mu.RUnlock()

	// Send may close a slow connection, which must not happen under r.mu.
	delivered := 0
	for _, conn := range targets {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// NotifyUser writes payload to every connection of userID and returns
// how many accepted it.
func (r *Router) NotifyUser(userID string, payload []byte) int {
	r.mu.RLock()
	ids := r.userSessions[userID]
	targets := make([]*Connection, 0, len(ids))
	for id := range ids {
		if conn := r.sessions[id]; conn != nil {
			targets = append(targets, conn)
		}
	}
	r.mu.RUnlock()

	delivered := 0
	for _, conn := range targets {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// Count returns the number of attached connections.
func (r *Router) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close terminates all connections and clears router state.
func (r *Router) Close() {
	r.mu.Lock()
	sessions := make([]*Connection, 0, len(r.sessions))
	for _, conn := range r.sessions {
		sessions = append(sessions, conn)
	}
	r.sessions = make(map[string]*Connection)
	r.userSessions = make(map[string]map[string]struct{})
	r.rooms = make(map[string]map[string]*Connection)
	r.sessionRooms = make(map[string]map[string]struct{})
	r.mu.Unlock()

	for _, conn := range sessions {
		conn.Close(1001, "router shutdown")
	}
}

func (r *Router) detachLocked(connID string) {
	conn, ok := r.sessions[connID]
	if !ok {
		return
	}
	delete(r.sessions, connID)

	if ids := r.userSessions[conn.UserID]; ids != nil {
		delete(ids, connID)
		if len(ids) == 0 {
			delete(r.userSessions, conn.UserID)
		}
	}

	for roomID := range r.sessionRooms[connID] {
		r.leaveLocked(roomID, connID)
	}
	delete(r.sessionRooms, connID)
}

func (r *Router) leaveLocked(conversationID string, connID string) {
	if connID == "" {
		return
	}
	if room := r.rooms[conversationID]; room != nil {
		delete(room, connID)
		if len(room) == 0 {
			delete(r.rooms, conversationID)
		}
	}
	if memberships, ok := r.sessionRooms[connID]; ok {
		delete(memberships, conversationID)
		if len(memberships) == 0 {
			delete(r.sessionRooms, connID)
		}
	}
}
