package session

import "sync"

// Participant is one live connection registered in a room.
type Participant struct {
	ID       string
	Username string
	RoomID   string
	Client   *Client
}

// Registry maps room ids to their live participants. Rooms are created by the
// first join and become unreferenced when the last participant leaves; there
// is no persistence and no capacity limit.
type Registry struct {
	mu           sync.RWMutex
	participants map[string]*Participant            // by connection id
	rooms        map[string]map[string]*Participant // roomID -> connection id -> participant
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		participants: make(map[string]*Participant),
		rooms:        make(map[string]map[string]*Participant),
	}
}

// Join registers the client in a room under its connection id. Duplicate
// display names are allowed. A connection that was already in a room moves:
// it is removed from the previous room so no ghost member survives there.
func (r *Registry) Join(roomID, username string, c *Client) *Participant {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.participants[c.ID]; ok {
		r.removeFromRoom(prev)
	}

	p := &Participant{
		ID:       c.ID,
		Username: username,
		RoomID:   roomID,
		Client:   c,
	}
	r.participants[c.ID] = p

	room, ok := r.rooms[roomID]
	if !ok {
		room = make(map[string]*Participant)
		r.rooms[roomID] = room
	}
	room[c.ID] = p

	return p
}

// Leave removes the connection from whatever room it was in. Leaving twice,
// or without having joined, is a no-op.
func (r *Registry) Leave(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[connectionID]
	if !ok {
		return
	}
	delete(r.participants, connectionID)
	r.removeFromRoom(p)
}

// removeFromRoom drops the participant from its room's member set, releasing
// the room when it empties. Caller holds the write lock.
func (r *Registry) removeFromRoom(p *Participant) {
	if room, ok := r.rooms[p.RoomID]; ok {
		delete(room, p.ID)
		if len(room) == 0 {
			delete(r.rooms, p.RoomID)
		}
	}
}

// Get returns the participant for a connection id.
func (r *Registry) Get(connectionID string) (*Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.participants[connectionID]
	return p, ok
}

// RoomOf resolves which room a connection currently belongs to.
func (r *Registry) RoomOf(connectionID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.participants[connectionID]
	if !ok {
		return "", false
	}
	return p.RoomID, true
}

// MembersOf returns the current member list of a room. Unknown rooms yield an
// empty list, never an error.
func (r *Registry) MembersOf(roomID string) []ClientInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]ClientInfo, 0, len(r.rooms[roomID]))
	for _, p := range r.rooms[roomID] {
		members = append(members, ClientInfo{SocketID: p.ID, Username: p.Username})
	}
	return members
}

// participantsIn snapshots the room's participants for fan-out outside the
// lock.
func (r *Registry) participantsIn(roomID string) []*Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]*Participant, 0, len(r.rooms[roomID]))
	for _, p := range r.rooms[roomID] {
		snapshot = append(snapshot, p)
	}
	return snapshot
}
