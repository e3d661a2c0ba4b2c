package realtime

// ConnID identifies one live push-channel session.
type ConnID string

// Registry tracks which rooms each connection belongs to and which
// connections each room holds. Membership is always recorded from both
// sides or neither, so the two maps stay mutually consistent.
//
// Registry is not safe for concurrent use. All mutations happen on the
// hub's event loop, which processes one command at a time.
type Registry struct {
	// conns maps connection id to the set of rooms it belongs to
	conns map[ConnID]map[RoomID]struct{}

	// rooms maps room id to the set of connections subscribed to it
	rooms map[RoomID]map[ConnID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[ConnID]map[RoomID]struct{}),
		rooms: make(map[RoomID]map[ConnID]struct{}),
	}
}

// Add registers a fresh connection with an empty room set.
func (r *Registry) Add(id ConnID) {
	if _, ok := r.conns[id]; !ok {
		r.conns[id] = make(map[RoomID]struct{})
	}
}

// Remove detaches the connection from every room it is part of and
// forgets it. Calling Remove twice is a no-op the second time.
func (r *Registry) Remove(id ConnID) {
	rooms, ok := r.conns[id]
	if !ok {
		return
	}
	for room := range rooms {
		r.detach(id, room)
	}
	delete(r.conns, id)
}

// Join adds the connection to the room and the room to the connection.
// Joining an unknown connection is a harmless no-op, since a disconnect
// can race an in-flight event. Returns true when membership was newly
// established.
func (r *Registry) Join(id ConnID, room RoomID) bool {
	rooms, ok := r.conns[id]
	if !ok {
		return false
	}
	if _, joined := rooms[room]; joined {
		return false
	}
	rooms[room] = struct{}{}
	if _, ok := r.rooms[room]; !ok {
		r.rooms[room] = make(map[ConnID]struct{})
	}
	r.rooms[room][id] = struct{}{}
	return true
}

// Leave is the inverse of Join; a no-op when not a member.
func (r *Registry) Leave(id ConnID, room RoomID) {
	rooms, ok := r.conns[id]
	if !ok {
		return
	}
	if _, joined := rooms[room]; !joined {
		return
	}
	delete(rooms, room)
	r.detach(id, room)
}

// RoomsOf returns the rooms the connection currently belongs to. An
// unknown or disconnected id yields an empty set rather than an error.
func (r *Registry) RoomsOf(id ConnID) []RoomID {
	rooms := make([]RoomID, 0, len(r.conns[id]))
	for room := range r.conns[id] {
		rooms = append(rooms, room)
	}
	return rooms
}

// Members returns a snapshot of the room's member set, so a disconnect
// landing mid-broadcast cannot disturb an iteration over it. An empty
// room yields an empty slice.
func (r *Registry) Members(room RoomID) []ConnID {
	members := make([]ConnID, 0, len(r.rooms[room]))
	for id := range r.rooms[room] {
		members = append(members, id)
	}
	return members
}

// detach removes the room-side record and prunes the room once empty.
func (r *Registry) detach(id ConnID, room RoomID) {
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}
