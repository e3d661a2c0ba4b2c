package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outbound is one connection's delivery channel. Deliver must not block:
// a stalled connection is the transport's problem, never the hub's.
type Outbound interface {
	Deliver(payload []byte)
	Close()
}

// PresenceTracker records which users currently hold at least one live
// connection. Calls are best effort and happen off the dispatch path.
type PresenceTracker interface {
	SetOnline(ctx context.Context, userID string) error
	SetOffline(ctx context.Context, userID string) error
}

type Config struct {
	// MaxJoinedRooms caps how many chat rooms one connection may join in
	// a session. Exceeding it is a protocol anomaly, not a crash.
	MaxJoinedRooms int
}

const defaultMaxJoinedRooms = 128

type connState int

const (
	stateUnauthenticated connState = iota // connected, no personal room yet
	stateReady                            // setup completed
	stateTerminated                       // disconnected
)

// session is the hub's per-connection record.
type session struct {
	id          ConnID
	userID      string // authenticated user, fixed at upgrade time
	state       connState
	sink        Outbound
	joinedChats int
	limiter     *typingLimiter
}

type cmdKind int

const (
	cmdConnect cmdKind = iota
	cmdDisconnect
	cmdFrame
)

type command struct {
	kind   cmdKind
	id     ConnID
	userID string
	sink   Outbound
	raw    []byte
}

// Hub owns the connection registry and the room router, and dispatches
// every inbound event through a single queue so one event is fully
// processed before the next begins. It is constructed at startup and
// torn down by cancelling the context passed to Run; nothing about it is
// ambient process state.
type Hub struct {
	registry *Registry
	sessions map[ConnID]*session
	online   map[string]int // userID -> live connection count
	queue    chan command
	cfg      Config
	presence PresenceTracker // optional
	log      *Logger
}

func NewHub(cfg Config, presence PresenceTracker) *Hub {
	if cfg.MaxJoinedRooms <= 0 {
		cfg.MaxJoinedRooms = defaultMaxJoinedRooms
	}
	return &Hub{
		registry: NewRegistry(),
		sessions: make(map[ConnID]*session),
		online:   make(map[string]int),
		queue:    make(chan command, 512),
		cfg:      cfg,
		presence: presence,
		log:      NewLogger(),
	}
}

// Attach registers a new connection and returns its id. The connection
// starts unauthenticated; it owns no rooms until it sends setup.
func (h *Hub) Attach(userID string, sink Outbound) ConnID {
	id := ConnID(uuid.New().String())
	h.queue <- command{kind: cmdConnect, id: id, userID: userID, sink: sink}
	return id
}

// Detach reports a transport disconnect. Safe to call more than once.
func (h *Hub) Detach(id ConnID) {
	h.queue <- command{kind: cmdDisconnect, id: id}
}

// Receive hands one raw inbound frame to the dispatch queue.
func (h *Hub) Receive(id ConnID, raw []byte) {
	h.queue <- command{kind: cmdFrame, id: id, raw: raw}
}

// Run processes commands until ctx is cancelled. All registry mutations
// and broadcasts happen here, one command at a time.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case cmd := <-h.queue:
			h.process(cmd)
		}
	}
}

func (h *Hub) process(cmd command) {
	switch cmd.kind {
	case cmdConnect:
		h.handleConnect(cmd.id, cmd.userID, cmd.sink)
	case cmdDisconnect:
		h.handleDisconnect(cmd.id)
	case cmdFrame:
		h.handleFrame(cmd.id, cmd.raw)
	}
}

func (h *Hub) shutdown() {
	for id := range h.sessions {
		h.handleDisconnect(id)
	}
}

func (h *Hub) handleConnect(id ConnID, userID string, sink Outbound) {
	h.registry.Add(id)
	h.sessions[id] = &session{
		id:      id,
		userID:  userID,
		state:   stateUnauthenticated,
		sink:    sink,
		limiter: newTypingLimiter(time.Now()),
	}
	h.log.Info("connected", id, zap.String("user_id", userID))
}

func (h *Hub) handleDisconnect(id ConnID) {
	s, ok := h.sessions[id]
	if !ok || s.state == stateTerminated {
		// second disconnect, ignore
		return
	}

	chatRooms := 0
	for _, room := range h.registry.RoomsOf(id) {
		if room.isChatRoom() {
			chatRooms++
		}
	}

	// Cleanup must finish before any later broadcast is computed, so a
	// dead handle never appears in a member snapshot.
	h.registry.Remove(id)
	wasReady := s.state == stateReady
	s.state = stateTerminated
	delete(h.sessions, id)
	s.sink.Close()

	if wasReady {
		h.online[s.userID]--
		if h.online[s.userID] <= 0 {
			delete(h.online, s.userID)
			h.trackPresence(s.userID, false)
		}
	}

	h.log.Info("disconnected", id,
		zap.String("user_id", s.userID),
		zap.Int("chat_rooms", chatRooms))
}

func (h *Hub) handleFrame(id ConnID, raw []byte) {
	s, ok := h.sessions[id]
	if !ok || s.state == stateTerminated {
		// frame raced a disconnect, drop it
		return
	}

	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		h.log.Anomaly("frame", id, "malformed envelope")
		return
	}

	if s.state == stateUnauthenticated {
		if f.Event != EventSetup {
			h.log.Anomaly(f.Event, id, "event before setup")
			return
		}
		h.handleSetup(s, f)
		return
	}

	switch f.Event {
	case EventSetup:
		h.log.Anomaly(f.Event, id, "duplicate setup")
	case EventJoinChat:
		h.handleJoinChat(s, f)
	case EventTyping, EventStopTyping:
		h.handleTyping(s, f)
	case EventNewMessage:
		h.handleNewMessage(s, f)
	default:
		h.log.Anomaly(f.Event, id, "unknown event")
	}
}

func (h *Hub) handleSetup(s *session, f Frame) {
	var data SetupData
	if err := json.Unmarshal(f.Data, &data); err != nil || data.UserID == "" {
		h.log.Anomaly(f.Event, s.id, "missing user id")
		return
	}
	if s.userID != "" && data.UserID != s.userID {
		h.log.Anomaly(f.Event, s.id, "setup user does not match token user")
		return
	}

	h.registry.Join(s.id, UserRoom(data.UserID))
	s.userID = data.UserID
	s.state = stateReady

	h.online[s.userID]++
	if h.online[s.userID] == 1 {
		h.trackPresence(s.userID, true)
	}

	// Acknowledge to this connection only.
	s.sink.Deliver(encodeFrame(EventConnected, nil))
	h.log.Info("setup", s.id, zap.String("user_id", s.userID))
}

func (h *Hub) handleJoinChat(s *session, f Frame) {
	chatID, ok := decodeRoomRef(f.Data)
	if !ok {
		h.log.Anomaly(f.Event, s.id, "missing room id")
		return
	}
	if s.joinedChats >= h.cfg.MaxJoinedRooms {
		h.log.Anomaly(f.Event, s.id, "joined room cap reached",
			zap.Int("cap", h.cfg.MaxJoinedRooms))
		return
	}
	if h.registry.Join(s.id, ChatRoom(chatID)) {
		s.joinedChats++
	}
}

func (h *Hub) handleTyping(s *session, f Frame) {
	chatID, ok := decodeRoomRef(f.Data)
	if !ok {
		h.log.Anomaly(f.Event, s.id, "missing room id")
		return
	}
	if !s.limiter.allow(time.Now()) {
		h.log.Anomaly(f.Event, s.id, "typing rate limit exceeded")
		return
	}
	h.broadcast(ChatRoom(chatID), encodeFrame(f.Event, f.Data), s.id)
}

func (h *Hub) handleNewMessage(s *session, f Frame) {
	var data MessageData
	if err := json.Unmarshal(f.Data, &data); err != nil {
		h.log.Anomaly(f.Event, s.id, "malformed message event")
		return
	}
	if len(data.Chat.Members) == 0 {
		// Sender error, not ours. Keep the connection alive.
		h.log.Anomaly(f.Event, s.id, "chat members not defined")
		return
	}

	payload := encodeFrame(EventMessageReceived, f.Data)
	for _, member := range data.Chat.Members {
		if member == data.Sender.ID {
			continue
		}
		h.broadcast(UserRoom(member), payload, s.id)
	}
}

// broadcast delivers payload to every connection in the room except the
// excluded one. Fire and forget: an empty room is a no-op, and delivery
// to each member is independent of the others. The member set is
// snapshotted at call time.
func (h *Hub) broadcast(room RoomID, payload []byte, exclude ConnID) {
	for _, id := range h.registry.Members(room) {
		if id == exclude {
			continue
		}
		if s, ok := h.sessions[id]; ok && s.state != stateTerminated {
			s.sink.Deliver(payload)
		}
	}
}

// trackPresence fires presence updates off the dispatch path. A broken
// presence store must never stall event processing.
func (h *Hub) trackPresence(userID string, on bool) {
	if h.presence == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		var err error
		if on {
			err = h.presence.SetOnline(ctx, userID)
		} else {
			err = h.presence.SetOffline(ctx, userID)
		}
		if err != nil {
			h.log.Error("presence", "", err, zap.String("user_id", userID))
		}
	}()
}

// decodeRoomRef accepts the room reference as either a bare JSON string
// or an object with an id field, since clients have shipped both.
func decodeRoomRef(raw json.RawMessage) (string, bool) {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil && id != "" {
		return id, true
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.ID != "" {
		return obj.ID, true
	}
	return "", false
}
