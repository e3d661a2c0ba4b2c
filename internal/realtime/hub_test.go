package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// recordingSink captures everything the hub delivers to one connection.
type recordingSink struct {
	mu     sync.Mutex
	frames []Frame
	closed bool
}

func (s *recordingSink) Deliver(payload []byte) {
	var f Frame
	if err := json.Unmarshal(payload, &f); err != nil {
		panic(fmt.Sprintf("hub delivered invalid frame: %v", err))
	}
	s.mu.Lock()
	s.frames = append(s.frames, f)
	s.mu.Unlock()
}

func (s *recordingSink) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *recordingSink) events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.frames))
	for _, f := range s.frames {
		names = append(names, f.Event)
	}
	return names
}

func (s *recordingSink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func newTestHub() *Hub {
	return NewHub(Config{MaxJoinedRooms: 4}, nil)
}

// connect attaches a connection and completes setup for the given user.
func connect(t *testing.T, h *Hub, id ConnID, userID string) *recordingSink {
	t.Helper()
	sink := &recordingSink{}
	h.handleConnect(id, userID, sink)
	h.handleFrame(id, setupFrame(userID))
	require.Equal(t, []string{EventConnected}, sink.events())
	return sink
}

func setupFrame(userID string) []byte {
	return []byte(fmt.Sprintf(`{"event":"setup","data":{"userId":%q}}`, userID))
}

func joinFrame(chatID string) []byte {
	return []byte(fmt.Sprintf(`{"event":"join chat","data":%q}`, chatID))
}

func typingFrame(chatID string) []byte {
	return []byte(fmt.Sprintf(`{"event":"typing","data":%q}`, chatID))
}

func messageFrame(senderID, chatID string, members ...string) []byte {
	data := map[string]any{
		"id":      "m1",
		"sender":  map[string]string{"id": senderID},
		"content": "hello",
		"chat":    map[string]any{"id": chatID, "members": members},
	}
	raw, _ := json.Marshal(data)
	return []byte(fmt.Sprintf(`{"event":"new message","data":%s}`, raw))
}

func TestSetupAcknowledgesOnlyTheConnection(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	a := connect(t, h, "ca", "alice")
	b := connect(t, h, "cb", "bob")

	req.Equal([]string{EventConnected}, a.events())
	req.Equal([]string{EventConnected}, b.events())
	req.ElementsMatch([]ConnID{"ca"}, h.registry.Members(UserRoom("alice")))
}

func TestSetupUserMustMatchTokenUser(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	sink := &recordingSink{}
	h.handleConnect("c1", "alice", sink)
	h.handleFrame("c1", setupFrame("mallory"))

	req.Empty(sink.events())
	req.Empty(h.registry.Members(UserRoom("mallory")))
	req.Equal(stateUnauthenticated, h.sessions["c1"].state)
}

func TestEventsBeforeSetupAreDropped(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	sink := &recordingSink{}
	h.handleConnect("c1", "alice", sink)
	h.handleFrame("c1", joinFrame("42"))
	h.handleFrame("c1", typingFrame("42"))

	req.Empty(h.registry.RoomsOf("c1"))
	req.Empty(sink.events())
	// the connection stays alive
	req.Equal(stateUnauthenticated, h.sessions["c1"].state)
}

func TestNewMessageFansOutToMembersExceptSender(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	a := connect(t, h, "ca", "alice")
	b := connect(t, h, "cb", "bob")
	c := connect(t, h, "cc", "carol")

	h.handleFrame("ca", messageFrame("alice", "42", "alice", "bob"))

	req.Equal([]string{EventConnected}, a.events(), "sender receives nothing")
	req.Equal([]string{EventConnected, EventMessageReceived}, b.events())
	req.Equal([]string{EventConnected}, c.events(), "non-member receives nothing")

	// the full message object is re-broadcast untouched
	var data MessageData
	req.NoError(json.Unmarshal(b.frames[1].Data, &data))
	req.Equal("alice", data.Sender.ID)
	req.Equal([]string{"alice", "bob"}, data.Chat.Members)
}

func TestNewMessageDeliversToEveryConnectionOfAMember(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	connect(t, h, "ca", "alice")
	b1 := connect(t, h, "cb1", "bob")
	b2 := connect(t, h, "cb2", "bob")

	h.handleFrame("ca", messageFrame("alice", "42", "alice", "bob"))

	req.Equal([]string{EventConnected, EventMessageReceived}, b1.events())
	req.Equal([]string{EventConnected, EventMessageReceived}, b2.events())
}

func TestNewMessageWithoutMembersIsAnomalyNotCrash(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	a := connect(t, h, "ca", "alice")
	b := connect(t, h, "cb", "bob")

	h.handleFrame("ca", []byte(`{"event":"new message","data":{"sender":{"id":"alice"},"chat":{"id":"42"}}}`))
	h.handleFrame("ca", []byte(`{"event":"new message","data":"garbage`))

	req.Equal([]string{EventConnected}, a.events())
	req.Equal([]string{EventConnected}, b.events())
	// connection survives both anomalies
	req.Equal(stateReady, h.sessions["ca"].state)
}

func TestTypingIsScopedToTheChatRoom(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	a := connect(t, h, "ca", "alice")
	b := connect(t, h, "cb", "bob")
	c := connect(t, h, "cc", "carol")

	h.handleFrame("ca", joinFrame("42"))
	h.handleFrame("cb", joinFrame("42"))
	// carol is online but never joined chat 42

	h.handleFrame("ca", typingFrame("42"))

	req.Equal([]string{EventConnected}, a.events(), "typing excludes the sender")
	req.Equal([]string{EventConnected, EventTyping}, b.events())
	req.Equal([]string{EventConnected}, c.events())

	h.handleFrame("ca", []byte(`{"event":"stop typing","data":"42"}`))
	req.Equal([]string{EventConnected, EventTyping, EventStopTyping}, b.events())
}

func TestTypingIntoEmptyRoomIsNoOp(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	a := connect(t, h, "ca", "alice")
	h.handleFrame("ca", typingFrame("nobody-here"))

	req.Equal([]string{EventConnected}, a.events())
	req.Equal(stateReady, h.sessions["ca"].state)
}

func TestDisconnectCleansUpEveryRoom(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	a := connect(t, h, "ca", "alice")
	connect(t, h, "cb", "bob")
	h.handleFrame("ca", joinFrame("42"))

	h.handleDisconnect("ca")

	req.True(a.isClosed())
	req.Empty(h.registry.RoomsOf("ca"))
	req.Empty(h.registry.Members(UserRoom("alice")))
	req.Empty(h.registry.Members(ChatRoom("42")))

	// second disconnect is ignored
	h.handleDisconnect("ca")
}

func TestFanOutAfterRecipientDisconnected(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	connect(t, h, "ca", "alice")
	b := connect(t, h, "cb", "bob")

	h.handleDisconnect("cb")

	// bob is still named as a member; dispatch completes and delivers
	// nothing to him
	h.handleFrame("ca", messageFrame("alice", "42", "alice", "bob"))
	req.Equal([]string{EventConnected}, b.events())
	req.Equal(stateReady, h.sessions["ca"].state)
}

func TestFrameAfterDisconnectIsDropped(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	connect(t, h, "ca", "alice")
	h.handleDisconnect("ca")
	h.handleFrame("ca", joinFrame("42"))

	req.Empty(h.registry.Members(ChatRoom("42")))
}

func TestJoinedRoomCapIsEnforced(t *testing.T) {
	req := require.New(t)
	h := newTestHub() // cap of 4

	connect(t, h, "ca", "alice")
	for i := 0; i < 6; i++ {
		h.handleFrame("ca", joinFrame(fmt.Sprintf("chat-%d", i)))
	}

	// 4 chat rooms plus the personal room; the excess joins were dropped
	req.Len(h.registry.RoomsOf("ca"), 5)
	req.Empty(h.registry.Members(ChatRoom("chat-4")))
	req.Equal(stateReady, h.sessions["ca"].state)
}

func TestRejoiningSameChatDoesNotConsumeCap(t *testing.T) {
	req := require.New(t)
	h := newTestHub() // cap of 4

	connect(t, h, "ca", "alice")
	for i := 0; i < 10; i++ {
		h.handleFrame("ca", joinFrame("42"))
	}
	h.handleFrame("ca", joinFrame("43"))

	req.Len(h.registry.RoomsOf("ca"), 3)
	req.Equal(2, h.sessions["ca"].joinedChats)
}

func TestDuplicateSetupIsDropped(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	a := connect(t, h, "ca", "alice")
	h.handleFrame("ca", setupFrame("alice"))

	req.Equal([]string{EventConnected}, a.events(), "no second ack")
}

func TestMalformedEnvelopeIsDropped(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	connect(t, h, "ca", "alice")
	h.handleFrame("ca", []byte(`not json`))
	h.handleFrame("ca", []byte(`{"event":"join chat","data":{"bogus":true}}`))

	req.Equal(stateReady, h.sessions["ca"].state)
	req.Len(h.registry.RoomsOf("ca"), 1) // just the personal room
}

func TestTypingRateLimit(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	connect(t, h, "ca", "alice")
	b := connect(t, h, "cb", "bob")
	h.handleFrame("ca", joinFrame("42"))
	h.handleFrame("cb", joinFrame("42"))

	for i := 0; i < maxTypingEventsPerMinute+10; i++ {
		h.handleFrame("ca", typingFrame("42"))
	}

	req.Len(b.events(), 1+maxTypingEventsPerMinute)
}

func TestOnlineCountTracksAcrossConnections(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	connect(t, h, "cb1", "bob")
	connect(t, h, "cb2", "bob")
	req.Equal(2, h.online["bob"])

	h.handleDisconnect("cb1")
	req.Equal(1, h.online["bob"])

	h.handleDisconnect("cb2")
	_, tracked := h.online["bob"]
	req.False(tracked)
}

// End-to-end through the queue: the public API and the Run loop.
func TestHubRunLoop(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	alice := &recordingSink{}
	bob := &recordingSink{}
	aliceID := h.Attach("alice", alice)
	bobID := h.Attach("bob", bob)

	h.Receive(aliceID, setupFrame("alice"))
	h.Receive(bobID, setupFrame("bob"))

	req.Eventually(func() bool {
		return len(alice.events()) == 1 && len(bob.events()) == 1
	}, time.Second, 5*time.Millisecond)

	h.Receive(aliceID, messageFrame("alice", "42", "alice", "bob"))

	req.Eventually(func() bool {
		events := bob.events()
		return len(events) == 2 && events[1] == EventMessageReceived
	}, time.Second, 5*time.Millisecond)
	req.Len(alice.events(), 1)

	h.Detach(bobID)
	req.Eventually(bob.isClosed, time.Second, 5*time.Millisecond)
}

// recordingPresence captures online/offline transitions the hub reports.
type recordingPresence struct {
	mu          sync.Mutex
	transitions []string
}

func (p *recordingPresence) SetOnline(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transitions = append(p.transitions, "online:"+userID)
	return nil
}

func (p *recordingPresence) SetOffline(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transitions = append(p.transitions, "offline:"+userID)
	return nil
}

func (p *recordingPresence) snapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.transitions...)
}

func TestPresenceFiresOnFirstAndLastConnection(t *testing.T) {
	req := require.New(t)
	tracker := &recordingPresence{}
	h := NewHub(Config{MaxJoinedRooms: 4}, tracker)

	connect(t, h, "c1", "alice")
	req.Eventually(func() bool {
		return len(tracker.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)
	req.Equal([]string{"online:alice"}, tracker.snapshot())

	// a second connection of the same user is not a new transition
	connect(t, h, "c2", "alice")
	h.handleDisconnect("c1")
	req.Equal([]string{"online:alice"}, tracker.snapshot())

	// the last connection going away is
	h.handleDisconnect("c2")
	req.Eventually(func() bool {
		return len(tracker.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)
	req.Equal([]string{"online:alice", "offline:alice"}, tracker.snapshot())
}
