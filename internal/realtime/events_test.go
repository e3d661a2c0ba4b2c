package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeFrame(t *testing.T) {
	req := require.New(t)

	req.JSONEq(`{"event":"connected"}`, string(encodeFrame(EventConnected, nil)))

	payload := encodeFrame(EventTyping, json.RawMessage(`"42"`))
	req.JSONEq(`{"event":"typing","data":"42"}`, string(payload))

	payload = encodeFrame(EventMessageReceived, MessageData{
		Sender: SenderRef{ID: "alice"},
		Chat:   ChatRef{ID: "42", Members: []string{"alice", "bob"}},
	})
	var f Frame
	req.NoError(json.Unmarshal(payload, &f))
	req.Equal(EventMessageReceived, f.Event)

	var data MessageData
	req.NoError(json.Unmarshal(f.Data, &data))
	req.Equal("alice", data.Sender.ID)
	req.Equal([]string{"alice", "bob"}, data.Chat.Members)
}

func TestDecodeRoomRef(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"bare string", `"42"`, "42", true},
		{"object with id", `{"id":"42"}`, "42", true},
		{"empty string", `""`, "", false},
		{"object without id", `{"name":"general"}`, "", false},
		{"not json", `{`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := decodeRoomRef(json.RawMessage(tt.raw))
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRoomNamespacesCannotCollide(t *testing.T) {
	// same id, different namespaces
	require.NotEqual(t, UserRoom("42"), ChatRoom("42"))
	require.True(t, ChatRoom("42").isChatRoom())
	require.False(t, UserRoom("42").isChatRoom())
}
