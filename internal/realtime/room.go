package realtime

// RoomID is a logical broadcast group. The two namespaces are kept
// distinct by prefix so a chat id can never collide with a user id.
type RoomID string

const (
	userRoomPrefix = "user:"
	chatRoomPrefix = "chat:"
)

// UserRoom is the personal room every connection of a user joins on
// setup. It is the private delivery address for that user regardless of
// which chat view is active.
func UserRoom(userID string) RoomID {
	return RoomID(userRoomPrefix + userID)
}

// ChatRoom is the per-thread room used for typing indicators.
func ChatRoom(chatID string) RoomID {
	return RoomID(chatRoomPrefix + chatID)
}

// isChatRoom reports whether the room belongs to the chat namespace.
func (r RoomID) isChatRoom() bool {
	return len(r) > len(chatRoomPrefix) && string(r[:len(chatRoomPrefix)]) == chatRoomPrefix
}
