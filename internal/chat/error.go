package chat

import "errors"

var (
	ErrRoomNotFound = errors.New("chat room not found")
	ErrNotAMember   = errors.New("user is not a participant of this room")
	ErrEmptyMessage = errors.New("message text is empty")
	ErrSelfChat     = errors.New("cannot open a chat with yourself")
)
