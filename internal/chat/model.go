package chat

import "time"

// AssistantRoomID is the alias clients use for their own room with the AI
// assistant; AssistantUserID is the assistant's participant and sender id.
const (
	AssistantRoomID = "ai-assistant"
	AssistantUserID = "ai-bot"
)

// Room is a two-party conversation. Participants are an unordered pair.
type Room struct {
	ID           string    `json:"id"`
	Participants []string  `json:"participants"`
	LastMessage  string    `json:"lastMessage,omitempty"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

func (r Room) Has(userID string) bool {
	for _, p := range r.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Joins reports whether the room contains both ids, in either order.
func (r Room) Joins(a, b string) bool {
	return r.Has(a) && r.Has(b)
}

// Other returns the participant that is not userID.
func (r Room) Other(userID string) string {
	for _, p := range r.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

type Message struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	IsAI      bool      `json:"isAi,omitempty"`
}

// FindRoom returns the first room joining a and b.
func FindRoom(rooms []Room, a, b string) (Room, bool) {
	for _, r := range rooms {
		if r.Joins(a, b) {
			return r, true
		}
	}
	return Room{}, false
}

// IsAssistant reports whether the room's other party is the AI assistant.
func (r Room) IsAssistant() bool {
	return r.Has(AssistantUserID)
}

func RoomsFor(rooms []Room, userID string) []Room {
	var out []Room
	for _, r := range rooms {
		if r.Has(userID) {
			out = append(out, r)
		}
	}
	return out
}
