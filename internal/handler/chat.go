package handler

import (
	"net/http"
	"strings"

	"farmlink-be/internal/ai"
	"farmlink-be/internal/chat"
	"farmlink-be/internal/logger"
	"farmlink-be/internal/store"
	"farmlink-be/internal/user"
	"farmlink-be/internal/utils"

	"go.uber.org/zap"
)

func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	_, u, ok := h.session(w, r)
	if !ok {
		return
	}

	rooms := chat.RoomsFor(h.Store.Rooms(), u.ID)
	out := make([]roomResponse, 0, len(rooms))
	for _, room := range rooms {
		rr := roomResponse{Room: room}
		if other, found := h.Store.User(room.Other(u.ID)); found {
			p := publicUser(other)
			rr.OtherUser = &p
		}
		out = append(out, rr)
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

// CreateChat opens (or reuses) the room shared with another user. The
// assistant's user id opens the caller's assistant room.
func (h *Handler) CreateChat(w http.ResponseWriter, r *http.Request) {
	sess, u, ok := h.session(w, r)
	if !ok {
		return
	}

	var req createChatRequest
	if !decode(w, r, &req) {
		return
	}

	if req.UserID == u.ID {
		utils.WriteJSONError(w, chat.ErrSelfChat.Error(), http.StatusUnprocessableEntity)
		return
	}

	var roomID string
	if req.UserID == chat.AssistantUserID || req.UserID == chat.AssistantRoomID {
		roomID = sess.AssistantRoom()
	} else {
		if _, found := h.Store.User(req.UserID); !found {
			utils.WriteJSONError(w, user.ErrUserNotFound.Error(), http.StatusNotFound)
			return
		}
		roomID = sess.CreateChat(req.UserID)
	}

	if roomID == "" {
		utils.WriteJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	utils.WriteJSON(w, http.StatusOK, createChatResponse{RoomID: roomID})
}

// room resolves the {id} path value to a room the caller belongs to, mapping
// the assistant alias to the caller's own assistant room.
func (h *Handler) room(w http.ResponseWriter, r *http.Request, sess *store.Session, u user.User) (chat.Room, bool) {
	id := r.PathValue("id")
	if id == chat.AssistantRoomID {
		id = sess.AssistantRoom()
	}

	room, ok := h.Store.Room(id)
	if !ok {
		utils.WriteJSONError(w, chat.ErrRoomNotFound.Error(), http.StatusNotFound)
		return chat.Room{}, false
	}
	if !room.Has(u.ID) {
		utils.WriteJSONError(w, chat.ErrNotAMember.Error(), http.StatusForbidden)
		return chat.Room{}, false
	}
	return room, true
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	sess, u, ok := h.session(w, r)
	if !ok {
		return
	}
	room, ok := h.room(w, r, sess, u)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, nonNil(h.Store.Messages(room.ID)))
}

// SendMessage appends the caller's message and pushes it to the room. In an
// assistant room the AI reply is appended and returned as well.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	sess, u, ok := h.session(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if !decode(w, r, &req) {
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		utils.WriteJSONError(w, chat.ErrEmptyMessage.Error(), http.StatusBadRequest)
		return
	}

	room, ok := h.room(w, r, sess, u)
	if !ok {
		return
	}

	history := h.Store.Messages(room.ID)

	msg, ok := sess.SendMessage(room.ID, text)
	if !ok {
		utils.WriteJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	h.Hub.Publish(room, msg)

	resp := sendMessageResponse{Message: msg}
	if room.IsAssistant() {
		reply := h.Gateway.ChatAssistance(r.Context(), toTurns(history), text)
		replyMsg := h.Store.AppendMessage(room.ID, chat.AssistantUserID, reply, true)
		h.Hub.Publish(room, replyMsg)
		resp.Reply = &replyMsg

		logger.FromCtx(r.Context()).Debug("assistant replied",
			zap.String("layer", "handler"),
			zap.String("room_id", room.ID),
		)
	}

	utils.WriteJSON(w, http.StatusCreated, resp)
}

func toTurns(msgs []chat.Message) []ai.Turn {
	turns := make([]ai.Turn, 0, len(msgs))
	for _, m := range msgs {
		turns = append(turns, ai.Turn{FromAssistant: m.IsAI, Text: m.Text})
	}
	return turns
}

// ServeWS streams new messages for every room the caller belongs to. The
// socket closes when the session logs out or expires.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sess, u, ok := h.session(w, r)
	if !ok {
		return
	}
	h.Hub.Serve(w, r, u.ID, sess.Context().Done())
}
