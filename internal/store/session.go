package store

import (
	"context"
	"strings"
	"sync"

	"farmlink-be/internal/cart"
	"farmlink-be/internal/chat"
	"farmlink-be/internal/logger"
	"farmlink-be/internal/market"
	"farmlink-be/internal/user"
	"farmlink-be/internal/utils"

	"go.uber.org/zap"
)

// Session is one client's view of the store: the current user and a cart.
// Background work started on behalf of the session is bound to Context and
// stops when the session logs out.
type Session struct {
	ID    string
	store *Store

	mu     sync.Mutex
	userID string
	cart   cart.Cart

	ctx    context.Context
	cancel context.CancelFunc
}

func (s *Store) NewSession() *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:     utils.NewID("sess"),
		store:  s,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context is cancelled by Logout.
func (ss *Session) Context() context.Context {
	return ss.ctx
}

// CurrentUser resolves the session's user against the users collection.
func (ss *Session) CurrentUser() (user.User, bool) {
	ss.mu.Lock()
	id := ss.userID
	ss.mu.Unlock()
	if id == "" {
		return user.User{}, false
	}
	return ss.store.User(id)
}

// Signup always creates a new account, even when the identifier is already
// registered, and makes it the current user.
func (ss *Session) Signup(ctx context.Context, name, identifier, password string, role user.Role) (user.User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "store"),
		zap.String("method", "Signup"),
	)

	email, phone := user.SplitIdentifier(identifier)
	hashed, err := user.HashPassword(strings.TrimSpace(password))
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return user.User{}, err
	}

	normalized := user.NormalizeIdentifier(identifier)
	for _, existing := range ss.store.Users() {
		if existing.MatchesIdentifier(normalized) {
			log.Warn("identifier already registered, creating another account", zap.String("existing_id", existing.ID))
			break
		}
	}

	u := user.User{
		ID:          utils.NewID("u"),
		Name:        name,
		Email:       email,
		PhoneNumber: phone,
		Password:    hashed,
		Role:        role,
		Location:    "Unknown",
	}
	ss.store.createUser(ctx, u)

	ss.mu.Lock()
	ss.userID = u.ID
	ss.mu.Unlock()

	log.Info("user signed up", zap.String("user_id", u.ID), zap.String("role", string(role)))
	return u, nil
}

// Login matches the identifier case-insensitively against emails or exactly
// against phone numbers, and the password against the stored hash. role is
// accepted but does not filter candidates.
func (ss *Session) Login(ctx context.Context, identifier, password string, role user.Role) (user.User, bool) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "store"),
		zap.String("method", "Login"),
	)

	u, ok := ss.store.findLogin(user.NormalizeIdentifier(identifier), strings.TrimSpace(password))
	if !ok {
		log.Info("login rejected")
		return user.User{}, false
	}

	if role != "" && role != u.Role {
		log.Info("login role differs from account role",
			zap.String("requested", string(role)),
			zap.String("account", string(u.Role)),
		)
	}

	ss.mu.Lock()
	ss.userID = u.ID
	ss.mu.Unlock()
	return u, true
}

// Logout clears the current user and the cart and stops background work.
func (ss *Session) Logout() {
	ss.mu.Lock()
	ss.userID = ""
	ss.cart.Clear()
	ss.mu.Unlock()
	ss.cancel()
}

// UpdateProfile merges p into the current user. It is a no-op when logged out.
func (ss *Session) UpdateProfile(ctx context.Context, p user.ProfileUpdate) (user.User, bool) {
	ss.mu.Lock()
	id := ss.userID
	ss.mu.Unlock()
	if id == "" {
		return user.User{}, false
	}
	return ss.store.updateUser(ctx, id, p)
}

// AddToCart reports whether the listing was added; duplicates are ignored.
func (ss *Session) AddToCart(item market.CropListing) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.cart.Add(item)
}

func (ss *Session) Cart() []market.CropListing {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.cart.Items()
}

// CreateChat returns the id of the room shared with otherUserID, creating it on
// first use. It returns "" when logged out.
func (ss *Session) CreateChat(otherUserID string) string {
	ss.mu.Lock()
	id := ss.userID
	ss.mu.Unlock()
	if id == "" {
		return ""
	}
	return ss.store.openRoom(id, otherUserID).ID
}

// AssistantRoom returns the current user's private room with the AI
// assistant. It returns "" when logged out.
func (ss *Session) AssistantRoom() string {
	return ss.CreateChat(chat.AssistantUserID)
}

// SendMessage appends text to the room as the current user. ok is false when
// logged out.
func (ss *Session) SendMessage(roomID, text string) (chat.Message, bool) {
	ss.mu.Lock()
	id := ss.userID
	ss.mu.Unlock()
	if id == "" {
		return chat.Message{}, false
	}
	return ss.store.AppendMessage(roomID, id, text, false), true
}
