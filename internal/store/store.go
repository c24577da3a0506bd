// Package store holds the marketplace's domain state. Store owns every entity
// collection and is their only writer; Session carries the per-client current
// user and cart.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"farmlink-be/internal/chat"
	"farmlink-be/internal/logger"
	"farmlink-be/internal/market"
	"farmlink-be/internal/order"
	"farmlink-be/internal/user"
	"farmlink-be/internal/utils"

	"go.uber.org/zap"
)

// Store is safe for concurrent use. Every operation runs to completion under
// one lock, so cascading writes such as PlaceOrder are atomic to readers.
type Store struct {
	mu sync.RWMutex

	users    []user.User
	listings []market.CropListing
	requests []market.BuyerRequest
	orders   []order.Order
	rooms    []chat.Room
	messages map[string][]chat.Message

	persister user.Persister
	now       func() time.Time
}

// New loads the users snapshot, falling back to the seed accounts when it is
// missing or unreadable. Listings, requests, orders and chats always start
// from seed/empty: only users survive a restart.
func New(ctx context.Context, persister user.Persister) *Store {
	log := logger.FromCtx(ctx).With(zap.String("layer", "store"))

	users, err := persister.Load(ctx)
	switch {
	case errors.Is(err, user.ErrSnapshotNotFound):
		log.Info("no users snapshot, using seed users")
		users = user.SeedUsers()
	case err != nil:
		log.Warn("users snapshot unusable, using seed users", zap.Error(err))
		users = user.SeedUsers()
	}

	now := time.Now()
	s := &Store{
		users:     users,
		listings:  market.SeedListings(now),
		requests:  market.SeedRequests(now),
		messages:  make(map[string][]chat.Message),
		persister: persister,
		now:       time.Now,
	}

	s.mu.Lock()
	s.persistUsersLocked(ctx)
	s.mu.Unlock()

	return s
}

// persistUsersLocked writes the whole users collection. Failures are logged and
// leave in-memory state as is.
func (s *Store) persistUsersLocked(ctx context.Context) {
	snapshot := append([]user.User(nil), s.users...)
	if err := s.persister.Save(ctx, snapshot); err != nil {
		logger.FromCtx(ctx).Error("failed to persist users", zap.Error(err))
	}
}

func (s *Store) Users() []user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]user.User(nil), s.users...)
}

func (s *Store) User(id string) (user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userLocked(id)
}

func (s *Store) userLocked(id string) (user.User, bool) {
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return user.User{}, false
}

func (s *Store) Listings() []market.CropListing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]market.CropListing(nil), s.listings...)
}

func (s *Store) Listing(id string) (market.CropListing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.listings {
		if l.ID == id {
			return l, true
		}
	}
	return market.CropListing{}, false
}

func (s *Store) Requests() []market.BuyerRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]market.BuyerRequest(nil), s.requests...)
}

func (s *Store) Orders() []order.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]order.Order(nil), s.orders...)
}

func (s *Store) Order(id string) (order.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o, true
		}
	}
	return order.Order{}, false
}

func (s *Store) Rooms() []chat.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]chat.Room(nil), s.rooms...)
}

func (s *Store) Room(id string) (chat.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rooms {
		if r.ID == id {
			return r, true
		}
	}
	return chat.Room{}, false
}

// Messages returns a room's messages in insertion order.
func (s *Store) Messages(roomID string) []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]chat.Message(nil), s.messages[roomID]...)
}

// AddListing prepends l, keeping the collection newest-first.
func (s *Store) AddListing(l market.CropListing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = append([]market.CropListing{l}, s.listings...)
}

func (s *Store) AddRequest(r market.BuyerRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append([]market.BuyerRequest{r}, s.requests...)
}

// PurchaseListing takes quantity units from a listing. Stock is not checked
// here; callers validate first. It reports whether the listing exists.
func (s *Store) PurchaseListing(listingID string, quantity float64) (market.CropListing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purchaseLocked(listingID, quantity)
}

func (s *Store) purchaseLocked(listingID string, quantity float64) (market.CropListing, bool) {
	for i, l := range s.listings {
		if l.ID == listingID {
			s.listings[i] = l.Purchase(quantity)
			return s.listings[i], true
		}
	}
	return market.CropListing{}, false
}

// PlaceOrder prepends o and decrements the referenced listing in one step.
func (s *Store) PlaceOrder(o order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append([]order.Order{o}, s.orders...)
	s.purchaseLocked(o.ListingID, o.Quantity)
}

// PlaceOrderWithinStock is PlaceOrder guarded by a stock check made under the
// same lock. It reports false, changing nothing, when the listing is missing
// or holds less than o.Quantity.
func (s *Store) PlaceOrderWithinStock(o order.Order) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.listings {
		if l.ID == o.ListingID {
			if l.Quantity < o.Quantity {
				return false
			}
			s.orders = append([]order.Order{o}, s.orders...)
			s.purchaseLocked(o.ListingID, o.Quantity)
			return true
		}
	}
	return false
}

// UpdateOrderStatus overwrites the status unconditionally. It reports whether
// the order exists.
func (s *Store) UpdateOrderStatus(orderID string, status order.Status) (order.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, o := range s.orders {
		if o.ID == orderID {
			s.orders[i].Status = status
			return s.orders[i], true
		}
	}
	return order.Order{}, false
}

func (s *Store) createUser(ctx context.Context, u user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, u)
	s.persistUsersLocked(ctx)
}

func (s *Store) findLogin(normalized, password string) (user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.MatchesIdentifier(normalized) && user.CheckPasswordHash(password, u.Password) {
			return u, true
		}
	}
	return user.User{}, false
}

func (s *Store) updateUser(ctx context.Context, id string, p user.ProfileUpdate) (user.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.users {
		if u.ID == id {
			s.users[i] = u.Apply(p)
			s.persistUsersLocked(ctx)
			return s.users[i], true
		}
	}
	return user.User{}, false
}

// openRoom returns the room joining a and b, creating it when none exists.
func (s *Store) openRoom(a, b string) chat.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := chat.FindRoom(s.rooms, a, b); ok {
		return r
	}
	r := chat.Room{
		ID:           utils.NewID("room"),
		Participants: []string{a, b},
		LastUpdated:  s.now(),
	}
	s.rooms = append(s.rooms, r)
	return r
}

// AppendMessage adds a message to a room's sequence and refreshes the room's
// summary fields. Messages to unknown room ids are still recorded.
func (s *Store) AppendMessage(roomID, senderID, text string, isAI bool) chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := chat.Message{
		ID:        utils.NewID("msg"),
		RoomID:    roomID,
		SenderID:  senderID,
		Text:      text,
		Timestamp: s.now(),
		IsAI:      isAI,
	}
	s.messages[roomID] = append(s.messages[roomID], msg)

	for i, r := range s.rooms {
		if r.ID == roomID {
			s.rooms[i].LastMessage = text
			s.rooms[i].LastUpdated = msg.Timestamp
			break
		}
	}
	return msg
}
