package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"farmlink-be/internal/chat"
	"farmlink-be/internal/market"
	"farmlink-be/internal/order"
	"farmlink-be/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPersister struct {
	loadErr error
	saveErr error
	saves   int
}

func (p *failingPersister) Load(ctx context.Context) ([]user.User, error) {
	return nil, p.loadErr
}

func (p *failingPersister) Save(ctx context.Context, users []user.User) error {
	p.saves++
	return p.saveErr
}

func newTestStore(t *testing.T) (*Store, user.Persister) {
	t.Helper()
	p := user.NewMemoryPersister()
	return New(context.Background(), p), p
}

func TestNew(t *testing.T) {
	t.Run("Seeds when no snapshot", func(t *testing.T) {
		s, p := newTestStore(t)

		users := s.Users()
		require.Len(t, users, 3)
		assert.Equal(t, "u1", users[0].ID)
		assert.Len(t, s.Listings(), 2)
		assert.Len(t, s.Requests(), 1)
		assert.Empty(t, s.Orders())
		assert.Empty(t, s.Rooms())

		persisted, err := p.Load(context.Background())
		require.NoError(t, err)
		assert.Len(t, persisted, 3)
	})

	t.Run("Restores persisted users", func(t *testing.T) {
		p := user.NewMemoryPersister()
		require.NoError(t, p.Save(context.Background(), []user.User{{ID: "u-x", Name: "Only", Role: user.RoleBuyer}}))

		s := New(context.Background(), p)

		users := s.Users()
		require.Len(t, users, 1)
		assert.Equal(t, "u-x", users[0].ID)
		assert.Len(t, s.Listings(), 2, "non-user collections always start from seed")
	})

	t.Run("Falls back on corrupt snapshot", func(t *testing.T) {
		p := &failingPersister{loadErr: user.ErrSnapshotCorrupt}

		s := New(context.Background(), p)

		assert.Len(t, s.Users(), 3)
		assert.Equal(t, 1, p.saves)
	})

	t.Run("Save failure keeps memory state", func(t *testing.T) {
		p := &failingPersister{loadErr: user.ErrSnapshotNotFound, saveErr: errors.New("disk full")}

		s := New(context.Background(), p)
		sess := s.NewSession()
		_, err := sess.Signup(context.Background(), "Kim", "kim@x.com", "pw", user.RoleBuyer)

		require.NoError(t, err)
		assert.Len(t, s.Users(), 4)
	})
}

func TestStore_AddListingAndRequest(t *testing.T) {
	s, _ := newTestStore(t)

	s.AddListing(market.CropListing{ID: "l9", CropName: "Rice", Status: market.ListingActive})
	s.AddRequest(market.BuyerRequest{ID: "r9", CropName: "Rice", Status: market.RequestOpen})

	assert.Equal(t, "l9", s.Listings()[0].ID)
	assert.Equal(t, "r9", s.Requests()[0].ID)

	got, ok := s.Listing("l9")
	assert.True(t, ok)
	assert.Equal(t, "Rice", got.CropName)
}

func TestStore_PurchaseListing(t *testing.T) {
	s, _ := newTestStore(t)

	t.Run("Partial", func(t *testing.T) {
		l, ok := s.PurchaseListing("l1", 100)
		require.True(t, ok)
		assert.Equal(t, 400.0, l.Quantity)
		assert.Equal(t, market.ListingActive, l.Status)
	})

	t.Run("Exhausts stock", func(t *testing.T) {
		l, ok := s.PurchaseListing("l1", 400)
		require.True(t, ok)
		assert.Equal(t, 0.0, l.Quantity)
		assert.Equal(t, market.ListingSold, l.Status)
	})

	t.Run("Over-purchase clamps to zero", func(t *testing.T) {
		l, ok := s.PurchaseListing("l2", 5000)
		require.True(t, ok)
		assert.Equal(t, 0.0, l.Quantity)
		assert.Equal(t, market.ListingSold, l.Status)
	})

	t.Run("Unknown listing", func(t *testing.T) {
		before := s.Listings()
		_, ok := s.PurchaseListing("nope", 1)
		assert.False(t, ok)
		assert.Equal(t, before, s.Listings())
	})
}

func TestStore_PlaceOrder(t *testing.T) {
	s, _ := newTestStore(t)

	s.PlaceOrder(order.Order{ID: "o1", ListingID: "l1", Quantity: 500, Status: order.StatusPending})

	orders := s.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "o1", orders[0].ID)

	l, _ := s.Listing("l1")
	assert.Equal(t, 0.0, l.Quantity)
	assert.Equal(t, market.ListingSold, l.Status)

	s.PlaceOrder(order.Order{ID: "o2", ListingID: "l2", Quantity: 1, Status: order.StatusPending})
	assert.Equal(t, "o2", s.Orders()[0].ID)
}

func TestStore_PlaceOrderWithinStock(t *testing.T) {
	s, _ := newTestStore(t)

	assert.True(t, s.PlaceOrderWithinStock(order.Order{ID: "o1", ListingID: "l1", Quantity: 300}))
	assert.False(t, s.PlaceOrderWithinStock(order.Order{ID: "o2", ListingID: "l1", Quantity: 300}))
	assert.False(t, s.PlaceOrderWithinStock(order.Order{ID: "o3", ListingID: "missing", Quantity: 1}))

	require.Len(t, s.Orders(), 1)
	l, _ := s.Listing("l1")
	assert.Equal(t, 200.0, l.Quantity)
}

func TestStore_UpdateOrderStatus(t *testing.T) {
	s, _ := newTestStore(t)
	s.PlaceOrder(order.Order{ID: "o1", ListingID: "l1", Quantity: 1, Status: order.StatusPending})

	o, ok := s.UpdateOrderStatus("o1", order.StatusDelivered)
	require.True(t, ok)
	assert.Equal(t, order.StatusDelivered, o.Status)

	// Any transition is accepted, including backwards.
	o, ok = s.UpdateOrderStatus("o1", order.StatusPending)
	require.True(t, ok)
	assert.Equal(t, order.StatusPending, o.Status)

	_, ok = s.UpdateOrderStatus("missing", order.StatusShipped)
	assert.False(t, ok)
}

func TestStore_AppendMessage(t *testing.T) {
	s, _ := newTestStore(t)
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	room := s.openRoom("u1", "u2")
	msg := s.AppendMessage(room.ID, "u1", "hello", false)

	assert.Equal(t, room.ID, msg.RoomID)
	assert.Equal(t, fixed, msg.Timestamp)

	got, ok := s.Room(room.ID)
	require.True(t, ok)
	assert.Equal(t, "hello", got.LastMessage)
	assert.Equal(t, fixed, got.LastUpdated)

	t.Run("Unknown room still records", func(t *testing.T) {
		s.AppendMessage("ghost", "u1", "echo", false)
		assert.Len(t, s.Messages("ghost"), 1)
		assert.Len(t, s.Rooms(), 1)
	})
}

func TestStore_ConcurrentPlaceOrder(t *testing.T) {
	s, _ := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.PlaceOrder(order.Order{ID: "o", ListingID: "l2", Quantity: 10})
		}()
	}
	wg.Wait()

	assert.Len(t, s.Orders(), 50)
	l, _ := s.Listing("l2")
	assert.Equal(t, 700.0, l.Quantity)
}

func TestChatRoomsAreUnique(t *testing.T) {
	s, _ := newTestStore(t)

	a := s.openRoom("u1", "u2")
	b := s.openRoom("u2", "u1")

	assert.Equal(t, a.ID, b.ID)
	assert.Len(t, chat.RoomsFor(s.Rooms(), "u1"), 1)
}
