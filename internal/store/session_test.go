package store

import (
	"context"
	"testing"

	"farmlink-be/internal/chat"
	"farmlink-be/internal/market"
	"farmlink-be/internal/user"
	"farmlink-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Login(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	tests := []struct {
		name       string
		identifier string
		password   string
		role       user.Role
		wantID     string
		wantOK     bool
	}{
		{"Seed farmer", "john@farm.com", "123", user.RoleFarmer, "u1", true},
		{"Case and space insensitive", "  JOHN@Farm.com ", "123", user.RoleFarmer, "u1", true},
		{"Role is not checked", "buyer@market.com", "123", user.RoleFarmer, "u2", true},
		{"Password trimmed", "admin@farmlink.com", " 123 ", user.RoleAdmin, "u3", true},
		{"Wrong password", "john@farm.com", "wrong", user.RoleFarmer, "", false},
		{"Unknown identifier", "ghost@farm.com", "123", user.RoleBuyer, "", false},
		{"Blank identifier", "   ", "123", user.RoleBuyer, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := s.NewSession()
			u, ok := sess.Login(ctx, tt.identifier, tt.password, tt.role)

			assert.Equal(t, tt.wantOK, ok)
			current, loggedIn := sess.CurrentUser()
			assert.Equal(t, tt.wantOK, loggedIn)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, u.ID)
				assert.Equal(t, tt.wantID, current.ID)
			}
		})
	}
}

func TestSession_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("Email identifier", func(t *testing.T) {
		s, p := newTestStore(t)
		sess := s.NewSession()

		u, err := sess.Signup(ctx, "Asha", " asha@farm.in ", "pw1", user.RoleFarmer)
		require.NoError(t, err)

		assert.Equal(t, "asha@farm.in", u.Email)
		assert.Empty(t, u.PhoneNumber)
		assert.Equal(t, "Unknown", u.Location)
		assert.Equal(t, user.RoleFarmer, u.Role)
		assert.NotEqual(t, "pw1", u.Password)

		current, ok := sess.CurrentUser()
		require.True(t, ok)
		assert.Equal(t, u.ID, current.ID)

		persisted, err := p.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, persisted, 4)

		other := s.NewSession()
		_, ok = other.Login(ctx, "ASHA@farm.in", "pw1", user.RoleFarmer)
		assert.True(t, ok)
	})

	t.Run("Phone identifier", func(t *testing.T) {
		s, _ := newTestStore(t)
		sess := s.NewSession()

		u, err := sess.Signup(ctx, "Ravi", "9876543210", "pw", user.RoleBuyer)
		require.NoError(t, err)

		assert.Empty(t, u.Email)
		assert.Equal(t, "9876543210", u.PhoneNumber)

		_, ok := s.NewSession().Login(ctx, "9876543210", "pw", user.RoleBuyer)
		assert.True(t, ok)
	})

	t.Run("Duplicate identifier creates a second account", func(t *testing.T) {
		s, _ := newTestStore(t)

		a, err := s.NewSession().Signup(ctx, "Dup", "john@farm.com", "x", user.RoleBuyer)
		require.NoError(t, err)

		assert.Len(t, s.Users(), 4)
		assert.NotEqual(t, "u1", a.ID)

		// The earlier account keeps winning login with its own password.
		u, ok := s.NewSession().Login(ctx, "john@farm.com", "123", user.RoleFarmer)
		require.True(t, ok)
		assert.Equal(t, "u1", u.ID)
	})
}

func TestSession_Logout(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	sess := s.NewSession()

	_, ok := sess.Login(ctx, "buyer@market.com", "123", user.RoleBuyer)
	require.True(t, ok)
	sess.AddToCart(market.CropListing{ID: "l1"})

	sess.Logout()

	_, ok = sess.CurrentUser()
	assert.False(t, ok)
	assert.Empty(t, sess.Cart())
	assert.ErrorIs(t, sess.Context().Err(), context.Canceled)
	assert.Len(t, s.Users(), 3)
}

func TestSession_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	s, p := newTestStore(t)
	sess := s.NewSession()

	t.Run("Logged out is a no-op", func(t *testing.T) {
		_, ok := sess.UpdateProfile(ctx, user.ProfileUpdate{Name: utils.StrPtr("X")})
		assert.False(t, ok)
	})

	_, ok := sess.Login(ctx, "john@farm.com", "123", user.RoleFarmer)
	require.True(t, ok)

	u, ok := sess.UpdateProfile(ctx, user.ProfileUpdate{Location: utils.StrPtr("Nashik, MH")})
	require.True(t, ok)
	assert.Equal(t, "Nashik, MH", u.Location)
	assert.Equal(t, "John Appleseed", u.Name)

	current, _ := sess.CurrentUser()
	assert.Equal(t, "Nashik, MH", current.Location)

	persisted, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Nashik, MH", persisted[0].Location)
}

func TestSession_Cart(t *testing.T) {
	s, _ := newTestStore(t)
	sess := s.NewSession()

	assert.True(t, sess.AddToCart(market.CropListing{ID: "l1"}))
	assert.False(t, sess.AddToCart(market.CropListing{ID: "l1", Quantity: 3}))
	assert.True(t, sess.AddToCart(market.CropListing{ID: "l2"}))

	assert.Len(t, sess.Cart(), 2)
}

func TestSession_Chat(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	sess := s.NewSession()

	t.Run("Logged out", func(t *testing.T) {
		assert.Equal(t, "", sess.CreateChat("u1"))
		_, ok := sess.SendMessage("room", "hi")
		assert.False(t, ok)
		assert.Empty(t, s.Rooms())
	})

	_, ok := sess.Login(ctx, "buyer@market.com", "123", user.RoleBuyer)
	require.True(t, ok)

	roomID := sess.CreateChat("u1")
	require.NotEmpty(t, roomID)
	assert.Equal(t, roomID, sess.CreateChat("u1"))

	farmer := s.NewSession()
	_, ok = farmer.Login(ctx, "john@farm.com", "123", user.RoleFarmer)
	require.True(t, ok)
	assert.Equal(t, roomID, farmer.CreateChat("u2"))

	msg, ok := sess.SendMessage(roomID, "Is the corn still available?")
	require.True(t, ok)
	assert.Equal(t, "u2", msg.SenderID)

	msgs := s.Messages(roomID)
	require.Len(t, msgs, 1)
	room, _ := s.Room(roomID)
	assert.Equal(t, "Is the corn still available?", room.LastMessage)

	t.Run("Assistant room is private", func(t *testing.T) {
		mine := sess.AssistantRoom()
		theirs := farmer.AssistantRoom()

		assert.NotEqual(t, mine, theirs)
		r, _ := s.Room(mine)
		assert.True(t, r.IsAssistant())
		assert.Equal(t, chat.AssistantUserID, r.Other("u2"))
	})
}
