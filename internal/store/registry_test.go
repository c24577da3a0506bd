package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	s, _ := newTestStore(t)
	reg := NewRegistry()
	sess := s.NewSession()

	reg.Add(sess, time.Time{})
	got, ok := reg.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, reg.Len())

	reg.End(sess.ID)

	_, ok = reg.Get(sess.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, sess.Context().Err(), context.Canceled)

	assert.NotPanics(t, func() { reg.End("unknown") })
}

func TestRegistry_Expiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	newRegistry := func(t *testing.T) (*Registry, *Store, *[]string) {
		t.Helper()
		s, _ := newTestStore(t)
		reg := NewRegistry()
		reg.now = func() time.Time { return now }

		var mu sync.Mutex
		var expired []string
		reg.OnExpire(func(sess *Session) {
			u, ok := sess.CurrentUser()
			assert.True(t, ok, "user still resolvable when the hook runs")
			mu.Lock()
			expired = append(expired, u.ID)
			mu.Unlock()
		})
		return reg, s, &expired
	}

	login := func(t *testing.T, s *Store) *Session {
		t.Helper()
		sess := s.NewSession()
		_, ok := sess.Login(context.Background(), "john@farm.com", "123", "")
		require.True(t, ok)
		return sess
	}

	t.Run("Get drops an expired session", func(t *testing.T) {
		reg, s, expired := newRegistry(t)
		sess := login(t, s)
		reg.Add(sess, now)

		_, ok := reg.Get(sess.ID)
		assert.False(t, ok)
		assert.Equal(t, 0, reg.Len())
		assert.Equal(t, []string{"u1"}, *expired)
		assert.ErrorIs(t, sess.Context().Err(), context.Canceled)
		_, loggedIn := sess.CurrentUser()
		assert.False(t, loggedIn)
	})

	t.Run("Sweep removes only expired sessions", func(t *testing.T) {
		reg, s, expired := newRegistry(t)

		stale := make([]*Session, 0, 100)
		for i := 0; i < 100; i++ {
			sess := login(t, s)
			reg.Add(sess, now.Add(-time.Millisecond))
			stale = append(stale, sess)
		}
		live := login(t, s)
		reg.Add(live, now.Add(time.Hour))
		forever := s.NewSession()
		reg.Add(forever, time.Time{})

		assert.Equal(t, 100, reg.Sweep())
		assert.Equal(t, 2, reg.Len())
		assert.Len(t, *expired, 100)
		for _, sess := range stale {
			assert.ErrorIs(t, sess.Context().Err(), context.Canceled)
		}
		assert.NoError(t, live.Context().Err())

		_, ok := reg.Get(live.ID)
		assert.True(t, ok)
		assert.Equal(t, 0, reg.Sweep())
	})

	t.Run("Run sweeps until cancelled", func(t *testing.T) {
		reg, s, _ := newRegistry(t)
		sess := login(t, s)
		reg.Add(sess, now)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			reg.Run(ctx, time.Millisecond)
			close(done)
		}()

		assert.Eventually(t, func() bool { return reg.Len() == 0 }, time.Second, time.Millisecond)
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Run did not stop after cancel")
		}
	})
}
