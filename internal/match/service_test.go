package match

import (
	"context"
	"sync"
	"testing"
	"time"

	"farmlink-be/internal/ai"
	"farmlink-be/internal/market"
	"farmlink-be/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	listings []market.CropListing
	requests []market.BuyerRequest
}

func (f fakeSource) Listings() []market.CropListing  { return f.listings }
func (f fakeSource) Requests() []market.BuyerRequest { return f.requests }

// blockingGateway answers MatchOpportunities once release is closed or the
// context ends.
type blockingGateway struct {
	ai.Gateway
	release chan struct{}
	matches []ai.Match

	mu       sync.Mutex
	listings []market.CropListing
	requests []market.BuyerRequest
}

func (g *blockingGateway) MatchOpportunities(ctx context.Context, listings []market.CropListing, requests []market.BuyerRequest) []ai.Match {
	g.mu.Lock()
	g.listings, g.requests = listings, requests
	g.mu.Unlock()

	select {
	case <-g.release:
		return g.matches
	case <-ctx.Done():
		return []ai.Match{}
	}
}

type countingRecorder struct {
	mu      sync.Mutex
	results map[string]int
}

func (r *countingRecorder) MatchRun(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.results == nil {
		r.results = make(map[string]int)
	}
	r.results[result]++
}

var (
	farmer = user.User{ID: "u1", Role: user.RoleFarmer}
	buyer  = user.User{ID: "u2", Role: user.RoleBuyer}
	admin  = user.User{ID: "u3", Role: user.RoleAdmin}
)

func seedSource() fakeSource {
	now := time.Now()
	return fakeSource{listings: market.SeedListings(now), requests: market.SeedRequests(now)}
}

func TestCandidates(t *testing.T) {
	src := seedSource()
	src.listings = append(src.listings, market.CropListing{ID: "l9", FarmerID: "u7"})
	src.requests = append(src.requests, market.BuyerRequest{ID: "r9", BuyerID: "u8"})

	t.Run("Farmer", func(t *testing.T) {
		ls, rs, ok := Candidates(farmer, src.listings, src.requests)
		assert.True(t, ok)
		assert.Len(t, ls, 2)
		assert.Len(t, rs, 2)
	})

	t.Run("Farmer without listings", func(t *testing.T) {
		_, _, ok := Candidates(user.User{ID: "u5", Role: user.RoleFarmer}, src.listings, src.requests)
		assert.False(t, ok)
	})

	t.Run("Buyer", func(t *testing.T) {
		ls, rs, ok := Candidates(buyer, src.listings, src.requests)
		assert.True(t, ok)
		assert.Len(t, ls, 3)
		require.Len(t, rs, 1)
		assert.Equal(t, "r1", rs[0].ID)
	})

	t.Run("Admin", func(t *testing.T) {
		_, _, ok := Candidates(admin, src.listings, src.requests)
		assert.False(t, ok)
	})
}

func TestService_Done(t *testing.T) {
	gw := &blockingGateway{
		release: make(chan struct{}),
		matches: []ai.Match{{ListingID: "l1", RequestID: "r1", MatchScore: 92, Reason: "Same crop"}},
	}
	rec := &countingRecorder{}
	svc, err := NewService(gw, seedSource(), 8, rec)
	require.NoError(t, err)

	_, err = svc.Result(buyer.ID)
	assert.ErrorIs(t, err, ErrNoResult)

	require.True(t, svc.Start(context.Background(), buyer))

	res, err := svc.Result(buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, StateRunning, res.State)

	close(gw.release)
	svc.Wait()

	res, err = svc.Result(buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, 92.0, res.Matches[0].MatchScore)
	assert.Equal(t, 1, rec.results["done"])
	assert.Len(t, gw.requests, 1)
}

func TestService_CancelledWithSession(t *testing.T) {
	gw := &blockingGateway{release: make(chan struct{})}
	svc, err := NewService(gw, seedSource(), 8, nil)
	require.NoError(t, err)

	sessionCtx, logout := context.WithCancel(context.Background())
	require.True(t, svc.Start(sessionCtx, farmer))

	logout()
	svc.Wait()

	res, err := svc.Result(farmer.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, res.State)
	assert.Empty(t, res.Matches)
}

func TestService_Superseded(t *testing.T) {
	gw := &blockingGateway{release: make(chan struct{})}
	rec := &countingRecorder{}
	svc, err := NewService(gw, seedSource(), 8, rec)
	require.NoError(t, err)

	require.True(t, svc.Start(context.Background(), buyer))
	require.True(t, svc.Start(context.Background(), buyer))

	close(gw.release)
	svc.Wait()

	res, err := svc.Result(buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, 1, rec.results["superseded"])
	assert.Equal(t, 1, rec.results["done"])
}

func TestService_NothingToMatch(t *testing.T) {
	svc, err := NewService(&blockingGateway{}, seedSource(), 8, nil)
	require.NoError(t, err)

	assert.False(t, svc.Start(context.Background(), admin))
	_, err = svc.Result(admin.ID)
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestService_Forget(t *testing.T) {
	gw := &blockingGateway{release: make(chan struct{})}
	svc, err := NewService(gw, seedSource(), 8, nil)
	require.NoError(t, err)

	require.True(t, svc.Start(context.Background(), buyer))
	svc.Forget(buyer.ID)
	svc.Wait()

	_, err = svc.Result(buyer.ID)
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestService_CacheEviction(t *testing.T) {
	gw := &blockingGateway{release: make(chan struct{})}
	close(gw.release)
	svc, err := NewService(gw, seedSource(), 1, nil)
	require.NoError(t, err)

	require.True(t, svc.Start(context.Background(), buyer))
	svc.Wait()
	require.True(t, svc.Start(context.Background(), farmer))
	svc.Wait()

	_, err = svc.Result(buyer.ID)
	assert.ErrorIs(t, err, ErrNoResult)
	_, err = svc.Result(farmer.ID)
	assert.NoError(t, err)
}

func TestNewService_InvalidSize(t *testing.T) {
	_, err := NewService(&blockingGateway{}, seedSource(), 0, nil)
	assert.Error(t, err)
}
