// Package match runs AI opportunity matching in the background and caches the
// latest result per user.
package match

import (
	"context"
	"errors"
	"sync"
	"time"

	"farmlink-be/internal/ai"
	"farmlink-be/internal/logger"
	"farmlink-be/internal/market"
	"farmlink-be/internal/user"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

type State string

const (
	StateRunning   State = "running"
	StateDone      State = "done"
	StateCancelled State = "cancelled"
)

var ErrNoResult = errors.New("no match result for user")

type Result struct {
	State     State      `json:"state"`
	Matches   []ai.Match `json:"matches"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Source provides the collections matching reads from.
type Source interface {
	Listings() []market.CropListing
	Requests() []market.BuyerRequest
}

type Recorder interface {
	MatchRun(result string)
}

type run struct {
	id     uint64
	cancel context.CancelFunc
}

type Service struct {
	gateway  ai.Gateway
	source   Source
	recorder Recorder
	cache    *lru.Cache[string, Result]

	mu      sync.Mutex
	nextID  uint64
	running map[string]run
	wg      sync.WaitGroup
}

func NewService(gateway ai.Gateway, source Source, cacheSize int, recorder Recorder) (*Service, error) {
	cache, err := lru.New[string, Result](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{
		gateway:  gateway,
		source:   source,
		recorder: recorder,
		cache:    cache,
		running:  make(map[string]run),
	}, nil
}

// Candidates selects what to match for u: a farmer's own listings against every
// request, or every listing against a buyer's own requests. Other roles get
// nothing.
func Candidates(u user.User, listings []market.CropListing, requests []market.BuyerRequest) ([]market.CropListing, []market.BuyerRequest, bool) {
	switch u.Role {
	case user.RoleFarmer:
		mine := market.ListingsByFarmer(listings, u.ID)
		return mine, requests, len(mine) > 0
	case user.RoleBuyer:
		return listings, market.RequestsByBuyer(requests, u.ID), true
	}
	return nil, nil, false
}

// Start launches a matching run for u bound to ctx, usually the session's
// context. A run already in flight for the same user is superseded. It
// reports false when the user has nothing to match.
func (s *Service) Start(ctx context.Context, u user.User) bool {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "match"),
		zap.String("method", "Start"),
		zap.String("user_id", u.ID),
	)

	listings, requests, ok := Candidates(u, s.source.Listings(), s.source.Requests())
	if !ok {
		log.Debug("nothing to match", zap.String("role", string(u.Role)))
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if prev, exists := s.running[u.ID]; exists {
		prev.cancel()
	}
	s.nextID++
	id := s.nextID
	s.running[u.ID] = run{id: id, cancel: cancel}
	s.cache.Add(u.ID, Result{State: StateRunning, Matches: []ai.Match{}, UpdatedAt: time.Now()})
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		matches := s.gateway.MatchOpportunities(runCtx, listings, requests)
		s.finish(runCtx, u.ID, id, matches)
	}()

	log.Info("matching started", zap.Int("listings", len(listings)), zap.Int("requests", len(requests)))
	return true
}

func (s *Service) finish(ctx context.Context, userID string, id uint64, matches []ai.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.running[userID]
	if !ok || current.id != id {
		s.record("superseded")
		return
	}
	delete(s.running, userID)

	if ctx.Err() != nil {
		s.cache.Add(userID, Result{State: StateCancelled, Matches: []ai.Match{}, UpdatedAt: time.Now()})
		s.record(string(StateCancelled))
		return
	}

	if matches == nil {
		matches = []ai.Match{}
	}
	s.cache.Add(userID, Result{State: StateDone, Matches: matches, UpdatedAt: time.Now()})
	s.record(string(StateDone))
}

func (s *Service) record(result string) {
	if s.recorder != nil {
		s.recorder.MatchRun(result)
	}
}

func (s *Service) Result(userID string) (Result, error) {
	res, ok := s.cache.Get(userID)
	if !ok {
		return Result{}, ErrNoResult
	}
	return res, nil
}

// Forget cancels any run for userID and drops its cached result.
func (s *Service) Forget(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.running[userID]; ok {
		r.cancel()
		delete(s.running, userID)
	}
	s.cache.Remove(userID)
}

// Wait blocks until every started run has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}
