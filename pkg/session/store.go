package session

import (
	"context"
	"sync"
	"time"

	"github.com/pulseboard/dashboard-client/pkg/logger"
	"github.com/pulseboard/dashboard-client/pkg/user"
)

// Store is the single source of truth for the current session. One Store
// exists per app and lives for the whole page lifetime. Nothing outside
// this package mutates its state: every transition goes through the setters
// below, and interleaved completions apply in call order (last write wins).
type Store struct {
	mu            sync.Mutex
	status        Status
	usr           *user.User
	credential    string
	establishedAt time.Time

	keeper Keeper

	subs    map[int]func(Status)
	nextSub int
}

func NewStore(k Keeper) *Store {
	if k == nil {
		k = NewMemoryKeeper()
	}
	s := &Store{
		status: StatusUnknown,
		keeper: k,
		subs:   make(map[int]func(Status)),
	}

	// Pick up a credential that survived the previous run. The session is
	// still Unknown until a probe confirms the credential is valid.
	tok, err := k.Load()
	if err != nil {
		logger.Log(context.Background()).Errorf("session/store: can't load persisted credential, %v", err)
	} else {
		s.credential = tok
	}
	return s
}

// MarkChecking records that a validity probe is in flight.
func (s *Store) MarkChecking() {
	s.mu.Lock()
	s.status = StatusChecking
	s.mu.Unlock()
	s.notify(StatusChecking)
}

// MarkAuthenticated stores the user snapshot and resolves the session.
func (s *Store) MarkAuthenticated(usr *user.User) {
	s.mu.Lock()
	s.status = StatusAuthenticated
	s.usr = usr
	s.establishedAt = time.Now()
	s.mu.Unlock()
	s.notify(StatusAuthenticated)
}

// MarkUnauthenticated clears the user snapshot and the retained credential.
// Calling it when the session is already torn down is a no-op.
func (s *Store) MarkUnauthenticated() {
	s.mu.Lock()
	if s.status == StatusUnauthenticated && s.usr == nil && s.credential == `` {
		s.mu.Unlock()
		return
	}
	s.status = StatusUnauthenticated
	s.usr = nil
	s.credential = ``
	s.establishedAt = time.Time{}
	s.mu.Unlock()

	if err := s.keeper.Clear(); err != nil {
		logger.Log(context.Background()).Errorf("session/store: can't clear persisted credential, %v", err)
	}
	s.notify(StatusUnauthenticated)
}

// SetCredential retains the credential delivered by the gateway so it
// survives a page reload. Only the gateway calls it, and only on a
// session-establishing response.
func (s *Store) SetCredential(token string) {
	s.mu.Lock()
	s.credential = token
	s.mu.Unlock()

	if err := s.keeper.Save(token); err != nil {
		// persistence is best effort, the in-memory session stays valid
		logger.Log(context.Background()).Errorf("session/store: can't persist credential, %v", err)
	}
}

// CurrentStatus never blocks and never touches the network.
func (s *Store) CurrentStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Store) CurrentUser() *user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usr == nil {
		return nil
	}
	u := *s.usr
	return &u
}

func (s *Store) Credential() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential
}

func (s *Store) EstablishedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.establishedAt
}

// Subscribe registers fn to run after every status transition, mirroring
// the reactive re-render the host UI performs. The returned func removes
// the subscription.
func (s *Store) Subscribe(fn func(Status)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(st Status) {
	s.mu.Lock()
	fns := make([]func(Status), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	// run outside the lock so subscribers may read the store
	for _, fn := range fns {
		fn(st)
	}
}
