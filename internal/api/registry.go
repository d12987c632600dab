package api

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/abhisek/smartquiz/internal/quiz"
)

// liveSession is one running quiz. Its mutex serializes access to the
// session, which is not safe for concurrent use.
type liveSession struct {
	mu       sync.Mutex
	session  *quiz.Session
	userID   string
	options  []string // shuffled choices for the current question
	saved    *quiz.HistoryEntry
	lastSeen time.Time
}

// present shuffles the choices of the current question once and restarts
// its response timer.
func (ls *liveSession) present() {
	ls.options = nil
	q, ok := ls.session.Current()
	if !ok {
		return
	}
	if opts := q.Options(); opts != nil {
		if q.Type == quiz.TypeMultipleChoice {
			rand.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
		}
		ls.options = opts
	}
	ls.session.Present()
}

// registry holds live sessions by id.
type registry struct {
	mu       sync.Mutex
	sessions map[string]*liveSession
	ttl      time.Duration
	now      func() time.Time
}

func newRegistry(ttl time.Duration, now func() time.Time) *registry {
	return &registry{
		sessions: make(map[string]*liveSession),
		ttl:      ttl,
		now:      now,
	}
}

// add stores ls and evicts sessions idle past the TTL.
func (r *registry) add(ls *liveSession) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for id, other := range r.sessions {
		if now.Sub(other.seen()) > r.ttl {
			delete(r.sessions, id)
		}
	}
	ls.lastSeen = now
	r.sessions[ls.session.ID()] = ls
}

// get returns the session with id and marks it as seen.
func (r *registry) get(id string) (*liveSession, bool) {
	r.mu.Lock()
	ls, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	ls.touch(r.now())
	return ls, true
}

func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (ls *liveSession) touch(t time.Time) {
	ls.mu.Lock()
	ls.lastSeen = t
	ls.mu.Unlock()
}

func (ls *liveSession) seen() time.Time {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.lastSeen
}
