package service

import (
	"sync"
	"time"

	"caradvisor/internal/model"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// InterviewSession is the state of one interview. Each session is owned by
// a single buyer; mu serialises answers arriving for the same session.
type InterviewSession struct {
	ID        string
	CreatedAt time.Time

	mu          sync.Mutex
	accumulator *ProfileAccumulator
	planner     *QuestionPlanner
	history     []model.Turn
	current     *model.Question
}

func newInterviewSession(maxQuestions int) *InterviewSession {
	return &InterviewSession{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now(),
		accumulator: NewProfileAccumulator(maxQuestions),
		planner:     NewQuestionPlanner(),
	}
}

// SessionStore keeps interview sessions in memory with a sliding TTL
type SessionStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewSessionStore creates a store whose sessions expire after ttl without
// activity
func NewSessionStore(ttl time.Duration) *SessionStore {
	cleanup := ttl / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}
	return &SessionStore{
		cache: cache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

// Put stores or refreshes a session
func (s *SessionStore) Put(session *InterviewSession) {
	s.cache.Set(session.ID, session, s.ttl)
}

// Get returns the session with id
func (s *SessionStore) Get(id string) (*InterviewSession, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return v.(*InterviewSession), nil
}

// Delete removes a session
func (s *SessionStore) Delete(id string) {
	s.cache.Delete(id)
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	return s.cache.ItemCount()
}
