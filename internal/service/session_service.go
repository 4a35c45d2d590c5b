package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"docchat-be/internal/apperror"
	"docchat-be/internal/pkg/logger"
	"docchat-be/pkg/store"
)

// SessionMutation is an atomic state transition applied under the session's lock.
type SessionMutation func(*store.Session)

type ISessionService interface {
	// Create allocates a fresh session and returns its id. No external I/O.
	Create() string
	// Exists reports whether the id names a live session (and counts as activity).
	Exists(id string) bool
	// Get returns a snapshot of the session state and refreshes last activity.
	Get(id string) (*store.Session, error)
	// Update applies a mutation atomically with respect to concurrent
	// Update/Clear calls on the same id.
	Update(id string, mutate SessionMutation) error
	// Clear removes the session and hands back the file paths it owned.
	// Idempotent: a second call returns cleared=false with no paths.
	Clear(id string) (cleared bool, ownedPaths []string)
	// Count returns the number of live sessions.
	Count() int
	// ExpiredIDs lists sessions whose inactivity exceeds ttl.
	ExpiredIDs(ttl time.Duration) []string
}

// sessionEntry pairs a session with its own mutex so that one session's slow
// mutation never stalls another session's request. The cleared flag makes
// concurrent Clear calls race-free: only the first one gets the owned paths.
type sessionEntry struct {
	mu      sync.Mutex
	cleared bool
	session store.Session
}

type sessionService struct {
	registry *cache.Cache
	log      logger.ILogger
}

// NewSessionService builds the shared session registry. go-cache provides the
// concurrent keyed storage; TTL eviction is owned by the cleanup sweep, so the
// cache's own expiry and janitor stay disabled.
func NewSessionService(log logger.ILogger) ISessionService {
	return &sessionService{
		registry: cache.New(cache.NoExpiration, 0),
		log:      log,
	}
}

func (s *sessionService) Create() string {
	id := uuid.NewString()
	now := time.Now()

	s.registry.Set(id, &sessionEntry{
		session: store.Session{
			ID:           id,
			CreatedAt:    now,
			LastActivity: now,
		},
	}, cache.NoExpiration)

	s.log.Info("session", "created session", map[string]interface{}{"session_id": id})
	return id
}

func (s *sessionService) Exists(id string) bool {
	entry, ok := s.lookup(id)
	if !ok {
		return false
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.cleared {
		return false
	}
	entry.session.LastActivity = time.Now()
	return true
}

func (s *sessionService) Get(id string) (*store.Session, error) {
	entry, ok := s.lookup(id)
	if !ok {
		return nil, apperror.ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.cleared {
		return nil, apperror.ErrSessionNotFound
	}

	entry.session.LastActivity = time.Now()
	return snapshot(&entry.session), nil
}

func (s *sessionService) Update(id string, mutate SessionMutation) error {
	entry, ok := s.lookup(id)
	if !ok {
		return apperror.ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.cleared {
		return apperror.ErrSessionNotFound
	}

	mutate(&entry.session)
	entry.session.LastActivity = time.Now()
	return nil
}

func (s *sessionService) Clear(id string) (bool, []string) {
	entry, ok := s.lookup(id)
	if !ok {
		return false, nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.cleared {
		return false, nil
	}

	entry.cleared = true
	ownedPaths := entry.session.UploadedFiles
	entry.session.Index = nil
	entry.session.UploadedFiles = nil
	s.registry.Delete(id)

	s.log.Info("session", "cleared session", map[string]interface{}{
		"session_id":  id,
		"owned_paths": len(ownedPaths),
	})
	return true, ownedPaths
}

func (s *sessionService) Count() int {
	return s.registry.ItemCount()
}

func (s *sessionService) ExpiredIDs(ttl time.Duration) []string {
	now := time.Now()
	var expired []string
	for id, item := range s.registry.Items() {
		entry, ok := item.Object.(*sessionEntry)
		if !ok {
			continue
		}
		entry.mu.Lock()
		stale := !entry.cleared && now.Sub(entry.session.LastActivity) > ttl
		entry.mu.Unlock()
		if stale {
			expired = append(expired, id)
		}
	}
	return expired
}

func (s *sessionService) lookup(id string) (*sessionEntry, bool) {
	item, found := s.registry.Get(id)
	if !found {
		return nil, false
	}
	entry, ok := item.(*sessionEntry)
	return entry, ok
}

// snapshot copies the session so callers cannot mutate shared state without
// going through Update. The index handle is shared on purpose: indexes are
// immutable after construction.
func snapshot(sess *store.Session) *store.Session {
	cp := *sess
	cp.ChatHistory = append([]store.ChatMessage(nil), sess.ChatHistory...)
	cp.UploadedFiles = append([]string(nil), sess.UploadedFiles...)
	return &cp
}
