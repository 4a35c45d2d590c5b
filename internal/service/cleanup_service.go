package service

import (
	"sync"
	"time"

	"docchat-be/internal/pkg/logger"
)

type ICleanupService interface {
	Start()
	Stop()
	// Sweep runs one eviction pass and returns how many sessions it cleared.
	Sweep() int
}

// cleanupService evicts sessions whose inactivity exceeds the TTL. It runs on
// its own schedule, independent of request handling; Clear being idempotent
// makes a race with a concurrent user-initiated clear harmless.
type cleanupService struct {
	sessions  ISessionService
	publisher IPublisherService
	ttl       time.Duration
	interval  time.Duration
	log       logger.ILogger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewCleanupService(
	sessions ISessionService,
	publisher IPublisherService,
	ttl time.Duration,
	interval time.Duration,
	log logger.ILogger,
) ICleanupService {
	return &cleanupService{
		sessions:  sessions,
		publisher: publisher,
		ttl:       ttl,
		interval:  interval,
		log:       log,
	}
}

func (cs *cleanupService) Start() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.stop != nil {
		return // already running
	}

	cs.stop = make(chan struct{})
	cs.done = make(chan struct{})
	go cs.run(cs.stop, cs.done)

	cs.log.Info("cleanup", "started session sweep", map[string]interface{}{
		"ttl":      cs.ttl.String(),
		"interval": cs.interval.String(),
	})
}

// Stop halts the sweep and waits for the in-flight pass to finish, so no work
// is left dangling after shutdown.
func (cs *cleanupService) Stop() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.stop == nil {
		return
	}

	close(cs.stop)
	<-cs.done
	cs.stop = nil
	cs.done = nil

	cs.log.Info("cleanup", "stopped session sweep", nil)
}

func (cs *cleanupService) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(cs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cs.Sweep()
		case <-stop:
			return
		}
	}
}

func (cs *cleanupService) Sweep() int {
	cleaned := 0
	for _, id := range cs.sessions.ExpiredIDs(cs.ttl) {
		cleared, ownedPaths := cs.sessions.Clear(id)
		if !cleared {
			continue // lost the race to a concurrent clear; nothing owed
		}
		cleaned++
		if err := cs.publisher.PublishFileRelease(id, ownedPaths); err != nil {
			cs.log.Warn("cleanup", "failed to publish file release", map[string]interface{}{
				"session_id": id,
				"error":      err.Error(),
			})
		}
	}

	if cleaned > 0 {
		cs.log.Info("cleanup", "swept inactive sessions", map[string]interface{}{
			"count": cleaned,
		})
	}
	return cleaned
}
