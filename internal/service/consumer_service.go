package service

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"docchat-be/internal/dto"
	"docchat-be/internal/pkg/logger"
)

type IConsumerService interface {
	// Consume subscribes to the file-release topic and processes messages in
	// the background until Stop.
	Consume(ctx context.Context) error
	// Stop ends the subscription and waits for the in-flight message to finish.
	Stop()
}

// consumerService releases the files a cleared session owned. Deletion
// failures are logged and never surfaced: cleanup must not block or fail
// session removal, and the call path has no observer.
type consumerService struct {
	pubSub    message.Subscriber
	topicName string
	log       logger.ILogger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewConsumerService(pubSub message.Subscriber, topicName string, log logger.ILogger) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		log:       log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.cancel != nil {
		return nil // already running
	}

	ctx, cancel := context.WithCancel(ctx)
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		cancel()
		return err
	}

	done := make(chan struct{})
	cs.cancel = cancel
	cs.done = done

	go func() {
		defer close(done)
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) Stop() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.cancel == nil {
		return
	}

	cs.cancel()
	<-cs.done
	cs.cancel = nil
	cs.done = nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	// Always ack: a file-release message has no retry semantics worth having,
	// and a poisoned payload must not loop forever.
	defer msg.Ack()

	var payload dto.FileReleaseMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("cleanup", "failed to unmarshal file release message", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	removed := 0
	for _, path := range payload.Paths {
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			cs.log.Warn("cleanup", "failed to remove uploaded file", map[string]interface{}{
				"session_id": payload.SessionID,
				"path":       path,
				"error":      err.Error(),
			})
			continue
		}
		removed++
	}

	cs.log.Info("cleanup", "released session files", map[string]interface{}{
		"session_id": payload.SessionID,
		"removed":    removed,
		"total":      len(payload.Paths),
	})
}
