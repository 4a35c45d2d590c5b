package service

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"docchat-be/internal/dto"
)

type IPublisherService interface {
	// PublishFileRelease hands a cleared session's owned paths to the
	// background file-release consumer.
	PublishFileRelease(sessionID string, paths []string) error
}

type publisherService struct {
	topicName string
	pubSub    message.Publisher
}

func NewPublisherService(topicName string, pubSub message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) PublishFileRelease(sessionID string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	payload, err := json.Marshal(dto.FileReleaseMessage{
		SessionID: sessionID,
		Paths:     paths,
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return ps.pubSub.Publish(ps.topicName, msg)
}
