package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"docchat-be/internal/apperror"
	"docchat-be/internal/dto"
	"docchat-be/internal/pkg/logger"
	"docchat-be/internal/pkg/serverutils"
	"docchat-be/internal/service"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Info(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
	Cleanup(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessions  service.ISessionService
	publisher service.IPublisherService
	log       logger.ILogger
}

func NewSessionController(
	sessions service.ISessionService,
	publisher service.IPublisherService,
	log logger.ILogger,
) ISessionController {
	return &sessionController{
		sessions:  sessions,
		publisher: publisher,
		log:       log,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	r.Get("/session", c.Info)
	r.Delete("/session", c.Clear)
	r.Post("/session/cleanup", c.Cleanup)
	r.Get("/health", c.Health)
}

func (c *sessionController) Info(ctx *fiber.Ctx) error {
	sessionID := serverutils.SessionID(ctx)
	sess, err := c.sessions.Get(sessionID)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("", dto.SessionInfoResponse{
		SessionID:        sess.ID,
		HasDocuments:     sess.HasDocuments(),
		UploadedFiles:    sess.UploadedFiles,
		ChatHistoryCount: len(sess.ChatHistory),
		CreatedAt:        sess.CreatedAt,
		LastActivity:     sess.LastActivity,
	}))
}

func (c *sessionController) Clear(ctx *fiber.Ctx) error {
	sessionID := serverutils.SessionID(ctx)

	cleared, ownedPaths := c.sessions.Clear(sessionID)
	if !cleared {
		return apperror.ErrSessionNotFound
	}
	c.releaseFiles(sessionID, ownedPaths)

	// The client keeps talking on a fresh id from here on.
	newSessionID := c.sessions.Create()
	ctx.Set(serverutils.SessionHeader, newSessionID)
	ctx.Cookie(&fiber.Cookie{
		Name:     serverutils.SessionCookie,
		Value:    newSessionID,
		HTTPOnly: true,
		SameSite: "Lax",
		Expires:  time.Now().Add(24 * time.Hour),
	})

	return ctx.JSON(serverutils.SuccessResponse("Session cleared successfully", dto.ClearSessionResponse{
		NewSessionID: newSessionID,
	}))
}

// Cleanup is the best-effort teardown fired on page unload. It always
// answers 200: the caller is already gone.
func (c *sessionController) Cleanup(ctx *fiber.Ctx) error {
	var req dto.CleanupSessionRequest
	if err := ctx.BodyParser(&req); err != nil || req.SessionID == "" {
		return ctx.JSON(serverutils.SuccessResponse("No session to cleanup", nil))
	}

	cleared, ownedPaths := c.sessions.Clear(req.SessionID)
	if !cleared {
		return ctx.JSON(serverutils.SuccessResponse("Session not found or already cleaned", nil))
	}
	c.releaseFiles(req.SessionID, ownedPaths)

	return ctx.JSON(serverutils.SuccessResponse("Session cleaned up successfully", nil))
}

func (c *sessionController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Document chat API is running", dto.HealthResponse{
		ActiveSessions: c.sessions.Count(),
		Timestamp:      time.Now().UnixMilli(),
	}))
}

func (c *sessionController) releaseFiles(sessionID string, paths []string) {
	if err := c.publisher.PublishFileRelease(sessionID, paths); err != nil {
		c.log.Warn("session", "failed to publish file release", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}
