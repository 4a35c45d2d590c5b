package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"docchat-be/internal/apperror"
	"docchat-be/internal/dto"
	"docchat-be/internal/pkg/serverutils"
	"docchat-be/internal/service"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendMessage(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
}

type chatController struct {
	ragService service.IRagService
}

func NewChatController(ragService service.IRagService) IChatController {
	return &chatController{
		ragService: ragService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.SendMessage)
	r.Get("/chat/history", c.GetHistory)
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Question is required")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Question) == "" {
		return apperror.Validation("Question is required")
	}

	sessionID := serverutils.SessionID(ctx)
	res, err := c.ragService.Chat(ctx.Context(), sessionID, req.Question)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("", res))
}

func (c *chatController) GetHistory(ctx *fiber.Ctx) error {
	sessionID := serverutils.SessionID(ctx)
	history, err := c.ragService.History(sessionID)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("", dto.ChatHistoryResponse{
		History: history,
		Count:   len(history),
	}))
}
