package controller

import (
	"errors"

	"data-chat-be/internal/dto"
	"data-chat-be/internal/pkg/serverutils"
	"data-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	Suggestions(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.Chat)

	h := r.Group("/api/chat/v1")
	h.Get("suggestions", c.Suggestions)

	s := r.Group("/api/session/v1")
	s.Get(":id/history", c.History)
	s.Delete(":id", c.Reset)
}

// Chat keeps the bare {response, image} body the clients expect.
func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Chat(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) Suggestions(ctx *fiber.Ctx) error {
	res := c.chatService.Suggestions(ctx.UserContext())
	return ctx.JSON(serverutils.SuccessResponse("Success get suggestions", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	res, err := c.chatService.History(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return mapSessionError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *chatController) Reset(ctx *fiber.Ctx) error {
	if err := c.chatService.ResetSession(ctx.UserContext(), ctx.Params("id")); err != nil {
		return mapSessionError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success reset session", nil))
}

func mapSessionError(err error) error {
	if errors.Is(err, service.ErrSessionNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Session not found")
	}
	return err
}
