package controller

import (
	"data-chat-be/internal/pkg/serverutils"
	"data-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IStatsController interface {
	RegisterRoutes(r fiber.Router)
	Stats(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type statsController struct {
	statsService service.IStatsService
}

func NewStatsController(statsService service.IStatsService) IStatsController {
	return &statsController{
		statsService: statsService,
	}
}

func (c *statsController) RegisterRoutes(r fiber.Router) {
	r.Get("/healthz", c.Health)

	h := r.Group("/api/stats/v1")
	h.Get("", c.Stats)
}

func (c *statsController) Stats(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get stats", c.statsService.Snapshot()))
}

func (c *statsController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"status": "ok"})
}
