package controller

import (
	"data-chat-be/internal/pkg/serverutils"
	"data-chat-be/internal/service"
	"data-chat-be/pkg/dataset"

	"github.com/gofiber/fiber/v2"
)

const defaultPreviewRows = 5

type IDatasetController interface {
	RegisterRoutes(r fiber.Router)
	Preview(ctx *fiber.Ctx) error
}

type datasetController struct {
	chatService service.IChatService
}

func NewDatasetController(chatService service.IChatService) IDatasetController {
	return &datasetController{
		chatService: chatService,
	}
}

func (c *datasetController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/api/dataset/v1")
	h.Get("preview", c.Preview)
}

func (c *datasetController) Preview(ctx *fiber.Ctx) error {
	rows := ctx.QueryInt("rows", defaultPreviewRows)
	if rows < 1 || rows > dataset.MaxPreviewRows {
		return fiber.NewError(fiber.StatusBadRequest, dataset.ErrPreviewRange.Error())
	}

	res, err := c.chatService.DatasetPreview(ctx.UserContext(), rows)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get dataset preview", res))
}
