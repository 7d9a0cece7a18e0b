package controller

import (
	"io"

	"ai-shopchat-be/internal/dto"
	"ai-shopchat-be/internal/pkg/serverutils"
	"ai-shopchat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	health      dto.HealthResponse
}

func NewChatController(chatService service.IChatService, health dto.HealthResponse) IChatController {
	return &chatController{
		chatService: chatService,
		health:      health,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("", c.Chat)
	h.Get("health", c.Health)
}

// Chat accepts a multipart form: session_id and user_query (required),
// image_url and image file (optional). The response is the bare
// {response, products} object.
func (c *chatController) Chat(ctx *fiber.Ctx) error {
	req := dto.ChatRequest{
		SessionId: ctx.FormValue("session_id"),
		UserQuery: ctx.FormValue("user_query"),
		ImageURL:  ctx.FormValue("image_url"),
	}

	if fileHeader, err := ctx.FormFile("image"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "unreadable image upload")
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "unreadable image upload")
		}
		req.Image = data
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Chat(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Service healthy", c.health))
}
