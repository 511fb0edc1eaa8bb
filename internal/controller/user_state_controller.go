package controller

import (
	"temple-sessions-be/internal/dto"
	"temple-sessions-be/internal/pkg/serverutils"
	"temple-sessions-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserStateController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
}

type userStateController struct {
	pinService service.IPinService
}

func NewUserStateController(pinService service.IPinService) IUserStateController {
	return &userStateController{
		pinService: pinService,
	}
}

func (c *userStateController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/user/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("state", c.Show)
	h.Post("state/reset", c.Reset)
}

func (c *userStateController) Show(ctx *fiber.Ctx) error {
	userId, err := callerUserId(ctx)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show user state", fiber.Map{
		"pinned_sessions":    c.pinService.PinnedSessions(userId.String()),
		"completed_sessions": c.pinService.CompletedSessions(userId.String()),
	}))
}

func (c *userStateController) Reset(ctx *fiber.Ctx) error {
	userId, err := callerUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.ResetUserStateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	c.pinService.Reset(userId.String(), req.All)
	return ctx.JSON(serverutils.SuccessResponse[any]("Success reset user state", nil))
}
