package controller

import (
	"temple-sessions-be/internal/dto"
	"temple-sessions-be/internal/pkg/serverutils"
	"temple-sessions-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	ListByExercise(ctx *fiber.Ctx) error
	Start(ctx *fiber.Ctx) error
	ToggleInterested(ctx *fiber.Ctx) error
	Complete(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) ISessionController {
	return &sessionController{
		sessionService: sessionService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get("exercise/:exerciseId", c.ListByExercise)
	h.Get(":id", c.Show)
	h.Post(":id/start", c.Start)
	h.Put(":id/interested", c.ToggleInterested)
	h.Post(":id/complete", c.Complete)
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	userId, err := callerUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	userId, err := callerUserId(ctx)
	if err != nil {
		return err
	}
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.sessionService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *sessionController) ListByExercise(ctx *fiber.Ctx) error {
	userId, err := callerUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.sessionService.FindUpcomingByExercise(ctx.Context(), userId, ctx.Params("exerciseId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list sessions", res))
}

func (c *sessionController) Start(ctx *fiber.Ctx) error {
	userId, err := callerUserId(ctx)
	if err != nil {
		return err
	}
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	if err := c.sessionService.Start(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success start session", nil))
}

func (c *sessionController) ToggleInterested(ctx *fiber.Ctx) error {
	userId, err := callerUserId(ctx)
	if err != nil {
		return err
	}
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.sessionService.ToggleInterested(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success toggle interested", res))
}

func (c *sessionController) Complete(ctx *fiber.Ctx) error {
	userId, err := callerUserId(ctx)
	if err != nil {
		return err
	}
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	if err := c.sessionService.Complete(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success complete session", nil))
}

func callerUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, serverutils.NewInvalidInputError("missing user id")
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, serverutils.NewInvalidInputError("invalid user id")
	}
	return userId, nil
}

func sessionIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, serverutils.NewInvalidInputError("invalid session id")
	}
	return id, nil
}
