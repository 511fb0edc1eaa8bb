package controller

import (
	"temple-sessions-be/internal/dto"
	"temple-sessions-be/internal/pkg/serverutils"
	"temple-sessions-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPostController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type postController struct {
	postService service.IPostService
}

func NewPostController(postService service.IPostService) IPostController {
	return &postController{
		postService: postService,
	}
}

func (c *postController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/post/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get(":exerciseId/:sharingId", c.List)
	h.Delete(":postId", c.Delete)
}

func (c *postController) Create(ctx *fiber.Ctx) error {
	userId, err := callerUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.CreatePostRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.postService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create post", res))
}

func (c *postController) List(ctx *fiber.Ctx) error {
	exerciseId := ctx.Params("exerciseId")
	sharingId := ctx.Params("sharingId")

	res, err := c.postService.FindByExerciseAndSharing(ctx.Context(), exerciseId, sharingId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list posts", res))
}

func (c *postController) Delete(ctx *fiber.Ctx) error {
	idParam := ctx.Params("postId")
	id, err := uuid.Parse(idParam)
	if err != nil {
		return serverutils.NewInvalidInputError("invalid post id")
	}

	if err := c.postService.Delete(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete post", nil))
}
