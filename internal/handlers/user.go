package handlers

import (
	"errors"

	"vendora/internal/services/user"
	"vendora/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService user.Service
}

func NewUserHandler(userService user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Register(c *fiber.Ctx) error {
	var input struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		Name       string `json:"name"`
		UserType   string `json:"user_type"`
		InviteCode string `json:"invite_code"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	u, err := h.userService.Register(c.Context(), user.RegisterRequest{
		Email:      input.Email,
		Password:   input.Password,
		Name:       input.Name,
		UserType:   input.UserType,
		InviteCode: input.InviteCode,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return utils.Conflict(c, err.Error())
		}
		return utils.DomainFailure(c, err)
	}

	return utils.Success(c, fiber.Map{
		"user_id":     u.ID,
		"invite_code": u.InviteCode,
	})
}
