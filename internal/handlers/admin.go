package handlers

import (
	"vendora/internal/services/deposit"
	"vendora/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler exposes the review endpoints. Role checks happen in the auth
// middleware; these handlers only enforce state preconditions.
type AdminHandler struct {
	depositService deposit.Service
}

func NewAdminHandler(depositService deposit.Service) *AdminHandler {
	return &AdminHandler{depositService: depositService}
}

type reviewInput struct {
	Decision string `json:"decision"`
	Note     string `json:"note"`
}

func (h *AdminHandler) parseReview(c *fiber.Ctx) (deposit.ReviewRequest, error) {
	claims, err := extractUserClaims(c)
	if err != nil {
		return deposit.ReviewRequest{}, fiber.ErrUnauthorized
	}

	applicationID, err := c.ParamsInt("id")
	if err != nil || applicationID <= 0 {
		return deposit.ReviewRequest{}, fiber.NewError(fiber.StatusBadRequest, "invalid application id")
	}

	var input reviewInput
	if err := c.BodyParser(&input); err != nil {
		return deposit.ReviewRequest{}, fiber.NewError(fiber.StatusBadRequest, "invalid request format")
	}

	return deposit.ReviewRequest{
		ApplicationID: uint(applicationID),
		AdminID:       claims.UserID,
		Decision:      deposit.Decision(input.Decision),
		Note:          input.Note,
	}, nil
}

func (h *AdminHandler) ReviewDepositApplication(c *fiber.Ctx) error {
	req, err := h.parseReview(c)
	if err != nil {
		return err
	}
	if err := h.depositService.ReviewApplication(c.Context(), req); err != nil {
		return utils.DomainFailure(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "application reviewed"})
}

func (h *AdminHandler) ReviewTopUp(c *fiber.Ctx) error {
	req, err := h.parseReview(c)
	if err != nil {
		return err
	}
	if err := h.depositService.ReviewTopUp(c.Context(), req); err != nil {
		return utils.DomainFailure(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "top-up reviewed"})
}

func (h *AdminHandler) ReviewRefund(c *fiber.Ctx) error {
	req, err := h.parseReview(c)
	if err != nil {
		return err
	}
	if err := h.depositService.ReviewRefund(c.Context(), req); err != nil {
		return utils.DomainFailure(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "refund reviewed"})
}

// MarkViolation freezes a merchant's deposit following a moderation
// decision made outside this system.
func (h *AdminHandler) MarkViolation(c *fiber.Ctx) error {
	merchantID, err := c.ParamsInt("id")
	if err != nil || merchantID <= 0 {
		return utils.BadRequest(c, "invalid merchant id")
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	if err := h.depositService.MarkViolated(c.Context(), uint(merchantID), input.Reason); err != nil {
		return utils.DomainFailure(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "merchant deposit frozen"})
}
