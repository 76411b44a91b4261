package handlers

import (
	"vendora/internal/models"
	"vendora/internal/services/ledger"
	"vendora/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type PointsHandler struct {
	ledgerService ledger.Service
}

func NewPointsHandler(ledgerService ledger.Service) *PointsHandler {
	return &PointsHandler{ledgerService: ledgerService}
}

func (h *PointsHandler) GetBalance(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	balance, err := h.ledgerService.GetBalance(c.Context(), claims.UserID)
	if err != nil {
		return utils.DomainFailure(c, err)
	}

	return utils.Success(c, fiber.Map{"balance": balance})
}

func (h *PointsHandler) GetHistory(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	limit := c.QueryInt("limit", ledger.DefaultHistoryLimit)
	offset := c.QueryInt("offset", 0)

	history, err := h.ledgerService.History(c.Context(), claims.UserID, limit, offset)
	if err != nil {
		return utils.DomainFailure(c, err)
	}

	return utils.Success(c, fiber.Map{"transactions": history})
}

// RecordAdjustment lets an admin credit or debit a user directly; the entry
// lands in the same ledger as every other mutation.
func (h *PointsHandler) RecordAdjustment(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		UserID      uint   `json:"user_id"`
		Amount      int64  `json:"amount"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if input.UserID == 0 {
		return utils.BadRequest(c, "user_id is required")
	}

	adminID := claims.UserID
	txn, err := h.ledgerService.Record(c.Context(), ledger.RecordRequest{
		UserID:        input.UserID,
		Amount:        input.Amount,
		Type:          models.TransactionTypeAdminAdjust,
		Description:   input.Description,
		RelatedUserID: &adminID,
	})
	if err != nil {
		return utils.DomainFailure(c, err)
	}

	return utils.Success(c, ledger.RecordResult{
		TransactionID: txn.ID,
		BalanceAfter:  txn.BalanceAfter,
	})
}
