package handlers

import (
	"vendora/internal/services/deposit"
	"vendora/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type DepositHandler struct {
	depositService deposit.Service
}

func NewDepositHandler(depositService deposit.Service) *DepositHandler {
	return &DepositHandler{depositService: depositService}
}

func (h *DepositHandler) Apply(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Amount          decimal.Decimal `json:"amount"`
		PaymentProofURL string          `json:"payment_proof_url"`
		TransactionHash string          `json:"transaction_hash"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	app, err := h.depositService.Apply(c.Context(), deposit.ApplyRequest{
		UserID:          claims.UserID,
		Amount:          input.Amount,
		PaymentProofURL: input.PaymentProofURL,
		TransactionHash: input.TransactionHash,
	})
	if err != nil {
		return utils.DomainFailure(c, err)
	}

	return utils.Success(c, fiber.Map{"application_id": app.ID})
}

func (h *DepositHandler) ApplyTopUp(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Amount          decimal.Decimal `json:"amount"`
		PaymentProofURL string          `json:"payment_proof_url"`
		TransactionHash string          `json:"transaction_hash"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	app, err := h.depositService.ApplyTopUp(c.Context(), deposit.TopUpRequest{
		UserID:          claims.UserID,
		TopUpAmount:     input.Amount,
		PaymentProofURL: input.PaymentProofURL,
		TransactionHash: input.TransactionHash,
	})
	if err != nil {
		return utils.DomainFailure(c, err)
	}

	return utils.Success(c, fiber.Map{
		"application_id": app.ID,
		"total_amount":   app.TotalAmount,
	})
}

func (h *DepositHandler) ApplyRefund(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Reason        string `json:"reason"`
		WalletAddress string `json:"wallet_address"`
		WalletNetwork string `json:"wallet_network"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	app, err := h.depositService.ApplyRefund(c.Context(), deposit.RefundRequest{
		UserID:        claims.UserID,
		Reason:        input.Reason,
		WalletAddress: input.WalletAddress,
		WalletNetwork: input.WalletNetwork,
	})
	if err != nil {
		return utils.DomainFailure(c, err)
	}

	return utils.Success(c, fiber.Map{
		"application_id": app.ID,
		"fee_rate":       app.FeeRate,
		"fee_amount":     app.FeeAmount,
		"refund_amount":  app.RefundAmount,
	})
}

func (h *DepositHandler) CancelRefund(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	applicationID, err := c.ParamsInt("id")
	if err != nil || applicationID <= 0 {
		return utils.BadRequest(c, "invalid application id")
	}

	if err := h.depositService.CancelRefund(c.Context(), uint(applicationID), claims.UserID); err != nil {
		return utils.DomainFailure(c, err)
	}

	return utils.Success(c, fiber.Map{"message": "refund application cancelled"})
}
