package handlers

import (
	"errors"

	"vendora/internal/services/rewards"
	"vendora/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type RewardsHandler struct {
	rewardsService rewards.Service
}

func NewRewardsHandler(rewardsService rewards.Service) *RewardsHandler {
	return &RewardsHandler{rewardsService: rewardsService}
}

func (h *RewardsHandler) CheckIn(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	result, err := h.rewardsService.CheckIn(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, rewards.ErrAlreadyCheckedIn) {
			return utils.Conflict(c, err.Error())
		}
		return utils.DomainFailure(c, err)
	}

	return utils.Success(c, result)
}

func (h *RewardsHandler) RevealContact(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	merchantID, err := c.ParamsInt("id")
	if err != nil || merchantID <= 0 {
		return utils.BadRequest(c, "invalid merchant id")
	}

	result, err := h.rewardsService.RevealContact(c.Context(), claims.UserID, uint(merchantID))
	if err != nil {
		return utils.DomainFailure(c, err)
	}

	return utils.Success(c, result)
}

func (h *RewardsHandler) Refer(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		InviteeID uint `json:"invitee_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if input.InviteeID == 0 {
		return utils.BadRequest(c, "invitee_id is required")
	}

	result, err := h.rewardsService.Refer(c.Context(), claims.UserID, input.InviteeID)
	if err != nil {
		switch {
		case errors.Is(err, rewards.ErrAlreadyReferred):
			return utils.Conflict(c, err.Error())
		case errors.Is(err, rewards.ErrSelfReferral):
			return utils.BadRequest(c, err.Error())
		}
		return utils.DomainFailure(c, err)
	}

	return utils.Success(c, result)
}

func (h *RewardsHandler) Promote(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Days int `json:"days"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	result, err := h.rewardsService.Promote(c.Context(), claims.UserID, input.Days)
	if err != nil {
		if errors.Is(err, rewards.ErrInvalidDays) {
			return utils.BadRequest(c, err.Error())
		}
		return utils.DomainFailure(c, err)
	}

	return utils.Success(c, result)
}

func (h *RewardsHandler) ClaimDailyReward(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	reward, err := h.rewardsService.ClaimDailyDepositReward(c.Context(), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, rewards.ErrRewardClaimed):
			return utils.Conflict(c, err.Error())
		case errors.Is(err, rewards.ErrNotDepositPaid):
			return utils.BadRequest(c, err.Error())
		}
		return utils.DomainFailure(c, err)
	}

	return utils.Success(c, fiber.Map{"reward": reward})
}
