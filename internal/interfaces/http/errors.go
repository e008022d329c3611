package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
)

// errorMapping en orden: el primero que coincide con errors.Is gana.
var errorMapping = []struct {
	target error
	status int
	code   string
}{
	{domain.ErrTxPending, fiber.StatusAccepted, "TX_PENDING"},
	{domain.ErrTxReverted, fiber.StatusUnprocessableEntity, "TX_REVERTED"},
	{domain.ErrTxRejected, fiber.StatusBadGateway, "TX_REJECTED"},
	{domain.ErrUserRejected, fiber.StatusConflict, "USER_REJECTED"},
	{domain.ErrWalletUnavailable, fiber.StatusServiceUnavailable, "WALLET_UNAVAILABLE"},
	{domain.ErrWrongNetwork, fiber.StatusConflict, "WRONG_NETWORK"},
	{domain.ErrContractUnset, fiber.StatusPreconditionFailed, "CONTRACT_UNSET"},
	{domain.ErrInvalidAddress, fiber.StatusBadRequest, "INVALID_ADDRESS"},
	{domain.ErrNotRegistered, fiber.StatusConflict, "NOT_REGISTERED"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrDuplicate, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "NOT_FOUND"},
}

// writeError traduce un error de dominio a status + dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	resp := dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()}
	status := fiber.StatusInternalServerError
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			status, resp.Code = m.status, m.code
			break
		}
	}
	if ref, ok := domain.TxRefOf(err); ok {
		resp.TxRef = ref
	}
	return c.Status(status).JSON(resp)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}
