package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// ContractBookReader lo implementa el almacén local.
type ContractBookReader interface {
	LoadContractBook(ctx context.Context) entity.ContractBook
}

// RequireContract corta con 412 CONTRACT_UNSET las rutas que leen o escriben en el ledger
// cuando la libreta no tiene dirección para la red esperada. La libreta se lee en cada solicitud.
func RequireContract(book ContractBookReader, network string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := book.LoadContractBook(c.UserContext()).Lookup(network); !ok {
			return c.Status(fiber.StatusPreconditionFailed).JSON(dto.ErrorResponse{
				Code:    "CONTRACT_UNSET",
				Message: "no hay contrato configurado para la red " + network,
			})
		}
		return c.Next()
	}
}
