package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/Trazabilidad-api/internal/application/usecase"
)

// ChainHandler wallet y libreta de contratos.
type ChainHandler struct {
	uc *usecase.NetworkUseCase
}

// NewChainHandler construye el handler.
func NewChainHandler(uc *usecase.NetworkUseCase) *ChainHandler {
	return &ChainHandler{uc: uc}
}

// Connect godoc
// @Summary      Conectar la wallet de la cuenta
// @Tags         chain
// @Security     Bearer
// @Produce      json
// @Param        confirm  query     bool  false  "confirmación del usuario"
// @Success      200      {object}  dto.WalletResponse
// @Failure      409      {object}  dto.ErrorResponse  "USER_REJECTED"
// @Failure      503      {object}  dto.ErrorResponse  "WALLET_UNAVAILABLE"
// @Router       /api/wallet/connect [get]
func (h *ChainHandler) Connect(c *fiber.Ctx) error {
	actor, ok := GetAccount(c)
	if !ok {
		return unauthorized(c)
	}
	ctx := ports.WithConfirmation(c.UserContext(), c.QueryBool("confirm"))
	out, err := h.uc.Connect(ctx, actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Contracts godoc
// @Summary      Libreta de contratos por red
// @Tags         chain
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ContractBookResponse
// @Router       /api/networks/contracts [get]
func (h *ChainHandler) Contracts(c *fiber.Ctx) error {
	return c.JSON(h.uc.Contracts(c.UserContext()))
}

// SetContract godoc
// @Summary      Guardar la dirección del contrato para una red
// @Tags         chain
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        networkId  path  string                  true  "id de red (hex o decimal)"
// @Param        body       body  dto.SetContractRequest  true  "address"
// @Success      200        {object}  dto.ContractBookResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Router       /api/networks/{networkId}/contract [put]
func (h *ChainHandler) SetContract(c *fiber.Ctx) error {
	var in dto.SetContractRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SetContract(c.UserContext(), c.Params("networkId"), in.Address)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
