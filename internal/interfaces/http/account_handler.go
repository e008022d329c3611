package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/usecase"
)

// AccountHandler administración de cuentas (solo admin).
type AccountHandler struct {
	uc *usecase.AccountUseCase
}

// NewAccountHandler construye el handler.
func NewAccountHandler(uc *usecase.AccountUseCase) *AccountHandler {
	return &AccountHandler{uc: uc}
}

// List godoc
// @Summary      Listar cuentas
// @Tags         accounts
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.AccountResponse
// @Router       /api/accounts [get]
func (h *AccountHandler) List(c *fiber.Ctx) error {
	return c.JSON(h.uc.List(c.UserContext()))
}

// Create godoc
// @Summary      Crear cuenta producer, supplier o consumer
// @Tags         accounts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAccountRequest  true  "username, password, role"
// @Success      201   {object}  dto.AccountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/accounts [post]
func (h *AccountHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateAccountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Delete godoc
// @Summary      Eliminar cuenta (el admin no se puede eliminar)
// @Tags         accounts
// @Security     Bearer
// @Param        id   path  string  true  "ID de la cuenta"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/accounts/{id} [delete]
func (h *AccountHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetAdminAddress godoc
// @Summary      Asignar dirección del ledger al admin
// @Tags         accounts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SetAddressRequest  true  "address"
// @Success      200   {object}  dto.AccountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/accounts/admin/address [put]
func (h *AccountHandler) SetAdminAddress(c *fiber.Ctx) error {
	var in dto.SetAddressRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SetAdminAddress(c.UserContext(), in.Address)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
