package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/views"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// DashboardHandler panel por rol.
type DashboardHandler struct {
	uc *views.ViewUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *views.ViewUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// View godoc
// @Summary      Panel de un rol
// @Description  Un usuario solo ve el panel de su rol; el admin puede ver cualquiera.
// @Tags         views
// @Security     Bearer
// @Produce      json
// @Param        role  path      string  true  "admin|producer|supplier|consumer"
// @Success      200   {object}  dto.RoleViewResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/views/{role} [get]
func (h *DashboardHandler) View(c *fiber.Ctx) error {
	actor, ok := GetAccount(c)
	if !ok {
		return unauthorized(c)
	}
	role, err := entity.ParseRole(c.Params("role"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	out, err := h.uc.For(c.UserContext(), actor, role)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
