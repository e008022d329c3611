package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Trazabilidad-api/internal/application/certificate"
	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	applifecycle "github.com/jhoicas/Trazabilidad-api/internal/application/lifecycle"
	"github.com/jhoicas/Trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/Trazabilidad-api/internal/application/views"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// ProductHandler ciclo de vida de productos (protegido).
type ProductHandler struct {
	lc   *applifecycle.Reconciler
	cert *certificate.PDFUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(lc *applifecycle.Reconciler, cert *certificate.PDFUseCase) *ProductHandler {
	return &ProductHandler{lc: lc, cert: cert}
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	products := h.lc.List(c.UserContext())
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, views.ToProductResponse(p))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto por localId
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "localId"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	rec, err := h.lc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(views.ToProductResponse(*rec))
}

// Propose godoc
// @Summary      Proponer producto (queda pending)
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProposeProductRequest  true  "name, description, batchId, price (ETH), qty"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Propose(c *fiber.Ctx) error {
	actor, ok := GetAccount(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ProposeProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rec, err := h.lc.ProposeProduct(c.UserContext(), actor, applifecycle.ProposeInput{
		Name:        in.Name,
		Description: in.Description,
		BatchRef:    in.BatchID,
		UnitPrice:   in.Price,
		Quantity:    in.Qty,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(views.ToProductResponse(*rec))
}

// Withdraw godoc
// @Summary      Retirar producto pending (sin efecto en cualquier otra etapa)
// @Tags         products
// @Security     Bearer
// @Param        id   path  string  true  "localId"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Withdraw(c *fiber.Ctx) error {
	actor, ok := GetAccount(c)
	if !ok {
		return unauthorized(c)
	}
	id := c.Params("id")
	if rec, err := h.lc.Get(c.UserContext(), id); err == nil && rec.OwnerUsername != actor.Username {
		return writeError(c, domain.ErrForbidden)
	}
	if err := h.lc.WithdrawPending(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Publish godoc
// @Summary      Registrar en el ledger un producto pending
// @Description  Si existe una transacción enviada sin confirmar, se consulta en vez de reenviar.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true   "localId"
// @Param        body  body  dto.ConfirmRequest   false  "confirm"
// @Success      200   {object}  dto.ProductResponse
// @Success      202   {object}  dto.ErrorResponse  "TX_PENDING con txRef"
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/publish [post]
func (h *ProductHandler) Publish(c *fiber.Ctx) error {
	actor, ok := GetAccount(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ConfirmRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	ctx := ports.WithConfirmation(c.UserContext(), in.Confirm || c.QueryBool("confirm"))
	rec, err := h.lc.Publish(ctx, c.Params("id"), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(views.ToProductResponse(*rec))
}

// Transfer godoc
// @Summary      Traspasar el producto al rol del usuario
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "localId"
// @Param        body  body  dto.TransferRequest  true  "destination (withSupplier|withConsumer), confirm"
// @Success      200   {object}  dto.ProductResponse
// @Success      202   {object}  dto.ErrorResponse  "TX_PENDING con txRef"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/transfer [post]
func (h *ProductHandler) Transfer(c *fiber.Ctx) error {
	actor, ok := GetAccount(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	destination, err := entity.ParseStage(in.Destination)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	ctx := ports.WithConfirmation(c.UserContext(), in.Confirm || c.QueryBool("confirm"))
	rec, err := h.lc.AdvanceOwnership(ctx, c.Params("id"), destination, actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(views.ToProductResponse(*rec))
}

// Reconcile godoc
// @Summary      Conciliar el registro local con el ledger
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "localId"
// @Success      200  {object}  dto.ProductResponse
// @Router       /api/products/{id}/reconcile [post]
func (h *ProductHandler) Reconcile(c *fiber.Ctx) error {
	rec, err := h.lc.Reconcile(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(views.ToProductResponse(*rec))
}

// History godoc
// @Summary      Historial de traspasos del ledger
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "localId"
// @Success      200  {array}   dto.TransferEventResponse
// @Failure      409  {object}  dto.ErrorResponse  "NOT_REGISTERED"
// @Router       /api/products/{id}/history [get]
func (h *ProductHandler) History(c *fiber.Ctx) error {
	seq, err := h.lc.ViewHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := []dto.TransferEventResponse{}
	for ev, err := range seq {
		if err != nil {
			return writeError(c, err)
		}
		out = append(out, views.ToTransferEventResponse(ev))
	}
	return c.JSON(out)
}

// Certificate godoc
// @Summary      Certificado de procedencia en PDF
// @Tags         products
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "localId"
// @Success      200  {file}    binary
// @Failure      409  {object}  dto.ErrorResponse  "NOT_REGISTERED"
// @Router       /api/products/{id}/certificate [get]
func (h *ProductHandler) Certificate(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.cert.Download(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

// Inspect godoc
// @Summary      Leer un producto directamente del ledger
// @Tags         chain
// @Security     Bearer
// @Produce      json
// @Param        onChainId  path      int  true  "id en el ledger"
// @Success      200        {object}  dto.LedgerProductResponse
// @Failure      409        {object}  dto.ErrorResponse  "NOT_REGISTERED"
// @Router       /api/chain/products/{onChainId} [get]
func (h *ProductHandler) Inspect(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("onChainId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "onChainId numérico requerido"})
	}
	snap, err := h.lc.Inspect(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(views.ToLedgerProductResponse(snap))
}
