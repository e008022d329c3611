package ethereum

import (
	"context"
	"fmt"

	"github.com/jhoicas/Trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
)

// TxRequest lo que se muestra al usuario antes de firmar.
type TxRequest struct {
	Method  string
	From    string
	Network string
	Summary string
}

// Approver confirmación del usuario, equivalente al popup de la wallet.
// Devuelve domain.ErrUserRejected si el usuario no acepta.
type Approver interface {
	ApproveConnect(ctx context.Context, account string) error
	ApproveNetworkSwitch(ctx context.Context, from, to string) error
	ApproveTransaction(ctx context.Context, req TxRequest) error
}

// AutoApprover acepta todo y lo deja en el log.
type AutoApprover struct {
	log *logger.Logger
}

// NewAutoApprover construye el aprobador automático.
func NewAutoApprover(log *logger.Logger) *AutoApprover {
	return &AutoApprover{log: log.Component("approver")}
}

func (a *AutoApprover) ApproveConnect(_ context.Context, account string) error {
	a.log.Debug().Str("account", account).Msg("conexión aprobada automáticamente")
	return nil
}

func (a *AutoApprover) ApproveNetworkSwitch(_ context.Context, from, to string) error {
	a.log.Info().Str("from", from).Str("to", to).Msg("cambio de red aprobado automáticamente")
	return nil
}

func (a *AutoApprover) ApproveTransaction(_ context.Context, req TxRequest) error {
	a.log.Info().Str("method", req.Method).Str("from", req.From).Str("network", req.Network).
		Str("summary", req.Summary).Msg("transacción aprobada automáticamente")
	return nil
}

// ContextApprover exige la marca de ports.WithConfirmation en cada solicitud.
type ContextApprover struct {
	log *logger.Logger
}

// NewContextApprover construye el aprobador por solicitud.
func NewContextApprover(log *logger.Logger) *ContextApprover {
	return &ContextApprover{log: log.Component("approver")}
}

func (a *ContextApprover) ApproveConnect(ctx context.Context, account string) error {
	return a.check(ctx, "conectar "+account)
}

func (a *ContextApprover) ApproveNetworkSwitch(ctx context.Context, from, to string) error {
	return a.check(ctx, fmt.Sprintf("cambiar de red %s -> %s", from, to))
}

func (a *ContextApprover) ApproveTransaction(ctx context.Context, req TxRequest) error {
	return a.check(ctx, fmt.Sprintf("%s desde %s: %s", req.Method, req.From, req.Summary))
}

func (a *ContextApprover) check(ctx context.Context, what string) error {
	if ports.Confirmed(ctx) {
		return nil
	}
	a.log.Info().Str("request", what).Msg("solicitud sin confirmar; rechazada")
	return fmt.Errorf("%w: %s", domain.ErrUserRejected, what)
}
