package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrUserNotFound = errors.New("usuario no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Errores del ledger y de la wallet. El gateway normaliza cualquier fallo a uno de estos.
var (
	ErrWalletUnavailable = errors.New("no hay wallet disponible para firmar")
	ErrUserRejected      = errors.New("el usuario rechazó la solicitud")
	ErrWrongNetwork      = errors.New("la wallet está en otra red")
	ErrContractUnset     = errors.New("no hay contrato configurado para la red actual")
	ErrInvalidAddress    = errors.New("dirección de cuenta inválida")
	ErrTxRejected        = errors.New("la red rechazó la transacción")
	ErrTxReverted        = errors.New("la transacción fue revertida")
	ErrTxPending         = errors.New("transacción enviada sin confirmar")
	ErrNotRegistered     = errors.New("el producto no está registrado en el ledger")
)

// ErrInvalidTransition el destino solicitado no sigue a la etapa actual.
var ErrInvalidTransition = fmt.Errorf("%w: transición de etapa inválida", ErrInvalidInput)

// TxError fallo ocurrido después de que existe una referencia de transacción.
// Conserva TxRef para que el llamador pueda reintentar consultando en vez de reenviar.
type TxError struct {
	TxRef string
	Err   error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("tx %s: %v", e.TxRef, e.Err)
}

func (e *TxError) Unwrap() error { return e.Err }

// TxRefOf devuelve la referencia de transacción si err la lleva.
func TxRefOf(err error) (string, bool) {
	var txErr *TxError
	if errors.As(err, &txErr) && txErr.TxRef != "" {
		return txErr.TxRef, true
	}
	return "", false
}
