package ports

import (
	"context"
	"iter"
	"math/big"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/lifecycle"
)

// Connection cuenta y red activas de la wallet.
type Connection struct {
	Address   string
	NetworkID string
}

// Registration resultado de addProduct confirmado.
type Registration struct {
	TxRef      string
	AssignedID uint64
}

// TransferReceipt resultado de transferProduct confirmado.
type TransferReceipt struct {
	TxRef string
}

// ChainGateway define el puerto de salida hacia el ledger (contrato ProductsChain).
// Toda falla se normaliza a los errores de domain (ErrWalletUnavailable, ErrUserRejected, ...).
// Si la falla ocurre con una transacción ya enviada, el error es *domain.TxError con su TxRef:
// el llamador no debe reenviar, solo consultar con Await*.
type ChainGateway interface {
	// Connect pide acceso a la cuenta del firmante y devuelve su dirección y la red actual.
	Connect(ctx context.Context, signer entity.Account) (Connection, error)
	// EnsureNetwork cambia a expected si hace falta; ErrWrongNetwork si no se puede o se rechaza.
	EnsureNetwork(ctx context.Context, expected string) (string, error)

	Register(ctx context.Context, signer entity.Account, metaDigest string, priceWei *big.Int, quantity uint64) (Registration, error)
	Transfer(ctx context.Context, signer entity.Account, onChainID uint64, to string, tag lifecycle.RoleTag) (TransferReceipt, error)

	// AwaitRegistration y AwaitTransfer esperan una transacción ya enviada. Nunca reenvían.
	AwaitRegistration(ctx context.Context, txRef string) (Registration, error)
	AwaitTransfer(ctx context.Context, txRef string) (TransferReceipt, error)

	ReadProduct(ctx context.Context, onChainID uint64) (entity.ProductSnapshot, error)
	// ReadHistory secuencia perezosa y finita en orden de inserción del ledger; se puede recorrer varias veces.
	ReadHistory(ctx context.Context, onChainID uint64) iter.Seq2[entity.TransferEvent, error]
}

type confirmKey struct{}

// WithConfirmation marca en ctx si el usuario confirmó la operación de esta solicitud.
func WithConfirmation(ctx context.Context, confirmed bool) context.Context {
	return context.WithValue(ctx, confirmKey{}, confirmed)
}

// Confirmed lee la marca de confirmación de ctx.
func Confirmed(ctx context.Context) bool {
	ok, _ := ctx.Value(confirmKey{}).(bool)
	return ok
}
