package entity

import (
	"math/big"
	"strings"
	"time"
)

// ZeroAddress dirección vacía tal como la devuelve el contrato para campos sin asignar.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// TransferEvent entrada del historial de traspasos leída del ledger. Nunca se persiste.
type TransferEvent struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

// ProductSnapshot campos actuales de un producto según el ledger.
type ProductSnapshot struct {
	ID         uint64
	Owner      string
	Supplier   string
	Consumer   string
	OwnerTx    string
	SupplierTx string
	MetaHash   string
	PriceWei   *big.Int
	Quantity   uint64
	Approved   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Stage etapa derivada: consumer asignado > supplier asignado > registrado.
func (s ProductSnapshot) Stage() Stage {
	switch {
	case !isZeroAddress(s.Consumer):
		return StageWithConsumer
	case !isZeroAddress(s.Supplier):
		return StageWithSupplier
	default:
		return StageRegistered
	}
}

// Holder dirección del tenedor actual según la etapa.
func (s ProductSnapshot) Holder() string {
	switch s.Stage() {
	case StageWithConsumer:
		return s.Consumer
	case StageWithSupplier:
		return s.Supplier
	default:
		return s.Owner
	}
}

func isZeroAddress(a string) bool {
	a = strings.TrimSpace(a)
	return a == "" || strings.EqualFold(a, ZeroAddress)
}

// ContractBook dirección del contrato por id de red (hex minúscula).
type ContractBook map[string]string

// Lookup devuelve la dirección configurada para la red.
func (b ContractBook) Lookup(networkID string) (string, bool) {
	addr, ok := b[strings.ToLower(networkID)]
	if !ok || strings.TrimSpace(addr) == "" {
		return "", false
	}
	return addr, true
}

// Clone copia el mapa.
func (b ContractBook) Clone() ContractBook {
	out := make(ContractBook, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
