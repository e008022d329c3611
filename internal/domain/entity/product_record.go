package entity

import (
	"fmt"
	"time"
)

// TxAction tipo de transacción pendiente de confirmar.
type TxAction string

const (
	TxActionRegister TxAction = "register"
	TxActionTransfer TxAction = "transfer"
)

// PendingTx transacción enviada cuya confirmación no se pudo completar.
// Mientras exista, un reintento consulta TxRef en vez de reenviar.
type PendingTx struct {
	TxRef         string    `json:"txRef"`
	Action        TxAction  `json:"action"`
	Destination   Stage     `json:"destination"`
	ActorUsername string    `json:"actor"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// ProductRecord copia local de un producto. Con OnChainID presente el ledger es la fuente de verdad.
type ProductRecord struct {
	LocalID             string     `json:"localId"`
	OnChainID           *uint64    `json:"onChainId"`
	ProvisionalSequence int64      `json:"provisionalSequence"`
	Name                string     `json:"name"`
	Description         string     `json:"description"`
	BatchRef            string     `json:"batchId"`
	UnitPrice           string     `json:"price"` // ETH decimal
	Quantity            int64      `json:"qty"`
	MetaDigest          string     `json:"metaHash,omitempty"`
	OwnerUsername       string     `json:"ownerUsername"`
	OwnerRole           Role       `json:"ownerRole"`
	Stage               Stage      `json:"status"`
	LastTxRef           string     `json:"txHash,omitempty"`
	PendingTx           *PendingTx `json:"pendingTx,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// Registered indica si el producto tiene id en el ledger.
func (p ProductRecord) Registered() bool { return p.OnChainID != nil }

// DisplayID "#<onChainId>" o "#<provisionalSequence>" si aún no está en el ledger.
func (p ProductRecord) DisplayID() string {
	if p.OnChainID != nil {
		return fmt.Sprintf("#%d", *p.OnChainID)
	}
	return fmt.Sprintf("#%d", p.ProvisionalSequence)
}

// Clone copia profunda; los registros se reemplazan completos, nunca se mutan in situ.
func (p ProductRecord) Clone() ProductRecord {
	out := p
	if p.OnChainID != nil {
		id := *p.OnChainID
		out.OnChainID = &id
	}
	if p.PendingTx != nil {
		tx := *p.PendingTx
		out.PendingTx = &tx
	}
	return out
}

// FindProduct devuelve el índice del registro con localID o -1.
func FindProduct(products []ProductRecord, localID string) int {
	for i := range products {
		if products[i].LocalID == localID {
			return i
		}
	}
	return -1
}

// NextProvisionalSequence 1 + máximo existente (1 si no hay productos).
func NextProvisionalSequence(products []ProductRecord) int64 {
	var max int64
	for _, p := range products {
		if p.ProvisionalSequence > max {
			max = p.ProvisionalSequence
		}
	}
	return max + 1
}
