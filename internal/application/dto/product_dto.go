package dto

import "time"

// ProposeProductRequest alta local de un producto (queda pending).
type ProposeProductRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description"`
	BatchID     string `json:"batchId"`
	Price       string `json:"price" validate:"required"` // ETH decimal, p.ej. "0.05"
	Qty         int64  `json:"qty" validate:"required,min=1"`
}

// ConfirmRequest marca de confirmación del usuario para operaciones que firman.
type ConfirmRequest struct {
	Confirm bool `json:"confirm"`
}

// TransferRequest traspaso al rol del usuario autenticado.
type TransferRequest struct {
	Destination string `json:"destination" validate:"required,oneof=withSupplier withConsumer"`
	Confirm     bool   `json:"confirm"`
}

// PendingTxResponse transacción enviada sin confirmar.
type PendingTxResponse struct {
	TxRef       string    `json:"txRef"`
	Action      string    `json:"action"`
	Destination string    `json:"destination"`
	Actor       string    `json:"actor"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// ProductResponse salida de un ProductRecord.
type ProductResponse struct {
	LocalID     string             `json:"localId"`
	DisplayID   string             `json:"displayId"`
	OnChainID   *uint64            `json:"onChainId"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	BatchID     string             `json:"batchId"`
	Price       string             `json:"price"`
	Qty         int64              `json:"qty"`
	MetaHash    string             `json:"metaHash,omitempty"`
	Owner       string             `json:"owner"`
	OwnerRole   string             `json:"ownerRole"`
	Status      string             `json:"status"`
	TxHash      string             `json:"txHash,omitempty"`
	PendingTx   *PendingTxResponse `json:"pendingTx,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// TransferEventResponse entrada del historial del ledger.
type TransferEventResponse struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

// LedgerProductResponse producto tal como lo guarda el ledger.
type LedgerProductResponse struct {
	ID         uint64    `json:"id"`
	Owner      string    `json:"owner"`
	Supplier   string    `json:"supplier"`
	Consumer   string    `json:"consumer"`
	OwnerTx    string    `json:"ownertx"`
	SupplierTx string    `json:"suppliertx"`
	MetaHash   string    `json:"metaHash"`
	Price      string    `json:"price"` // ETH
	Qty        uint64    `json:"qty"`
	Approved   bool      `json:"approved"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
