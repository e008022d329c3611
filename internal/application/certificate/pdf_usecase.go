// Package certificate certificado de procedencia en PDF de un producto registrado en el ledger.
package certificate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// Data todo lo que se imprime en el certificado.
type Data struct {
	Record      entity.ProductRecord
	Snapshot    entity.ProductSnapshot
	History     []entity.TransferEvent
	Network     string
	Contract    string
	GeneratedAt time.Time
}

// QRPayload "<red>:<contrato>:<onChainId>", suficiente para volver a leer el producto del ledger.
func (d Data) QRPayload() string {
	var id uint64
	if d.Record.OnChainID != nil {
		id = *d.Record.OnChainID
	}
	return fmt.Sprintf("%s:%s:%d", d.Network, d.Contract, id)
}

// Generator dibuja el certificado.
type Generator interface {
	GenerateCertificate(ctx context.Context, data Data) ([]byte, error)
}

// PDFUseCase reúne registro local, lectura del ledger e historial y genera el PDF.
type PDFUseCase struct {
	store     repository.RecordStore
	chain     ports.ChainGateway
	network   string
	generator Generator
	now       func() time.Time
}

// NewPDFUseCase construye el caso de uso. network es la red esperada (hex).
func NewPDFUseCase(store repository.RecordStore, chain ports.ChainGateway, network string, generator Generator) *PDFUseCase {
	return &PDFUseCase{
		store:     store,
		chain:     chain,
		network:   strings.ToLower(network),
		generator: generator,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Download genera el certificado del producto localID.
//
// Retorna:
//   - domain.ErrNotFound       si el producto no existe.
//   - domain.ErrNotRegistered  si el producto aún no tiene id en el ledger.
//   - domain.ErrContractUnset  si no hay contrato para la red.
func (uc *PDFUseCase) Download(ctx context.Context, localID string) (pdfBytes []byte, filename string, err error) {
	// ── 1. Registro local ─────────────────────────────────────────────────────
	products := uc.store.LoadProducts(ctx)
	i := entity.FindProduct(products, localID)
	if i < 0 {
		return nil, "", domain.ErrNotFound
	}
	rec := products[i].Clone()
	if !rec.Registered() {
		return nil, "", domain.ErrNotRegistered
	}

	// ── 2. Contrato de la red ─────────────────────────────────────────────────
	contract, ok := uc.store.LoadContractBook(ctx).Lookup(uc.network)
	if !ok {
		return nil, "", fmt.Errorf("%w: red %s", domain.ErrContractUnset, uc.network)
	}

	// ── 3. Ledger: snapshot + historial ───────────────────────────────────────
	snap, err := uc.chain.ReadProduct(ctx, *rec.OnChainID)
	if err != nil {
		return nil, "", err
	}
	var history []entity.TransferEvent
	for ev, err := range uc.chain.ReadHistory(ctx, *rec.OnChainID) {
		if err != nil {
			return nil, "", err
		}
		history = append(history, ev)
	}

	// ── 4. PDF ────────────────────────────────────────────────────────────────
	pdfBytes, err = uc.generator.GenerateCertificate(ctx, Data{
		Record:      rec,
		Snapshot:    snap,
		History:     history,
		Network:     uc.network,
		Contract:    contract,
		GeneratedAt: uc.now(),
	})
	if err != nil {
		return nil, "", fmt.Errorf("certificado: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("certificado_%d.pdf", *rec.OnChainID), nil
}
