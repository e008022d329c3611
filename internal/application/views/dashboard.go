// Package views proyecciones de solo lectura de productos y cuentas para el panel de cada rol.
package views

import (
	"context"
	"fmt"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Trazabilidad-api/pkg/ether"
)

// ViewUseCase arma el panel de un rol a partir del almacén local.
type ViewUseCase struct {
	store repository.RecordStore
}

// NewViewUseCase construye el caso de uso.
func NewViewUseCase(store repository.RecordStore) *ViewUseCase {
	return &ViewUseCase{store: store}
}

// For devuelve el panel de role para viewer. Un no-admin solo ve el panel de su propio rol.
func (uc *ViewUseCase) For(ctx context.Context, viewer entity.Account, role entity.Role) (*dto.RoleViewResponse, error) {
	if !viewer.IsAdmin() && viewer.Role != role {
		return nil, fmt.Errorf("%w: panel %s", domain.ErrForbidden, role)
	}
	products := uc.store.LoadProducts(ctx)
	switch role {
	case entity.RoleAdmin:
		v := Admin(uc.store.LoadAccounts(ctx), products)
		return &v, nil
	case entity.RoleProducer:
		v := Producer(products, viewer.Username)
		return &v, nil
	case entity.RoleSupplier:
		v := Supplier(products, viewer.Username)
		return &v, nil
	case entity.RoleConsumer:
		v := Consumer(products, viewer.Username)
		return &v, nil
	default:
		return nil, fmt.Errorf("%w: rol desconocido", domain.ErrInvalidInput)
	}
}

// Producer pendientes y registrados del productor.
func Producer(products []entity.ProductRecord, username string) dto.RoleViewResponse {
	v := dto.RoleViewResponse{Role: entity.RoleProducer.String(), Pending: []dto.ProductResponse{}, Published: []dto.ProductResponse{}}
	for _, p := range products {
		if p.OwnerUsername != username {
			continue
		}
		switch p.Stage {
		case entity.StagePending:
			v.Pending = append(v.Pending, ToProductResponse(p))
		case entity.StageRegistered:
			v.Published = append(v.Published, ToProductResponse(p))
		}
	}
	return v
}

// Supplier disponibles (registrados) y los que ya tiene.
func Supplier(products []entity.ProductRecord, username string) dto.RoleViewResponse {
	return holderView(entity.RoleSupplier, entity.StageRegistered, products, username)
}

// Consumer disponibles (con supplier) y los que ya tiene.
func Consumer(products []entity.ProductRecord, username string) dto.RoleViewResponse {
	return holderView(entity.RoleConsumer, entity.StageWithSupplier, products, username)
}

func holderView(role entity.Role, available entity.Stage, products []entity.ProductRecord, username string) dto.RoleViewResponse {
	v := dto.RoleViewResponse{Role: role.String(), Available: []dto.ProductResponse{}, Mine: []dto.ProductResponse{}}
	for _, p := range products {
		if p.Stage == available {
			v.Available = append(v.Available, ToProductResponse(p))
		}
		if p.OwnerRole == role && p.OwnerUsername == username {
			v.Mine = append(v.Mine, ToProductResponse(p))
		}
	}
	return v
}

// Admin todas las cuentas (sin secretos) y todos los productos.
func Admin(accounts []entity.Account, products []entity.ProductRecord) dto.RoleViewResponse {
	v := dto.RoleViewResponse{Role: entity.RoleAdmin.String()}
	v.Accounts = make([]dto.AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		v.Accounts = append(v.Accounts, ToAccountResponse(a))
	}
	v.Products = make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		v.Products = append(v.Products, ToProductResponse(p))
	}
	return v
}

// ─── Mapeos ───────────────────────────────────────────────────────────────────

// ToAccountResponse nunca incluye hash ni llave.
func ToAccountResponse(a entity.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:        a.ID,
		Username:  a.Username,
		Role:      a.Role.String(),
		Address:   a.ChainAddress,
		CreatedAt: a.CreatedAt,
	}
}

func ToProductResponse(p entity.ProductRecord) dto.ProductResponse {
	out := dto.ProductResponse{
		LocalID:     p.LocalID,
		DisplayID:   p.DisplayID(),
		Name:        p.Name,
		Description: p.Description,
		BatchID:     p.BatchRef,
		Price:       p.UnitPrice,
		Qty:         p.Quantity,
		MetaHash:    p.MetaDigest,
		Owner:       p.OwnerUsername,
		OwnerRole:   p.OwnerRole.String(),
		Status:      p.Stage.String(),
		TxHash:      p.LastTxRef,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.OnChainID != nil {
		id := *p.OnChainID
		out.OnChainID = &id
	}
	if tx := p.PendingTx; tx != nil {
		out.PendingTx = &dto.PendingTxResponse{
			TxRef:       tx.TxRef,
			Action:      string(tx.Action),
			Destination: tx.Destination.String(),
			Actor:       tx.ActorUsername,
			SubmittedAt: tx.SubmittedAt,
		}
	}
	return out
}

func ToTransferEventResponse(e entity.TransferEvent) dto.TransferEventResponse {
	return dto.TransferEventResponse{From: e.From, To: e.To, Role: e.Role, Timestamp: e.Timestamp}
}

// ToLedgerProductResponse precio en ETH y etapa derivada de los campos del ledger.
func ToLedgerProductResponse(s entity.ProductSnapshot) dto.LedgerProductResponse {
	return dto.LedgerProductResponse{
		ID:         s.ID,
		Owner:      s.Owner,
		Supplier:   s.Supplier,
		Consumer:   s.Consumer,
		OwnerTx:    s.OwnerTx,
		SupplierTx: s.SupplierTx,
		MetaHash:   s.MetaHash,
		Price:      ether.FormatEther(s.PriceWei),
		Qty:        s.Quantity,
		Approved:   s.Approved,
		Status:     s.Stage().String(),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}
