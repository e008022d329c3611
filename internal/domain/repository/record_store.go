package repository

import (
	"context"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// RecordStore puerto del almacén local de cuentas, productos y libreta de contratos.
// Todas las operaciones son totales: un payload corrupto o ausente devuelve el valor por defecto
// y un fallo de escritura se registra en el log sin propagarse.
type RecordStore interface {
	LoadAccounts(ctx context.Context) []entity.Account
	SaveAccounts(ctx context.Context, accounts []entity.Account)
	LoadProducts(ctx context.Context) []entity.ProductRecord
	SaveProducts(ctx context.Context, products []entity.ProductRecord)
	LoadContractBook(ctx context.Context) entity.ContractBook
	SaveContractBook(ctx context.Context, book entity.ContractBook)
	// Reset borra las tres colecciones del perfil.
	Reset(ctx context.Context)
}
