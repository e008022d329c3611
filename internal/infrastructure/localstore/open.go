package localstore

import (
	"context"
	"fmt"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/memory"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/Trazabilidad-api/pkg/config"
)

// OpenStorage abre el backend configurado en STORE_DRIVER. El llamador cierra con Close.
func OpenStorage(ctx context.Context, cfg *config.Config) (repository.StateStorage, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		return memory.NewStateStorage(), nil
	case config.StoreDriverSQLite:
		return sqlite.Open(ctx, cfg.Store.SQLitePath)
	case config.StoreDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		st := postgres.NewStateStorage(pool)
		if err := st.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return st, nil
	}
	return nil, fmt.Errorf("store driver desconocido %q", cfg.Store.Driver)
}
