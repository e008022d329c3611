// reset borra cuentas, productos y libreta de contratos de un perfil del almacén local.
// La siguiente lectura vuelve a los valores por defecto (solo el admin, sin productos).
//
// Uso: go run ./cmd/reset [namespace]
// Sin argumento usa STORE_NAMESPACE.
package main

import (
	"context"
	"os"

	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/localstore"
	"github.com/jhoicas/Trazabilidad-api/pkg/config"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	if len(os.Args) > 1 {
		cfg.Store.Namespace = os.Args[1]
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	storage, err := localstore.OpenStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacén local")
	}
	defer storage.Close()

	store, err := localstore.New(storage, localstore.Options{Namespace: cfg.Store.Namespace}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacén de registros")
	}
	store.Reset(ctx)
}
