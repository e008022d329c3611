// Package localstore almacén local de cuentas, productos y libreta de contratos de un perfil.
package localstore

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
)

// Claves de las tres colecciones; mismos nombres y forma JSON que usa el front.
const (
	KeyAccounts     = "sc_users_v1"
	KeyProducts     = "sc_products_v1"
	KeyContractBook = "productsChainContractAddresses_v1"
)

var _ repository.RecordStore = (*Store)(nil)

// Options parámetros del almacén.
type Options struct {
	Namespace     string // perfil; "" = "default"
	AdminPassword string // contraseña del admin por defecto; "" = "admin"
	BcryptCost    int    // 0 = bcrypt.DefaultCost
	// Semilla de la libreta cuando está vacía: dirección del contrato para la red esperada.
	SeedNetwork  string
	SeedContract string
}

// Store implementa repository.RecordStore sobre cualquier StateStorage.
// Las lecturas nunca fallan: payload ausente, corrupto o de otra forma devuelve el valor por defecto.
type Store struct {
	storage      repository.StateStorage
	namespace    string
	defaultAdmin entity.Account
	seed         entity.ContractBook
	log          *logger.Logger
}

// New construye el almacén. El hash del admin por defecto se calcula una sola vez
// para que dos lecturas seguidas sin escritura devuelvan lo mismo.
func New(storage repository.StateStorage, opts Options, log *logger.Logger) (*Store, error) {
	if opts.Namespace == "" {
		opts.Namespace = "default"
	}
	if opts.AdminPassword == "" {
		opts.AdminPassword = "admin"
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), cost)
	if err != nil {
		return nil, err
	}
	seed := entity.ContractBook{}
	if opts.SeedNetwork != "" && strings.TrimSpace(opts.SeedContract) != "" {
		seed[strings.ToLower(opts.SeedNetwork)] = strings.TrimSpace(opts.SeedContract)
	}
	return &Store{
		storage:   storage,
		namespace: opts.Namespace,
		defaultAdmin: entity.Account{
			ID:           entity.AdminAccountID,
			Username:     entity.AdminUsername,
			Role:         entity.RoleAdmin,
			PasswordHash: string(hash),
			CreatedAt:    time.Now().UTC().Truncate(time.Second),
		},
		seed: seed,
		log:  log.Component("localstore"),
	}, nil
}

func (s *Store) key(name string) string { return s.namespace + ":" + name }

// read devuelve el payload o nil si no existe o falló la lectura.
func (s *Store) read(ctx context.Context, name string) []byte {
	payload, ok, err := s.storage.Get(ctx, s.key(name))
	if err != nil {
		s.log.Error().Err(err).Str("key", s.key(name)).Msg("no se pudo leer; se usa el valor por defecto")
		return nil
	}
	if !ok {
		return nil
	}
	return payload
}

func (s *Store) write(ctx context.Context, name string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		s.log.Error().Err(err).Str("key", s.key(name)).Msg("no se pudo serializar")
		return
	}
	if err := s.storage.Put(ctx, s.key(name), payload); err != nil {
		s.log.Error().Err(err).Str("key", s.key(name)).Msg("no se pudo guardar")
	}
}

// LoadAccounts devuelve las cuentas. Vacío o inválido -> [admin]; sin admin -> admin al inicio.
func (s *Store) LoadAccounts(ctx context.Context) []entity.Account {
	payload := s.read(ctx, KeyAccounts)
	if payload == nil {
		return []entity.Account{s.defaultAdmin}
	}
	var accounts []entity.Account
	if err := json.Unmarshal(payload, &accounts); err != nil {
		s.log.Warn().Err(err).Str("key", s.key(KeyAccounts)).Msg("payload inválido; se usan las cuentas por defecto")
		return []entity.Account{s.defaultAdmin}
	}
	if len(accounts) == 0 {
		return []entity.Account{s.defaultAdmin}
	}
	for _, a := range accounts {
		if a.IsAdmin() {
			return accounts
		}
	}
	s.log.Warn().Str("key", s.key(KeyAccounts)).Msg("no hay admin; se agrega el admin por defecto")
	return append([]entity.Account{s.defaultAdmin}, accounts...)
}

func (s *Store) SaveAccounts(ctx context.Context, accounts []entity.Account) {
	s.write(ctx, KeyAccounts, accounts)
}

// LoadProducts devuelve los productos. Ausente o inválido -> lista vacía.
func (s *Store) LoadProducts(ctx context.Context) []entity.ProductRecord {
	payload := s.read(ctx, KeyProducts)
	if payload == nil {
		return []entity.ProductRecord{}
	}
	var products []entity.ProductRecord
	if err := json.Unmarshal(payload, &products); err != nil {
		s.log.Warn().Err(err).Str("key", s.key(KeyProducts)).Msg("payload inválido; se usa la lista vacía")
		return []entity.ProductRecord{}
	}
	if products == nil {
		return []entity.ProductRecord{}
	}
	for i := range products {
		products[i].Stage = stageFromHolder(products[i])
	}
	return products
}

// stageFromHolder el front guarda "approved" también después de cada traspaso y
// distingue al tenedor solo por ownerRole.
func stageFromHolder(p entity.ProductRecord) entity.Stage {
	if p.Stage != entity.StageRegistered {
		return p.Stage
	}
	switch p.OwnerRole {
	case entity.RoleSupplier:
		return entity.StageWithSupplier
	case entity.RoleConsumer:
		return entity.StageWithConsumer
	}
	return p.Stage
}

func (s *Store) SaveProducts(ctx context.Context, products []entity.ProductRecord) {
	if products == nil {
		products = []entity.ProductRecord{}
	}
	s.write(ctx, KeyProducts, products)
}

// LoadContractBook devuelve la libreta. Ausente o inválida -> semilla de configuración.
func (s *Store) LoadContractBook(ctx context.Context) entity.ContractBook {
	payload := s.read(ctx, KeyContractBook)
	if payload == nil {
		return s.seed.Clone()
	}
	var raw map[string]string
	if err := json.Unmarshal(payload, &raw); err != nil {
		s.log.Warn().Err(err).Str("key", s.key(KeyContractBook)).Msg("payload inválido; se usa la libreta por defecto")
		return s.seed.Clone()
	}
	book := make(entity.ContractBook, len(raw))
	for network, addr := range raw {
		book[strings.ToLower(network)] = addr
	}
	return book
}

func (s *Store) SaveContractBook(ctx context.Context, book entity.ContractBook) {
	if book == nil {
		book = entity.ContractBook{}
	}
	s.write(ctx, KeyContractBook, book)
}

// Reset borra las tres colecciones del perfil (botón "Reset" de la demo).
func (s *Store) Reset(ctx context.Context) {
	err := s.storage.DeleteAll(ctx, s.key(KeyAccounts), s.key(KeyProducts), s.key(KeyContractBook))
	if err != nil {
		s.log.Error().Err(err).Str("namespace", s.namespace).Msg("no se pudo reiniciar el perfil")
		return
	}
	s.log.Info().Str("namespace", s.namespace).Msg("perfil reiniciado")
}
