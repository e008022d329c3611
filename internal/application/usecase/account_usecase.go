package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/views"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
)

// KeyGenerator genera un par de llaves: llave privada en hex y dirección.
type KeyGenerator func() (privateHex, address string, err error)

// AccountUseCase administración de cuentas por el admin.
type AccountUseCase struct {
	store      repository.RecordStore
	newKey     KeyGenerator
	bcryptCost int
	log        *logger.Logger

	now   func() time.Time
	newID func() string
	mu    sync.Mutex
}

// NewAccountUseCase construye el caso de uso. bcryptCost 0 = bcrypt.DefaultCost.
func NewAccountUseCase(store repository.RecordStore, newKey KeyGenerator, bcryptCost int, log *logger.Logger) *AccountUseCase {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AccountUseCase{
		store:      store,
		newKey:     newKey,
		bcryptCost: bcryptCost,
		log:        log.Component("accounts"),
		now:        func() time.Time { return time.Now().UTC() },
		newID:      func() string { return "u-" + uuid.New().String() },
	}
}

// List todas las cuentas sin secretos.
func (uc *AccountUseCase) List(ctx context.Context) []dto.AccountResponse {
	accounts := uc.store.LoadAccounts(ctx)
	out := make([]dto.AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, views.ToAccountResponse(a))
	}
	return out
}

// Create da de alta una cuenta producer, supplier o consumer con una llave nueva.
func (uc *AccountUseCase) Create(ctx context.Context, in dto.CreateAccountRequest) (*dto.AccountResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: usuario y contraseña son obligatorios", domain.ErrInvalidInput)
	}
	role, err := entity.ParseRole(in.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if role == entity.RoleAdmin {
		return nil, fmt.Errorf("%w: solo existe un admin", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.bcryptCost)
	if err != nil {
		return nil, err
	}
	privateHex, address, err := uc.newKey()
	if err != nil {
		return nil, fmt.Errorf("generar llave: %w", err)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	accounts := uc.store.LoadAccounts(ctx)
	if _, taken := entity.FindAccountByUsername(accounts, username); taken {
		return nil, fmt.Errorf("%w: el usuario %s ya existe", domain.ErrDuplicate, username)
	}
	if other, taken := entity.FindAccountByAddress(accounts, address); taken && !other.IsAdmin() {
		return nil, fmt.Errorf("%w: dirección %s ya asignada", domain.ErrDuplicate, address)
	}
	account := entity.Account{
		ID:           uc.newID(),
		Username:     username,
		Role:         role,
		ChainAddress: address,
		PasswordHash: string(hash),
		PrivateKey:   privateHex,
		CreatedAt:    uc.now(),
	}
	uc.store.SaveAccounts(ctx, append(accounts, account))

	uc.log.Info().Str("account_id", account.ID).Str("username", username).Str("role", role.String()).
		Str("address", address).Msg("cuenta creada")
	out := views.ToAccountResponse(account)
	return &out, nil
}

// Delete elimina una cuenta que no sea el admin.
func (uc *AccountUseCase) Delete(ctx context.Context, id string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	accounts := uc.store.LoadAccounts(ctx)
	idx := -1
	for i, a := range accounts {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrNotFound
	}
	if accounts[idx].IsAdmin() {
		return fmt.Errorf("%w: el admin no se puede eliminar", domain.ErrForbidden)
	}
	removed := accounts[idx]
	remaining := make([]entity.Account, 0, len(accounts)-1)
	remaining = append(remaining, accounts[:idx]...)
	remaining = append(remaining, accounts[idx+1:]...)
	uc.store.SaveAccounts(ctx, remaining)

	uc.log.Info().Str("account_id", id).Str("username", removed.Username).Msg("cuenta eliminada")
	return nil
}

// SetAdminAddress asigna la dirección del ledger al admin. ErrInvalidAddress si no es una dirección hex.
func (uc *AccountUseCase) SetAdminAddress(ctx context.Context, address string) (*dto.AccountResponse, error) {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, address)
	}
	address = common.HexToAddress(address).Hex()

	uc.mu.Lock()
	defer uc.mu.Unlock()

	accounts := uc.store.LoadAccounts(ctx)
	if other, taken := entity.FindAccountByAddress(accounts, address); taken && !other.IsAdmin() {
		return nil, fmt.Errorf("%w: dirección %s asignada a %s", domain.ErrDuplicate, address, other.Username)
	}
	var updated *entity.Account
	for i := range accounts {
		if accounts[i].IsAdmin() {
			accounts[i].ChainAddress = address
			updated = &accounts[i]
			break
		}
	}
	if updated == nil {
		return nil, domain.ErrUserNotFound
	}
	uc.store.SaveAccounts(ctx, accounts)

	uc.log.Info().Str("address", address).Msg("dirección del admin actualizada")
	out := views.ToAccountResponse(*updated)
	return &out, nil
}
