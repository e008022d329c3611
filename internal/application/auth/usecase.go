package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/views"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Trazabilidad-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase login contra las cuentas del almacén local.
type AuthUseCase struct {
	store  repository.RecordStore
	jwtCfg JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(store repository.RecordStore, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{store: store, jwtCfg: jwtCfg}
}

// Login verifica usuario/contraseña, genera JWT y retorna token + cuenta.
// Usuario inexistente y contraseña incorrecta responden igual.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	account, ok := entity.FindAccountByUsername(uc.store.LoadAccounts(ctx), username)
	if !ok || account.PasswordHash == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, account.ID, account.Username, account.Role.String(), uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:   token,
		Account: views.ToAccountResponse(account),
	}, nil
}

// Resolve cuenta vigente del token. Una cuenta borrada después de emitir el token ya no autentica.
func (uc *AuthUseCase) Resolve(ctx context.Context, userID string) (entity.Account, error) {
	account, ok := entity.FindAccount(uc.store.LoadAccounts(ctx), userID)
	if !ok {
		return entity.Account{}, domain.ErrUnauthorized
	}
	return account, nil
}
