package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/localstore"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
)

const sepolia = "0xaa36a7"

// walletChain solo implementa Connect; el resto no se usa aquí.
type walletChain struct {
	ports.ChainGateway
	conn ports.Connection
	err  error
}

func (w walletChain) Connect(context.Context, entity.Account) (ports.Connection, error) {
	return w.conn, w.err
}

func TestSetContract_NormalizaRedYDireccion(t *testing.T) {
	store := newStore(t, localstore.Options{})
	uc := NewNetworkUseCase(store, walletChain{}, sepolia, logger.Nop())
	ctx := context.Background()

	out, err := uc.SetContract(ctx, "11155111", "0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae")
	require.NoError(t, err)
	assert.Equal(t, "0xde0B295669a9FD93d5F28D9Ec85E40f4cb697BAe", out.Contracts[sepolia])

	addr, ok := store.LoadContractBook(ctx).Lookup(sepolia)
	require.True(t, ok)
	assert.Equal(t, out.Contracts[sepolia], addr)

	// Vacío quita la entrada.
	out, err = uc.SetContract(ctx, sepolia, "  ")
	require.NoError(t, err)
	assert.Empty(t, out.Contracts)
	assert.Empty(t, uc.Contracts(ctx).Contracts)
}

func TestSetContract_Invalidos(t *testing.T) {
	uc := NewNetworkUseCase(newStore(t, localstore.Options{}), walletChain{}, sepolia, logger.Nop())
	ctx := context.Background()

	_, err := uc.SetContract(ctx, "red-x", "0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.SetContract(ctx, sepolia, "0x1234")
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)
}

func TestConnect_IncluyeContratoDeLaRed(t *testing.T) {
	store := newStore(t, localstore.Options{SeedNetwork: sepolia, SeedContract: "0x00000000000000000000000000000000000000cc"})
	chain := walletChain{conn: ports.Connection{Address: "0x00000000000000000000000000000000000000b1", NetworkID: sepolia}}
	uc := NewNetworkUseCase(store, chain, sepolia, logger.Nop())

	out, err := uc.Connect(context.Background(), entity.Account{Username: "prov"})
	require.NoError(t, err)
	assert.Equal(t, chain.conn.Address, out.Address)
	assert.Equal(t, sepolia, out.NetworkID)
	assert.Equal(t, sepolia, out.ExpectedNetwork)
	assert.Equal(t, "0x00000000000000000000000000000000000000cc", out.Contract)
}

func TestConnect_OtraRedSinContrato(t *testing.T) {
	store := newStore(t, localstore.Options{SeedNetwork: sepolia, SeedContract: "0x00000000000000000000000000000000000000cc"})
	chain := walletChain{conn: ports.Connection{Address: "0x00000000000000000000000000000000000000b1", NetworkID: "0x1"}}
	uc := NewNetworkUseCase(store, chain, sepolia, logger.Nop())

	out, err := uc.Connect(context.Background(), entity.Account{Username: "prov"})
	require.NoError(t, err)
	assert.Empty(t, out.Contract)
}

func TestConnect_Rechazada(t *testing.T) {
	uc := NewNetworkUseCase(newStore(t, localstore.Options{}), walletChain{err: domain.ErrUserRejected}, sepolia, logger.Nop())
	_, err := uc.Connect(context.Background(), entity.Account{Username: "prov"})
	assert.ErrorIs(t, err, domain.ErrUserRejected)
}
