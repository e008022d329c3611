package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Trazabilidad-api/pkg/ether"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
)

// NetworkUseCase libreta de contratos por red y conexión de la wallet.
type NetworkUseCase struct {
	store    repository.RecordStore
	chain    ports.ChainGateway
	expected string
	log      *logger.Logger
	mu       sync.Mutex
}

// NewNetworkUseCase construye el caso de uso. expected es la red esperada (hex).
func NewNetworkUseCase(store repository.RecordStore, chain ports.ChainGateway, expected string, log *logger.Logger) *NetworkUseCase {
	return &NetworkUseCase{store: store, chain: chain, expected: strings.ToLower(expected), log: log.Component("networks")}
}

// Contracts libreta completa.
func (uc *NetworkUseCase) Contracts(ctx context.Context) dto.ContractBookResponse {
	return dto.ContractBookResponse{Contracts: uc.store.LoadContractBook(ctx)}
}

// SetContract guarda la dirección del contrato para networkID. Una dirección vacía quita la entrada.
func (uc *NetworkUseCase) SetContract(ctx context.Context, networkID, address string) (dto.ContractBookResponse, error) {
	network, err := ether.NormalizeNetworkID(networkID)
	if err != nil {
		return dto.ContractBookResponse{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	address = strings.TrimSpace(address)
	if address != "" {
		if !common.IsHexAddress(address) {
			return dto.ContractBookResponse{}, fmt.Errorf("%w: contrato %q", domain.ErrInvalidAddress, address)
		}
		address = common.HexToAddress(address).Hex()
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	book := uc.store.LoadContractBook(ctx)
	if address == "" {
		delete(book, network)
	} else {
		book[network] = address
	}
	uc.store.SaveContractBook(ctx, book)

	uc.log.Info().Str("network", network).Str("contract", address).Msg("contrato actualizado")
	return dto.ContractBookResponse{Contracts: book}, nil
}

// Connect cuenta y red activas de la wallet de account, con el contrato de esa red si existe.
func (uc *NetworkUseCase) Connect(ctx context.Context, account entity.Account) (*dto.WalletResponse, error) {
	conn, err := uc.chain.Connect(ctx, account)
	if err != nil {
		return nil, err
	}
	out := &dto.WalletResponse{Address: conn.Address, NetworkID: conn.NetworkID, ExpectedNetwork: uc.expected}
	if addr, ok := uc.store.LoadContractBook(ctx).Lookup(conn.NetworkID); ok {
		out.Contract = addr
	}
	return out, nil
}
