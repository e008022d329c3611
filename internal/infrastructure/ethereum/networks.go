package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/pkg/ether"
)

// Ledger conexión a una red: id de cadena, recibos y binding del contrato.
type Ledger interface {
	ChainID(ctx context.Context) (*big.Int, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	Products(address common.Address) (ProductsContract, error)
	Close()
}

// DialFunc abre un Ledger contra un endpoint JSON-RPC.
type DialFunc func(ctx context.Context, rawURL string) (Ledger, error)

// clientLedger Ledger sobre ethclient.
type clientLedger struct {
	*ethclient.Client
}

// DialLedger conecta por JSON-RPC (http, ws o ipc).
func DialLedger(ctx context.Context, rawURL string) (Ledger, error) {
	c, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return &clientLedger{Client: c}, nil
}

func (l *clientLedger) Products(address common.Address) (ProductsContract, error) {
	return NewProductsChain(address, l.Client)
}

// Networks red seleccionada por la wallet y endpoints disponibles.
// Cambiar a una red sin endpoint es "red no soportada".
type Networks struct {
	mu        sync.Mutex
	endpoints map[string]string
	current   string
	dial      DialFunc
	conns     map[string]Ledger
}

// NewNetworks endpoints: id de red (hex o decimal) -> URL. initial es la red seleccionada al arrancar.
func NewNetworks(endpoints map[string]string, initial string, dial DialFunc) (*Networks, error) {
	if dial == nil {
		dial = DialLedger
	}
	n := &Networks{endpoints: map[string]string{}, dial: dial, conns: map[string]Ledger{}}
	for id, url := range endpoints {
		norm, err := ether.NormalizeNetworkID(id)
		if err != nil {
			return nil, err
		}
		n.endpoints[norm] = url
	}
	if initial != "" {
		norm, err := ether.NormalizeNetworkID(initial)
		if err != nil {
			return nil, err
		}
		n.current = norm
	}
	if _, ok := n.endpoints[n.current]; !ok {
		// la wallet arranca en la primera red conocida
		n.current = ""
		if ids := n.Supported(); len(ids) > 0 {
			n.current = ids[0]
		}
	}
	return n, nil
}

// Current red seleccionada ("" si no hay ninguna).
func (n *Networks) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Supported ids de red con endpoint, ordenados.
func (n *Networks) Supported() []string {
	ids := make([]string, 0, len(n.endpoints))
	for id := range n.endpoints {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Switch selecciona otra red. ErrWrongNetwork si no hay endpoint para ella.
func (n *Networks) Switch(networkID string) error {
	norm, err := ether.NormalizeNetworkID(networkID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWrongNetwork, err)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.endpoints[norm]; !ok {
		return fmt.Errorf("%w: red %s no soportada", domain.ErrWrongNetwork, norm)
	}
	n.current = norm
	return nil
}

// Ledger conexión de la red actual; se abre en el primer uso.
func (n *Networks) Ledger(ctx context.Context) (Ledger, string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == "" {
		return nil, "", fmt.Errorf("%w: no hay endpoints de red configurados", domain.ErrWalletUnavailable)
	}
	if l, ok := n.conns[n.current]; ok {
		return l, n.current, nil
	}
	l, err := n.dial(ctx, n.endpoints[n.current])
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrWalletUnavailable, err)
	}
	n.conns[n.current] = l
	return l, n.current, nil
}

// Close cierra todas las conexiones abiertas.
func (n *Networks) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, l := range n.conns {
		l.Close()
		delete(n.conns, id)
	}
}

func sameNetwork(a, b string) bool { return strings.EqualFold(a, b) }
