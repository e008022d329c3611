package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"iter"
	"math/big"
	"strings"
	"time"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/jhoicas/Trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/lifecycle"
	"github.com/jhoicas/Trazabilidad-api/pkg/ether"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
)

var _ ports.ChainGateway = (*Gateway)(nil)

// ContractBookSource libreta de direcciones del contrato por red.
type ContractBookSource interface {
	LoadContractBook(ctx context.Context) entity.ContractBook
}

// Gateway implementa ports.ChainGateway sobre el contrato ProductsChain.
type Gateway struct {
	networks     *Networks
	book         ContractBookSource
	keys         KeyRing
	approver     Approver
	pollInterval time.Duration
	log          *logger.Logger
}

// GatewayOption ajusta el gateway.
type GatewayOption func(*Gateway)

// WithPollInterval intervalo de consulta de recibos (por defecto 2s).
func WithPollInterval(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.pollInterval = d }
}

// NewGateway construye el gateway.
func NewGateway(networks *Networks, book ContractBookSource, keys KeyRing, approver Approver, log *logger.Logger, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		networks:     networks,
		book:         book,
		keys:         keys,
		approver:     approver,
		pollInterval: 2 * time.Second,
		log:          log.Component("chain"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// session red actual con su contrato.
type session struct {
	ledger   Ledger
	network  string
	chainID  *big.Int
	contract ProductsContract
}

func (g *Gateway) session(ctx context.Context) (*session, error) {
	ledger, network, err := g.networks.Ledger(ctx)
	if err != nil {
		return nil, err
	}
	addr, ok := g.book.LoadContractBook(ctx).Lookup(network)
	if !ok {
		return nil, fmt.Errorf("%w: red %s", domain.ErrContractUnset, network)
	}
	if !common.IsHexAddress(addr) {
		return nil, fmt.Errorf("%w: contrato %q", domain.ErrInvalidAddress, addr)
	}
	chainID, err := ledger.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWalletUnavailable, err)
	}
	if got := ether.FormatNetworkID(chainID); !sameNetwork(got, network) {
		return nil, fmt.Errorf("%w: el endpoint de %s responde como %s", domain.ErrWrongNetwork, network, got)
	}
	contract, err := ledger.Products(common.HexToAddress(addr))
	if err != nil {
		return nil, fmt.Errorf("bind contract: %w", err)
	}
	return &session{ledger: ledger, network: network, chainID: chainID, contract: contract}, nil
}

// ─── Wallet y red ─────────────────────────────────────────────────────────────

func (g *Gateway) Connect(ctx context.Context, signer entity.Account) (ports.Connection, error) {
	key, err := g.keys.Key(signer)
	if err != nil {
		return ports.Connection{}, err
	}
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()
	if err := g.approver.ApproveConnect(ctx, address); err != nil {
		return ports.Connection{}, err
	}
	ledger, network, err := g.networks.Ledger(ctx)
	if err != nil {
		return ports.Connection{}, err
	}
	chainID, err := ledger.ChainID(ctx)
	if err != nil {
		return ports.Connection{}, fmt.Errorf("%w: %v", domain.ErrWalletUnavailable, err)
	}
	if got := ether.FormatNetworkID(chainID); !sameNetwork(got, network) {
		network = got
	}
	return ports.Connection{Address: address, NetworkID: network}, nil
}

func (g *Gateway) EnsureNetwork(ctx context.Context, expected string) (string, error) {
	want, err := ether.NormalizeNetworkID(expected)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrWrongNetwork, err)
	}
	current := g.networks.Current()
	if !sameNetwork(current, want) {
		if err := g.approver.ApproveNetworkSwitch(ctx, current, want); err != nil {
			return "", fmt.Errorf("%w: cambio a %s rechazado", domain.ErrWrongNetwork, want)
		}
		if err := g.networks.Switch(want); err != nil {
			return "", err
		}
		g.log.Info().Str("from", current).Str("to", want).Msg("red cambiada")
	}
	ledger, network, err := g.networks.Ledger(ctx)
	if err != nil {
		return "", err
	}
	chainID, err := ledger.ChainID(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrWalletUnavailable, err)
	}
	if got := ether.FormatNetworkID(chainID); !sameNetwork(got, want) {
		return "", fmt.Errorf("%w: el endpoint de %s responde como %s", domain.ErrWrongNetwork, network, got)
	}
	return want, nil
}

// ─── Transacciones ────────────────────────────────────────────────────────────

func (g *Gateway) Register(ctx context.Context, signer entity.Account, metaDigest string, priceWei *big.Int, quantity uint64) (ports.Registration, error) {
	if priceWei == nil || priceWei.Sign() < 0 || quantity == 0 {
		return ports.Registration{}, fmt.Errorf("%w: precio o cantidad inválidos", domain.ErrInvalidInput)
	}
	s, opts, err := g.prepare(ctx, signer, TxRequest{
		Method:  "addProduct",
		Summary: fmt.Sprintf("registrar %s precio %s ETH cantidad %d", metaDigest, ether.FormatEther(priceWei), quantity),
	})
	if err != nil {
		return ports.Registration{}, err
	}
	tx, err := s.contract.AddProduct(opts, metaDigest, priceWei, new(big.Int).SetUint64(quantity))
	if err != nil {
		return ports.Registration{}, normalizeSendError(err)
	}
	g.log.Info().Str("tx", tx.Hash().Hex()).Str("network", s.network).Msg("addProduct enviado")
	return g.awaitRegistration(ctx, s, tx.Hash())
}

func (g *Gateway) Transfer(ctx context.Context, signer entity.Account, onChainID uint64, to string, tag lifecycle.RoleTag) (ports.TransferReceipt, error) {
	if !common.IsHexAddress(to) {
		return ports.TransferReceipt{}, fmt.Errorf("%w: destino %q", domain.ErrInvalidAddress, to)
	}
	s, opts, err := g.prepare(ctx, signer, TxRequest{
		Method:  "transferProduct",
		Summary: fmt.Sprintf("producto #%d a %s (%s)", onChainID, to, tag),
	})
	if err != nil {
		return ports.TransferReceipt{}, err
	}
	id := new(big.Int).SetUint64(onChainID)
	current, err := s.contract.GetProduct(&bind.CallOpts{Context: ctx}, id)
	if err != nil {
		return ports.TransferReceipt{}, normalizeCallError(err)
	}
	if current.Owner == (common.Address{}) {
		return ports.TransferReceipt{}, fmt.Errorf("%w: id %d", domain.ErrNotRegistered, onChainID)
	}
	tx, err := s.contract.TransferProduct(opts, id, common.HexToAddress(to), string(tag))
	if err != nil {
		return ports.TransferReceipt{}, normalizeSendError(err)
	}
	g.log.Info().Str("tx", tx.Hash().Hex()).Uint64("on_chain_id", onChainID).Str("tag", string(tag)).Msg("transferProduct enviado")
	return g.awaitTransfer(ctx, s, tx.Hash())
}

// prepare resuelve llave, contrato y aprobación del usuario, en ese orden.
func (g *Gateway) prepare(ctx context.Context, signer entity.Account, req TxRequest) (*session, *bind.TransactOpts, error) {
	key, err := g.keys.Key(signer)
	if err != nil {
		return nil, nil, err
	}
	s, err := g.session(ctx)
	if err != nil {
		return nil, nil, err
	}
	req.From = crypto.PubkeyToAddress(key.PublicKey).Hex()
	req.Network = s.network
	if err := g.approver.ApproveTransaction(ctx, req); err != nil {
		return nil, nil, err
	}
	opts, err := transactOpts(ctx, key, s.chainID)
	if err != nil {
		return nil, nil, err
	}
	return s, opts, nil
}

func transactOpts(ctx context.Context, key *ecdsa.PrivateKey, chainID *big.Int) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWalletUnavailable, err)
	}
	opts.Context = ctx
	return opts, nil
}

func (g *Gateway) AwaitRegistration(ctx context.Context, txRef string) (ports.Registration, error) {
	hash, err := parseTxRef(txRef)
	if err != nil {
		return ports.Registration{}, err
	}
	s, err := g.session(ctx)
	if err != nil {
		return ports.Registration{}, &domain.TxError{TxRef: txRef, Err: err}
	}
	return g.awaitRegistration(ctx, s, hash)
}

func (g *Gateway) AwaitTransfer(ctx context.Context, txRef string) (ports.TransferReceipt, error) {
	hash, err := parseTxRef(txRef)
	if err != nil {
		return ports.TransferReceipt{}, err
	}
	s, err := g.session(ctx)
	if err != nil {
		return ports.TransferReceipt{}, &domain.TxError{TxRef: txRef, Err: err}
	}
	return g.awaitTransfer(ctx, s, hash)
}

// awaitRegistration espera el recibo y obtiene el id asignado: primero del evento ProductAdded,
// y solo si no aparece, del contador nextProductId en el bloque del recibo.
func (g *Gateway) awaitRegistration(ctx context.Context, s *session, hash common.Hash) (ports.Registration, error) {
	ref := hash.Hex()
	receipt, err := g.waitReceipt(ctx, s.ledger, hash)
	if err != nil {
		return ports.Registration{}, &domain.TxError{TxRef: ref, Err: fmt.Errorf("%w: %v", domain.ErrTxPending, err)}
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return ports.Registration{}, &domain.TxError{TxRef: ref, Err: domain.ErrTxReverted}
	}
	for _, l := range receipt.Logs {
		if l == nil || l.Address != s.contract.Address() {
			continue
		}
		ev, err := s.contract.ParseProductAdded(*l)
		if err != nil || ev.Id == nil || !ev.Id.IsUint64() {
			continue
		}
		return ports.Registration{TxRef: ref, AssignedID: ev.Id.Uint64()}, nil
	}

	next, err := s.contract.NextProductID(&bind.CallOpts{Context: ctx, BlockNumber: receipt.BlockNumber})
	if err != nil || next == nil || next.Sign() <= 0 || !next.IsUint64() {
		g.log.Warn().Err(err).Str("tx", ref).Msg("discrepancia: registro confirmado sin evento ni contador legible")
		return ports.Registration{}, &domain.TxError{TxRef: ref, Err: fmt.Errorf("%w: id asignado desconocido", domain.ErrTxPending)}
	}
	id := next.Uint64() - 1
	g.log.Warn().Str("tx", ref).Uint64("on_chain_id", id).Msg("registro sin evento ProductAdded; id tomado del contador")
	return ports.Registration{TxRef: ref, AssignedID: id}, nil
}

func (g *Gateway) awaitTransfer(ctx context.Context, s *session, hash common.Hash) (ports.TransferReceipt, error) {
	ref := hash.Hex()
	receipt, err := g.waitReceipt(ctx, s.ledger, hash)
	if err != nil {
		return ports.TransferReceipt{}, &domain.TxError{TxRef: ref, Err: fmt.Errorf("%w: %v", domain.ErrTxPending, err)}
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return ports.TransferReceipt{}, &domain.TxError{TxRef: ref, Err: domain.ErrTxReverted}
	}
	for _, l := range receipt.Logs {
		if l == nil || l.Address != s.contract.Address() {
			continue
		}
		if ev, err := s.contract.ParseProductTransferred(*l); err == nil {
			g.log.Info().Str("tx", ref).Str("id", ev.Id.String()).Str("to", ev.To.Hex()).Str("role", ev.Role).Msg("traspaso confirmado")
			break
		}
	}
	return ports.TransferReceipt{TxRef: ref}, nil
}

// waitReceipt consulta el recibo hasta que exista o se cancele ctx. Nunca reenvía.
func (g *Gateway) waitReceipt(ctx context.Context, ledger Ledger, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()
	for {
		receipt, err := ledger.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, geth.NotFound) {
			g.log.Debug().Err(err).Str("tx", hash.Hex()).Msg("error consultando recibo; se reintenta")
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// ─── Lecturas ─────────────────────────────────────────────────────────────────

func (g *Gateway) ReadProduct(ctx context.Context, onChainID uint64) (entity.ProductSnapshot, error) {
	s, err := g.session(ctx)
	if err != nil {
		return entity.ProductSnapshot{}, err
	}
	p, err := s.contract.GetProduct(&bind.CallOpts{Context: ctx}, new(big.Int).SetUint64(onChainID))
	if err != nil {
		return entity.ProductSnapshot{}, normalizeCallError(err)
	}
	if p.Owner == (common.Address{}) {
		return entity.ProductSnapshot{}, fmt.Errorf("%w: id %d", domain.ErrNotRegistered, onChainID)
	}
	return toSnapshot(p), nil
}

func (g *Gateway) ReadHistory(ctx context.Context, onChainID uint64) iter.Seq2[entity.TransferEvent, error] {
	return func(yield func(entity.TransferEvent, error) bool) {
		s, err := g.session(ctx)
		if err != nil {
			yield(entity.TransferEvent{}, err)
			return
		}
		entries, err := s.contract.GetHistory(&bind.CallOpts{Context: ctx}, new(big.Int).SetUint64(onChainID))
		if err != nil {
			yield(entity.TransferEvent{}, normalizeCallError(err))
			return
		}
		for _, e := range entries {
			ev := entity.TransferEvent{
				From:      e.From.Hex(),
				To:        e.To.Hex(),
				Role:      e.Role,
				Timestamp: time.Unix(int64(e.Timestamp), 0).UTC(),
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}

func toSnapshot(p ProductTuple) entity.ProductSnapshot {
	snap := entity.ProductSnapshot{
		Owner:      p.Owner.Hex(),
		Supplier:   p.Supplier.Hex(),
		Consumer:   p.Consumer.Hex(),
		OwnerTx:    p.Ownertx,
		SupplierTx: p.Suppliertx,
		MetaHash:   p.MetaHash,
		PriceWei:   p.Price,
		Approved:   p.Approved,
		CreatedAt:  time.Unix(int64(p.CreatedAt), 0).UTC(),
		UpdatedAt:  time.Unix(int64(p.UpdatedAt), 0).UTC(),
	}
	if p.Id != nil && p.Id.IsUint64() {
		snap.ID = p.Id.Uint64()
	}
	if p.Qty != nil && p.Qty.IsUint64() {
		snap.Quantity = p.Qty.Uint64()
	}
	if snap.PriceWei == nil {
		snap.PriceWei = new(big.Int)
	}
	return snap
}

// ─── Errores ──────────────────────────────────────────────────────────────────

func parseTxRef(txRef string) (common.Hash, error) {
	raw := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(txRef)), "0x")
	if len(raw) != 2*common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: referencia de transacción %q", domain.ErrInvalidInput, txRef)
	}
	for _, c := range raw {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return common.Hash{}, fmt.Errorf("%w: referencia de transacción %q", domain.ErrInvalidInput, txRef)
		}
	}
	return common.HexToHash(raw), nil
}

// normalizeSendError clasifica un fallo al enviar: revert en la estimación -> ErrTxReverted,
// cancelación -> ErrUserRejected, el resto -> ErrTxRejected. No hay referencia de transacción.
func normalizeSendError(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", domain.ErrUserRejected, err)
	case isRevert(err):
		return fmt.Errorf("%w: %v", domain.ErrTxReverted, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrTxRejected, err)
	}
}

func normalizeCallError(err error) error {
	switch {
	case errors.Is(err, bind.ErrNoCode):
		return fmt.Errorf("%w: no hay contrato en la dirección configurada", domain.ErrContractUnset)
	case isRevert(err):
		return fmt.Errorf("%w: %v", domain.ErrNotRegistered, err)
	default:
		return fmt.Errorf("leer ledger: %w", err)
	}
}

func isRevert(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "execution reverted")
}
