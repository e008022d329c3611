package ethereum

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"testing"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testContract = common.HexToAddress("0x00000000000000000000000000000000000c0de1")
	testOwner    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	testSupplier = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func parsedABI(t *testing.T) *abi.ABI {
	t.Helper()
	parsed, err := ProductsChainMetaData.GetAbi()
	require.NoError(t, err)
	return parsed
}

// fakeCaller responde eth_call según el selector. Los métodos no usados quedan en la interfaz embebida.
type fakeCaller struct {
	bind.ContractBackend
	abi     *abi.ABI
	outputs map[string][]byte
}

func (f *fakeCaller) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeCaller) CallContract(_ context.Context, call geth.CallMsg, _ *big.Int) ([]byte, error) {
	for name, m := range f.abi.Methods {
		if bytes.Equal(call.Data[:4], m.ID) {
			out, ok := f.outputs[name]
			if !ok {
				return nil, fmt.Errorf("execution reverted: %s", name)
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("selector desconocido")
}

func productAddedLog(t *testing.T, id int64, owner common.Address) *types.Log {
	t.Helper()
	ev := parsedABI(t).Events["ProductAdded"]
	data, err := ev.Inputs.NonIndexed().Pack("0xmeta", big.NewInt(10), big.NewInt(5))
	require.NoError(t, err)
	return &types.Log{
		Address: testContract,
		Topics:  []common.Hash{ev.ID, common.BigToHash(big.NewInt(id)), common.BytesToHash(owner.Bytes())},
		Data:    data,
	}
}

func productTransferredLog(t *testing.T, id int64, from, to common.Address, role string) *types.Log {
	t.Helper()
	ev := parsedABI(t).Events["ProductTransferred"]
	data, err := ev.Inputs.NonIndexed().Pack(role, uint64(1700000000))
	require.NoError(t, err)
	return &types.Log{
		Address: testContract,
		Topics: []common.Hash{
			ev.ID, common.BigToHash(big.NewInt(id)),
			common.BytesToHash(from.Bytes()), common.BytesToHash(to.Bytes()),
		},
		Data: data,
	}
}

func noSendOpts(t *testing.T) *bind.TransactOpts {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	opts, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(11155111))
	require.NoError(t, err)
	opts.NoSend = true
	opts.GasPrice = big.NewInt(1)
	opts.GasLimit = 100000
	opts.Nonce = big.NewInt(0)
	return opts
}

func TestProductsChain_AddProductCodificaLlamada(t *testing.T) {
	c, err := NewProductsChain(testContract, nil)
	require.NoError(t, err)

	tx, err := c.AddProduct(noSendOpts(t), "0xdigest", big.NewInt(1e18), big.NewInt(5))
	require.NoError(t, err)

	m := parsedABI(t).Methods["addProduct"]
	assert.Equal(t, m.ID, tx.Data()[:4])
	args, err := m.Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, "0xdigest", args[0])
	assert.Equal(t, "1000000000000000000", args[1].(*big.Int).String())
	assert.Equal(t, int64(5), args[2].(*big.Int).Int64())
	assert.Equal(t, testContract, *tx.To())
}

func TestProductsChain_TransferProductCodificaLlamada(t *testing.T) {
	c, err := NewProductsChain(testContract, nil)
	require.NoError(t, err)

	tx, err := c.TransferProduct(noSendOpts(t), big.NewInt(7), testSupplier, "TO_SUPPLIER")
	require.NoError(t, err)

	m := parsedABI(t).Methods["transferProduct"]
	assert.Equal(t, m.ID, tx.Data()[:4])
	args, err := m.Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, int64(7), args[0].(*big.Int).Int64())
	assert.Equal(t, testSupplier, args[1])
	assert.Equal(t, "TO_SUPPLIER", args[2])
}

func TestProductsChain_Lecturas(t *testing.T) {
	parsed := parsedABI(t)
	product := ProductTuple{
		Id: big.NewInt(7), Owner: testOwner, Supplier: testSupplier, Consumer: common.Address{},
		Ownertx: "0xo", Suppliertx: "0xs", MetaHash: "0xmeta", Price: big.NewInt(10), Qty: big.NewInt(5),
		Approved: true, CreatedAt: 100, UpdatedAt: 200,
	}
	productOut, err := parsed.Methods["getProduct"].Outputs.Pack(product)
	require.NoError(t, err)
	history := []HistoryEntry{{From: testOwner, To: testSupplier, Role: "TO_SUPPLIER", Timestamp: 150}}
	historyOut, err := parsed.Methods["getHistory"].Outputs.Pack(history)
	require.NoError(t, err)
	nextOut, err := parsed.Methods["nextProductId"].Outputs.Pack(big.NewInt(8))
	require.NoError(t, err)

	backend := &fakeCaller{abi: parsed, outputs: map[string][]byte{
		"getProduct": productOut, "getHistory": historyOut, "nextProductId": nextOut,
	}}
	c, err := NewProductsChain(testContract, backend)
	require.NoError(t, err)
	opts := &bind.CallOpts{Context: context.Background()}

	got, err := c.GetProduct(opts, big.NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, product, got)

	entries, err := c.GetHistory(opts, big.NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, history, entries)

	next, err := c.NextProductID(opts)
	require.NoError(t, err)
	assert.Equal(t, int64(8), next.Int64())
}

func TestProductsChain_ParseEventos(t *testing.T) {
	c, err := NewProductsChain(testContract, nil)
	require.NoError(t, err)

	added, err := c.ParseProductAdded(*productAddedLog(t, 7, testOwner))
	require.NoError(t, err)
	assert.Equal(t, int64(7), added.Id.Int64())
	assert.Equal(t, testOwner, added.Owner)
	assert.Equal(t, "0xmeta", added.MetaHash)
	assert.Equal(t, int64(5), added.Qty.Int64())

	moved, err := c.ParseProductTransferred(*productTransferredLog(t, 7, testOwner, testSupplier, "TO_SUPPLIER"))
	require.NoError(t, err)
	assert.Equal(t, testSupplier, moved.To)
	assert.Equal(t, "TO_SUPPLIER", moved.Role)
	assert.Equal(t, uint64(1700000000), moved.Timestamp)

	_, err = c.ParseProductAdded(*productTransferredLog(t, 7, testOwner, testSupplier, "TO_SUPPLIER"))
	assert.Error(t, err, "firma de evento distinta")
}
