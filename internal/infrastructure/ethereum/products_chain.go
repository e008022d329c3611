package ethereum

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ProductTuple struct ProductsChain.Product tal como lo devuelve getProduct.
type ProductTuple struct {
	Id         *big.Int
	Owner      common.Address
	Supplier   common.Address
	Consumer   common.Address
	Ownertx    string
	Suppliertx string
	MetaHash   string
	Price      *big.Int
	Qty        *big.Int
	Approved   bool
	CreatedAt  uint64
	UpdatedAt  uint64
}

// HistoryEntry struct ProductsChain.Transfer.
type HistoryEntry struct {
	From      common.Address
	To        common.Address
	Role      string
	Timestamp uint64
}

// ProductAdded evento emitido por addProduct.
type ProductAdded struct {
	Id       *big.Int
	Owner    common.Address
	MetaHash string
	Price    *big.Int
	Qty      *big.Int
	Raw      types.Log
}

// ProductTransferred evento emitido por transferProduct.
type ProductTransferred struct {
	Id        *big.Int
	From      common.Address
	To        common.Address
	Role      string
	Timestamp uint64
	Raw       types.Log
}

// ProductsContract operaciones del contrato que usa el gateway.
type ProductsContract interface {
	Address() common.Address
	AddProduct(opts *bind.TransactOpts, metaHash string, price, qty *big.Int) (*types.Transaction, error)
	TransferProduct(opts *bind.TransactOpts, id *big.Int, to common.Address, role string) (*types.Transaction, error)
	GetProduct(opts *bind.CallOpts, id *big.Int) (ProductTuple, error)
	GetHistory(opts *bind.CallOpts, id *big.Int) ([]HistoryEntry, error)
	NextProductID(opts *bind.CallOpts) (*big.Int, error)
	ParseProductAdded(log types.Log) (*ProductAdded, error)
	ParseProductTransferred(log types.Log) (*ProductTransferred, error)
}

var _ ProductsContract = (*ProductsChain)(nil)

// ProductsChain binding escrito a mano sobre bind.BoundContract.
type ProductsChain struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewProductsChain enlaza el contrato desplegado en address.
func NewProductsChain(address common.Address, backend bind.ContractBackend) (*ProductsChain, error) {
	parsed, err := ProductsChainMetaData.GetAbi()
	if err != nil {
		return nil, err
	}
	if parsed == nil {
		return nil, errors.New("GetABI returned nil")
	}
	return &ProductsChain{
		address:  address,
		contract: bind.NewBoundContract(address, *parsed, backend, backend, backend),
	}, nil
}

func (c *ProductsChain) Address() common.Address { return c.address }

func (c *ProductsChain) AddProduct(opts *bind.TransactOpts, metaHash string, price, qty *big.Int) (*types.Transaction, error) {
	return c.contract.Transact(opts, "addProduct", metaHash, price, qty)
}

func (c *ProductsChain) TransferProduct(opts *bind.TransactOpts, id *big.Int, to common.Address, role string) (*types.Transaction, error) {
	return c.contract.Transact(opts, "transferProduct", id, to, role)
}

func (c *ProductsChain) GetProduct(opts *bind.CallOpts, id *big.Int) (ProductTuple, error) {
	var out []interface{}
	if err := c.contract.Call(opts, &out, "getProduct", id); err != nil {
		return ProductTuple{}, err
	}
	return *abi.ConvertType(out[0], new(ProductTuple)).(*ProductTuple), nil
}

func (c *ProductsChain) GetHistory(opts *bind.CallOpts, id *big.Int) ([]HistoryEntry, error) {
	var out []interface{}
	if err := c.contract.Call(opts, &out, "getHistory", id); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]HistoryEntry)).(*[]HistoryEntry), nil
}

func (c *ProductsChain) NextProductID(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	if err := c.contract.Call(opts, &out, "nextProductId"); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (c *ProductsChain) ParseProductAdded(log types.Log) (*ProductAdded, error) {
	ev := new(ProductAdded)
	if err := c.contract.UnpackLog(ev, "ProductAdded", log); err != nil {
		return nil, err
	}
	ev.Raw = log
	return ev, nil
}

func (c *ProductsChain) ParseProductTransferred(log types.Log) (*ProductTransferred, error) {
	ev := new(ProductTransferred)
	if err := c.contract.UnpackLog(ev, "ProductTransferred", log); err != nil {
		return nil, err
	}
	ev.Raw = log
	return ev, nil
}
