// Package ethereum adaptador del ledger: binding del contrato ProductsChain sobre go-ethereum,
// selección de red, llaves de firma y el gateway que normaliza los errores al vocabulario de dominio.
package ethereum

import (
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
)

// ProductsChainMetaData ABI del contrato ProductsChain.
var ProductsChainMetaData = &bind.MetaData{
	ABI: `[
  {"type":"function","name":"addProduct","stateMutability":"nonpayable",
   "inputs":[{"name":"metaHash","type":"string"},{"name":"price","type":"uint256"},{"name":"qty","type":"uint256"}],
   "outputs":[]},
  {"type":"function","name":"transferProduct","stateMutability":"nonpayable",
   "inputs":[{"name":"id","type":"uint256"},{"name":"to","type":"address"},{"name":"role","type":"string"}],
   "outputs":[]},
  {"type":"function","name":"getProduct","stateMutability":"view",
   "inputs":[{"name":"id","type":"uint256"}],
   "outputs":[{"name":"","type":"tuple","internalType":"struct ProductsChain.Product","components":[
     {"name":"id","type":"uint256"},
     {"name":"owner","type":"address"},
     {"name":"supplier","type":"address"},
     {"name":"consumer","type":"address"},
     {"name":"ownertx","type":"string"},
     {"name":"suppliertx","type":"string"},
     {"name":"metaHash","type":"string"},
     {"name":"price","type":"uint256"},
     {"name":"qty","type":"uint256"},
     {"name":"approved","type":"bool"},
     {"name":"createdAt","type":"uint64"},
     {"name":"updatedAt","type":"uint64"}]}]},
  {"type":"function","name":"getHistory","stateMutability":"view",
   "inputs":[{"name":"id","type":"uint256"}],
   "outputs":[{"name":"","type":"tuple[]","internalType":"struct ProductsChain.Transfer[]","components":[
     {"name":"from","type":"address"},
     {"name":"to","type":"address"},
     {"name":"role","type":"string"},
     {"name":"timestamp","type":"uint64"}]}]},
  {"type":"function","name":"nextProductId","stateMutability":"view",
   "inputs":[],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"event","name":"ProductAdded","anonymous":false,
   "inputs":[
     {"name":"id","type":"uint256","indexed":true},
     {"name":"owner","type":"address","indexed":true},
     {"name":"metaHash","type":"string","indexed":false},
     {"name":"price","type":"uint256","indexed":false},
     {"name":"qty","type":"uint256","indexed":false}]},
  {"type":"event","name":"ProductTransferred","anonymous":false,
   "inputs":[
     {"name":"id","type":"uint256","indexed":true},
     {"name":"from","type":"address","indexed":true},
     {"name":"to","type":"address","indexed":true},
     {"name":"role","type":"string","indexed":false},
     {"name":"timestamp","type":"uint64","indexed":false}]}
]`,
}
