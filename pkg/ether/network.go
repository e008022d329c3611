package ether

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseNetworkID acepta "0xaa36a7" o "11155111".
func ParseNetworkID(s string) (*big.Int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	n := new(big.Int)
	var ok bool
	if strings.HasPrefix(s, "0x") {
		_, ok = n.SetString(s[2:], 16)
	} else {
		_, ok = n.SetString(s, 10)
	}
	if !ok || n.Sign() <= 0 {
		return nil, fmt.Errorf("ether: id de red inválido %q", s)
	}
	return n, nil
}

// FormatNetworkID devuelve el id en hex minúscula con prefijo 0x.
func FormatNetworkID(id *big.Int) string {
	if id == nil {
		return ""
	}
	return hexutil.EncodeBig(id)
}

// NormalizeNetworkID deja cualquier representación válida en la forma canónica hex.
func NormalizeNetworkID(s string) (string, error) {
	id, err := ParseNetworkID(s)
	if err != nil {
		return "", err
	}
	return FormatNetworkID(id), nil
}
