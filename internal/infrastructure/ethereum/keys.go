package ethereum

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// KeyRing llave de firma de una cuenta.
type KeyRing interface {
	Key(account entity.Account) (*ecdsa.PrivateKey, error)
}

// AccountKeys usa la llave guardada en la propia cuenta.
type AccountKeys struct{}

// Key ErrWalletUnavailable si la cuenta no tiene llave; ErrInvalidAddress si la llave no corresponde a su dirección.
func (AccountKeys) Key(account entity.Account) (*ecdsa.PrivateKey, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(account.PrivateKey), "0x")
	if raw == "" {
		return nil, fmt.Errorf("%w: la cuenta %s no tiene llave", domain.ErrWalletUnavailable, account.Username)
	}
	key, err := crypto.HexToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: llave de %s ilegible", domain.ErrWalletUnavailable, account.Username)
	}
	if account.HasAddress() && !entity.SameAddress(crypto.PubkeyToAddress(key.PublicKey).Hex(), account.ChainAddress) {
		return nil, fmt.Errorf("%w: la llave de %s no corresponde a %s", domain.ErrInvalidAddress, account.Username, account.ChainAddress)
	}
	return key, nil
}

// NewAccountKey genera un par secp256k1. Devuelve la llave en hex (sin 0x) y la dirección con checksum.
func NewAccountKey() (privateHex, address string, err error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return "", "", err
	}
	return hex.EncodeToString(crypto.FromECDSA(key)), crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
}
