package entity

import (
	"strings"
	"time"
)

// AdminAccountID id fijo de la única cuenta admin.
const (
	AdminAccountID = "u-admin"
	AdminUsername  = "admin"
)

// Account cuenta local de un usuario con su dirección en el ledger.
// Existe exactamente un admin y nunca se elimina.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Role         Role      `json:"role"`
	ChainAddress string    `json:"address,omitempty"`
	PasswordHash string    `json:"passwordHash,omitempty"` // bcrypt, nunca plano
	PrivateKey   string    `json:"privateKey,omitempty"`   // hex secp256k1 sin 0x; firma las transacciones de la cuenta
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin indica si la cuenta es el admin.
func (a Account) IsAdmin() bool { return a.Role == RoleAdmin }

// HasAddress indica si la cuenta tiene dirección asignada.
func (a Account) HasAddress() bool { return strings.TrimSpace(a.ChainAddress) != "" }

// SameAddress compara direcciones hex sin distinguir mayúsculas.
func SameAddress(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

// FindAccount busca por id.
func FindAccount(accounts []Account, id string) (Account, bool) {
	for _, a := range accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

// FindAccountByUsername busca por username exacto.
func FindAccountByUsername(accounts []Account, username string) (Account, bool) {
	for _, a := range accounts {
		if a.Username == username {
			return a, true
		}
	}
	return Account{}, false
}

// FindAccountByAddress busca por dirección (mayúsculas indiferentes).
func FindAccountByAddress(accounts []Account, address string) (Account, bool) {
	for _, a := range accounts {
		if SameAddress(a.ChainAddress, address) {
			return a, true
		}
	}
	return Account{}, false
}
