package dto

import "time"

// LoginRequest entrada para login con usuario y contraseña.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token JWT y cuenta autenticada.
type LoginResponse struct {
	Token   string          `json:"token"`
	Account AccountResponse `json:"account"`
}

// CreateAccountRequest alta de cuenta por el admin. La llave se genera en el servidor.
type CreateAccountRequest struct {
	Username string `json:"username" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=4"`
	Role     string `json:"role" validate:"required,oneof=producer supplier consumer"`
}

// SetAddressRequest dirección del ledger para la cuenta admin.
type SetAddressRequest struct {
	Address string `json:"address" validate:"required"`
}

// AccountResponse salida de una cuenta (sin hash ni llave).
type AccountResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}
