package dto

// RoleViewResponse proyección de productos para el panel de un rol.
// Solo se llenan las secciones del rol pedido.
type RoleViewResponse struct {
	Role string `json:"role"`

	// producer
	Pending   []ProductResponse `json:"pending,omitempty"`
	Published []ProductResponse `json:"published,omitempty"`

	// supplier / consumer
	Available []ProductResponse `json:"available,omitempty"`
	Mine      []ProductResponse `json:"mine,omitempty"`

	// admin
	Accounts []AccountResponse `json:"accounts,omitempty"`
	Products []ProductResponse `json:"products,omitempty"`
}

// WalletResponse cuenta y red activas.
type WalletResponse struct {
	Address         string `json:"address"`
	NetworkID       string `json:"networkId"`
	ExpectedNetwork string `json:"expectedNetwork"`
	Contract        string `json:"contract,omitempty"`
}

// SetContractRequest dirección del contrato para una red.
type SetContractRequest struct {
	Address string `json:"address" validate:"required"`
}

// ContractBookResponse libreta de contratos por red.
type ContractBookResponse struct {
	Contracts map[string]string `json:"contracts"`
}
