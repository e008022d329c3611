package dto

// ErrorResponse cuerpo de error HTTP. TxRef presente cuando ya existe una transacción enviada:
// el cliente debe reintentar la misma operación, que consulta la transacción en vez de reenviarla.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	TxRef   string `json:"txRef,omitempty"`
}
