package domain

import "time"

// Stock representa um produto do estoque. A quantidade nunca fica
// negativa: reservas de pedidos só são aplicadas quando há saldo.
type Stock struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StockUpdate representa uma atualização parcial de produto.
// A edição direta de quantidade por aqui não passa pelo razão de
// reservas dos pedidos; é o ajuste administrativo do estoque.
type StockUpdate struct {
	ID          string  `json:"id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Quantity    *int    `json:"quantity,omitempty"`
}
