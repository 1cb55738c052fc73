package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status do pedido. Os valores 0..3 são um código de negócio repassado
// pelo front-end; o backend apenas valida o intervalo.
const (
	OrderStatusMin = 0
	OrderStatusMax = 3
)

// Order representa um pedido feito por um cliente e registrado por um
// usuário (criador). O criador é imutável após a criação.
type Order struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Status      int             `json:"status"`
	ClientID    string          `json:"client_id"`
	UserID      string          `json:"user_id"`
	Price       decimal.Decimal `json:"price"`
	Items       []OrderItem     `json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OrderItem é a reserva de uma quantidade de um produto para um pedido.
// Invariante de conservação: a soma das reservas ativas de um produto
// mais a quantidade livre em Stock equivale ao total original.
type OrderItem struct {
	OrderID  string `json:"order_id"`
	StockID  string `json:"stock_id"`
	Quantity int    `json:"quantity"`
}

// OrderSummary é a projeção usada na listagem de pedidos, com os nomes
// do cliente e do criador resolvidos.
type OrderSummary struct {
	Order
	ClientName string `json:"client_name"`
	UserName   string `json:"user_name"`
}

// OrderCreation é o payload de criação de pedido. Status é ponteiro
// para distinguir "ausente" de zero (zero é um status válido).
type OrderCreation struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Status      *int                `json:"status"`
	ClientID    string              `json:"client_id"`
	Price       decimal.Decimal     `json:"price"`
	Items       []OrderItemCreation `json:"items"`
}

// OrderItemCreation é uma linha do pedido na criação.
type OrderItemCreation struct {
	StockID  string `json:"stock_id"`
	Quantity int    `json:"quantity"`
}

// OrderUpdate representa uma atualização parcial de pedido. Campos nulos
// permanecem como estão. Items só ajusta a quantidade de linhas já
// existentes do pedido; incluir ou remover produtos não é suportado.
type OrderUpdate struct {
	ID          string            `json:"id"`
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Status      *int              `json:"status,omitempty"`
	ClientID    *string           `json:"client_id,omitempty"`
	Price       *decimal.Decimal  `json:"price,omitempty"`
	Items       []OrderItemChange `json:"items,omitempty"`
}

// OrderItemChange é o ajuste de quantidade de uma linha existente,
// identificada pelo produto. Quantity é ponteiro para que uma linha
// sem produto e sem quantidade seja rejeitada como malformada.
type OrderItemChange struct {
	StockID  string `json:"stock_id"`
	Quantity *int   `json:"quantity"`
}
