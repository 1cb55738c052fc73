package domain

import "time"

// Client representa um cliente da loja. Todo cliente possui exatamente
// um endereço, criado e removido junto com o registro do cliente.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CPF       string    `json:"cpf"`
	Phone     string    `json:"phone"`
	Address   Address   `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Address é o endereço de um cliente (relação 1:1, dono é o Client).
type Address struct {
	ID           string `json:"id"`
	Street       string `json:"street"`
	Number       int    `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zipcode      string `json:"zipcode"`
	Country      string `json:"country"`
}

// ClientUpdate representa uma atualização parcial de cliente.
// Campos nulos não são alterados no registro existente.
type ClientUpdate struct {
	ID      string         `json:"id"`
	Name    *string        `json:"name,omitempty"`
	Email   *string        `json:"email,omitempty"`
	CPF     *string        `json:"cpf,omitempty"`
	Phone   *string        `json:"phone,omitempty"`
	Address *AddressUpdate `json:"address,omitempty"`
}

// AddressUpdate representa uma atualização parcial do endereço do cliente.
type AddressUpdate struct {
	Street       *string `json:"street,omitempty"`
	Number       *int    `json:"number,omitempty"`
	Complement   *string `json:"complement,omitempty"`
	Neighborhood *string `json:"neighborhood,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	Zipcode      *string `json:"zipcode,omitempty"`
	Country      *string `json:"country,omitempty"`
}
