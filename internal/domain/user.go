package domain

import "time"

// User representa um usuário do sistema (operador da loja).
// O hash da senha nunca é exposto no JSON de resposta.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	CPF          string     `json:"cpf"`
	PasswordHash string     `json:"-"`
	Permissions  Permission `json:"permissions"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Permission é um bitmask de permissões do usuário.
// A verificação exige que TODOS os bits requeridos estejam presentes:
// (user & required) == required.
type Permission int64

const (
	// PermissionNone libera o recurso para qualquer usuário autenticado.
	PermissionNone Permission = 0

	PermissionManageUsers   Permission = 1 << 0 // gerencia usuários e permissões
	PermissionManageClients Permission = 1 << 1 // gerencia clientes
	PermissionManageStock   Permission = 1 << 2 // gerencia o estoque
	PermissionManageOrders  Permission = 1 << 3 // gerencia pedidos
)

// Has verifica se todos os bits de required estão presentes no bitmask.
func (p Permission) Has(required Permission) bool {
	return p&required == required
}

// UserRegistration representa o payload de entrada para o cadastro de usuário.
type UserRegistration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	CPF      string `json:"cpf"`
	Password string `json:"password"`
}

// UserUpdate representa uma atualização parcial de usuário.
// Apenas os campos não-nulos são aplicados ao registro existente.
type UserUpdate struct {
	ID       string  `json:"id"`
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	CPF      *string `json:"cpf,omitempty"`
	Password *string `json:"password,omitempty"`
}
