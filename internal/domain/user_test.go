package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"govendas/internal/domain"
)

// TestPermissionHas testa a regra do bitmask: a operação só passa se
// TODOS os bits exigidos estiverem presentes no conjunto do usuário.
func TestPermissionHas(t *testing.T) {
	clients := domain.PermissionManageClients

	// Um único bit exigido e presente.
	assert.True(t, clients.Has(domain.PermissionManageClients))

	// Exigência composta: quem só tem clientes não passa onde se exige
	// clientes E usuários.
	assert.False(t, clients.Has(domain.PermissionManageClients|domain.PermissionManageUsers))

	// O conjunto completo passa em qualquer exigência.
	all := domain.PermissionManageUsers | domain.PermissionManageClients |
		domain.PermissionManageStock | domain.PermissionManageOrders
	assert.True(t, all.Has(domain.PermissionManageOrders))
	assert.True(t, all.Has(domain.PermissionManageUsers|domain.PermissionManageStock))

	// PermissionNone não exige bit nenhum: qualquer usuário passa.
	assert.True(t, domain.PermissionNone.Has(domain.PermissionNone))
	assert.True(t, clients.Has(domain.PermissionNone))

	// Quem não tem permissão alguma não passa em nada além de None.
	assert.False(t, domain.PermissionNone.Has(domain.PermissionManageStock))
}
