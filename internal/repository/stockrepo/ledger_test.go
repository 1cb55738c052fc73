package stockrepo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperror "govendas/internal/errors"
	"govendas/internal/repository/stockrepo"
)

// TestPlanAdjustment_ReservaAlemDoSaldo testa a regra central do razão:
// reservar mais do que o saldo livre falha com estoque insuficiente e o
// saldo não muda.
func TestPlanAdjustment_ReservaAlemDoSaldo(t *testing.T) {
	_, err := stockrepo.PlanAdjustment(5, -6)

	assert.Error(t, err)
	assert.IsType(t, &apperror.InsufficientStockError{}, err)
}

// TestPlanAdjustment_ReservaExata testa a reserva que zera o saldo:
// zero é um saldo válido, negativo nunca.
func TestPlanAdjustment_ReservaExata(t *testing.T) {
	newQuantity, err := stockrepo.PlanAdjustment(5, -5)

	assert.NoError(t, err)
	assert.Equal(t, 0, newQuantity)
}

// TestPlanAdjustment_Devolucao testa a devolução de unidades ao
// estoque: devolver é sempre seguro, sem limite superior.
func TestPlanAdjustment_Devolucao(t *testing.T) {
	newQuantity, err := stockrepo.PlanAdjustment(5, 8)

	assert.NoError(t, err)
	assert.Equal(t, 13, newQuantity)
}

// TestPlanAdjustment_DeltaZero testa o delta nulo: o saldo fica como
// está (e Adjust nem chega a tocar a linha do produto).
func TestPlanAdjustment_DeltaZero(t *testing.T) {
	newQuantity, err := stockrepo.PlanAdjustment(5, 0)

	assert.NoError(t, err)
	assert.Equal(t, 5, newQuantity)
}
