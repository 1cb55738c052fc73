package orderrepo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"govendas/internal/domain"
	apperror "govendas/internal/errors"
	"govendas/internal/repository/orderrepo"
)

func intPtr(v int) *int { return &v }

// TestPlanItemChanges_DeltaPositivo testa o aumento da quantidade de
// uma linha: o delta é a diferença entre a quantidade nova e a já
// reservada, nunca a quantidade cheia.
func TestPlanItemChanges_DeltaPositivo(t *testing.T) {
	current := []domain.OrderItem{
		{StockID: "stock-1", Quantity: 3},
	}
	requested := []domain.OrderItemChange{
		{StockID: "stock-1", Quantity: intPtr(5)},
	}

	writes, err := orderrepo.PlanItemChanges(current, requested)

	assert.NoError(t, err)
	assert.Len(t, writes, 1)
	assert.Equal(t, "stock-1", writes[0].StockID)
	assert.Equal(t, 5, writes[0].NewQuantity)
	assert.Equal(t, 2, writes[0].Delta)
}

// TestPlanItemChanges_DeltaNegativo testa a redução da quantidade: o
// delta negativo devolve unidades ao estoque.
func TestPlanItemChanges_DeltaNegativo(t *testing.T) {
	current := []domain.OrderItem{
		{StockID: "stock-1", Quantity: 10},
	}
	requested := []domain.OrderItemChange{
		{StockID: "stock-1", Quantity: intPtr(4)},
	}

	writes, err := orderrepo.PlanItemChanges(current, requested)

	assert.NoError(t, err)
	assert.Len(t, writes, 1)
	assert.Equal(t, -6, writes[0].Delta)
}

// TestPlanItemChanges_QuantidadeIgual testa a linha enviada com a mesma
// quantidade já reservada: delta zero, sem movimento de estoque.
func TestPlanItemChanges_QuantidadeIgual(t *testing.T) {
	current := []domain.OrderItem{
		{StockID: "stock-1", Quantity: 7},
	}
	requested := []domain.OrderItemChange{
		{StockID: "stock-1", Quantity: intPtr(7)},
	}

	writes, err := orderrepo.PlanItemChanges(current, requested)

	assert.NoError(t, err)
	assert.Len(t, writes, 1)
	assert.Equal(t, 0, writes[0].Delta)
	assert.Equal(t, 7, writes[0].NewQuantity)
}

// TestPlanItemChanges_VariasLinhas testa deltas mistos em uma mesma
// atualização.
func TestPlanItemChanges_VariasLinhas(t *testing.T) {
	current := []domain.OrderItem{
		{StockID: "stock-1", Quantity: 2},
		{StockID: "stock-2", Quantity: 8},
		{StockID: "stock-3", Quantity: 5},
	}
	requested := []domain.OrderItemChange{
		{StockID: "stock-1", Quantity: intPtr(6)},
		{StockID: "stock-3", Quantity: intPtr(1)},
	}

	writes, err := orderrepo.PlanItemChanges(current, requested)

	assert.NoError(t, err)
	assert.Len(t, writes, 2)
	assert.Equal(t, 4, writes[0].Delta)
	assert.Equal(t, -4, writes[1].Delta)
}

// TestPlanItemChanges_SemLinhas testa a atualização que não mexe nos
// itens: nenhum write é planejado.
func TestPlanItemChanges_SemLinhas(t *testing.T) {
	current := []domain.OrderItem{
		{StockID: "stock-1", Quantity: 2},
	}

	writes, err := orderrepo.PlanItemChanges(current, nil)

	assert.NoError(t, err)
	assert.Empty(t, writes)
}

// TestPlanItemChanges_LinhaMalformada testa a linha vazia (sem produto
// E sem quantidade): o payload está malformado.
func TestPlanItemChanges_LinhaMalformada(t *testing.T) {
	current := []domain.OrderItem{
		{StockID: "stock-1", Quantity: 2},
	}

	_, err := orderrepo.PlanItemChanges(current, []domain.OrderItemChange{{}})

	assert.Error(t, err)
	assert.IsType(t, &apperror.InvalidStockItemError{}, err)
}

// TestPlanItemChanges_LinhaSemProduto testa a linha com quantidade mas
// sem produto: resolve como produto não encontrado, não como payload
// malformado.
func TestPlanItemChanges_LinhaSemProduto(t *testing.T) {
	current := []domain.OrderItem{
		{StockID: "stock-1", Quantity: 2},
	}

	_, err := orderrepo.PlanItemChanges(current, []domain.OrderItemChange{
		{StockID: "", Quantity: intPtr(3)},
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
}

// TestPlanItemChanges_LinhaSemQuantidade testa a linha com produto mas
// sem quantidade.
func TestPlanItemChanges_LinhaSemQuantidade(t *testing.T) {
	current := []domain.OrderItem{
		{StockID: "stock-1", Quantity: 2},
	}

	_, err := orderrepo.PlanItemChanges(current, []domain.OrderItemChange{
		{StockID: "stock-1", Quantity: nil},
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
}

// TestPlanItemChanges_ProdutoRepetido testa o mesmo produto em duas
// linhas do payload. Os deltas seriam calculados sobre a mesma
// quantidade atual e aplicados em cadeia: com a linha em 5 e pedidos de
// 10 e 3, o estoque se moveria por (10-5)+(3-5) = 3 reservas enquanto a
// linha iria de 5 para 3, violando a conservação. O plano inteiro é
// rejeitado.
func TestPlanItemChanges_ProdutoRepetido(t *testing.T) {
	current := []domain.OrderItem{
		{StockID: "stock-1", Quantity: 5},
	}
	requested := []domain.OrderItemChange{
		{StockID: "stock-1", Quantity: intPtr(10)},
		{StockID: "stock-1", Quantity: intPtr(3)},
	}

	writes, err := orderrepo.PlanItemChanges(current, requested)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Nil(t, writes)
}

// TestPlanItemChanges_QuantidadeInvalida testa quantidades zero e
// negativas: linhas não podem ser zeradas pela atualização.
func TestPlanItemChanges_QuantidadeInvalida(t *testing.T) {
	current := []domain.OrderItem{
		{StockID: "stock-1", Quantity: 2},
	}

	for _, qty := range []int{0, -1} {
		_, err := orderrepo.PlanItemChanges(current, []domain.OrderItemChange{
			{StockID: "stock-1", Quantity: intPtr(qty)},
		})
		assert.Error(t, err)
		assert.IsType(t, &apperror.ValidationError{}, err)
	}
}

// TestPlanItemChanges_ProdutoForaDoPedido testa a linha de um produto
// que o pedido não possui: a atualização não cria linhas novas.
func TestPlanItemChanges_ProdutoForaDoPedido(t *testing.T) {
	current := []domain.OrderItem{
		{StockID: "stock-1", Quantity: 2},
	}

	_, err := orderrepo.PlanItemChanges(current, []domain.OrderItemChange{
		{StockID: "stock-99", Quantity: intPtr(1)},
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
}
