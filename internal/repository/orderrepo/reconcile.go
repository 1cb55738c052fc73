package orderrepo

import (
	"govendas/internal/domain"
	apperror "govendas/internal/errors"
)

// ItemWrite é o resultado planejado para uma linha de pedido em uma
// atualização: a nova quantidade da linha e o delta a aplicar sobre o
// estoque (positivo = reservar mais, negativo = devolver).
type ItemWrite struct {
	StockID     string
	NewQuantity int
	Delta       int
}

// PlanItemChanges casa cada linha enviada com a linha existente do
// pedido (pelo produto) e calcula os deltas de estoque. É um cálculo
// puro; a checagem de saldo acontece depois, dentro da transação, com a
// linha do produto travada.
//
// Só é possível ajustar a quantidade de linhas que o pedido já tem:
// incluir um produto novo ou remover um existente não é suportado pela
// atualização. Cada produto pode aparecer no máximo uma vez no payload;
// linhas repetidas calculariam deltas sobre a mesma quantidade atual e
// o estoque se moveria pela soma dos deltas enquanto a linha ficaria só
// com a última quantidade, quebrando a conservação.
func PlanItemChanges(current []domain.OrderItem, requested []domain.OrderItemChange) ([]ItemWrite, error) {
	byStock := make(map[string]domain.OrderItem, len(current))
	for _, item := range current {
		byStock[item.StockID] = item
	}

	writes := make([]ItemWrite, 0, len(requested))
	seen := make(map[string]bool, len(requested))
	for _, change := range requested {
		if change.StockID == "" && change.Quantity == nil {
			return nil, apperror.NewInvalidStockItemError("Houve um erro ao atualizar o pedido. Por favor, entre em contato com o administrador do sistema.")
		}
		if change.Quantity == nil || *change.Quantity <= 0 {
			return nil, apperror.NewValidationError("É necessário informar uma quantidade válida para o produto.")
		}
		if seen[change.StockID] {
			return nil, apperror.NewValidationError("Não é possível repetir o mesmo produto em mais de uma linha do pedido.")
		}
		seen[change.StockID] = true

		// Linha sem produto cai aqui: nunca casa com uma linha do
		// pedido e resolve como não encontrada.
		item, ok := byStock[change.StockID]
		if !ok {
			return nil, apperror.NewNotFoundError("Houve um erro ao atualizar o pedido. Por favor, entre em contato com o administrador do sistema.")
		}

		writes = append(writes, ItemWrite{
			StockID:     change.StockID,
			NewQuantity: *change.Quantity,
			Delta:       *change.Quantity - item.Quantity,
		})
	}

	return writes, nil
}
